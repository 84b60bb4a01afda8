// Command tripchat is a terminal chat client for the trip assistant. It keeps
// the conversation identity in an explicit session context; "/new" discards
// the context and mints a fresh one instead of mutating shared state.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nvasudevan/tripflow/internal/reliability"
)

const (
	maxAttempts = 3
	backoffBase = 300 * time.Millisecond
	backoffCap  = 5 * time.Second
)

// sessionContext identifies one conversation. A reset is expressed as
// "discard this context, create a new one".
type sessionContext struct {
	UserID    string
	SessionID string
}

func newSessionContext() sessionContext {
	return sessionContext{
		UserID:    "user-" + uuid.NewString(),
		SessionID: uuid.NewString(),
	}
}

type turnRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type turnResponse struct {
	Reply      string          `json:"reply"`
	Payload    json.RawMessage `json:"payload"`
	PlanResult string          `json:"getPlanResult"`
	Error      string          `json:"error"`
}

type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

// sendTurn posts one message, retrying retryable statuses with capped
// exponential backoff.
func (c *client) sendTurn(ctx context.Context, sess sessionContext, message string) (turnResponse, error) {
	body, err := json.Marshal(turnRequest{
		Message:   message,
		SessionID: sess.SessionID,
		UserID:    sess.UserID,
	})
	if err != nil {
		return turnResponse{}, fmt.Errorf("marshal turn: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return turnResponse{}, ctx.Err()
			case <-time.After(reliability.Backoff(attempt-1, backoffBase, backoffCap)):
			}
		}

		resp, retryable, err := c.postTurn(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			return turnResponse{}, err
		}
	}
	return turnResponse{}, fmt.Errorf("turn failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *client) postTurn(ctx context.Context, body []byte) (turnResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/turns", bytes.NewReader(body))
	if err != nil {
		return turnResponse{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return turnResponse{}, true, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return turnResponse{}, true, fmt.Errorf("read response: %w", err)
	}

	var out turnResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return turnResponse{}, false, fmt.Errorf("decode response (status %d): %w", res.StatusCode, err)
	}

	if res.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return turnResponse{}, reliability.RetryableStatus(res.StatusCode), fmt.Errorf("server error (status %d): %s", res.StatusCode, msg)
	}

	return out, false, nil
}

func main() {
	baseURL := flag.String("base-url", "http://127.0.0.1:8080", "tripflow base URL")
	flag.Parse()

	c := newClient(*baseURL)
	sess := newSessionContext()

	fmt.Println("Trip assistant chat. Type a message, /new for a fresh session, /quit to exit.")
	fmt.Printf("session %s\n", sess.SessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/new":
			sess = newSessionContext()
			fmt.Printf("new session %s\n", sess.SessionID)
			continue
		}

		resp, err := c.sendTurn(context.Background(), sess, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tripchat: %v\n", err)
			continue
		}

		fmt.Printf("assistant> %s\n", resp.Reply)
		if resp.PlanResult != "" {
			fmt.Println("travel plan:")
			fmt.Println(indentIfJSON(resp.PlanResult))
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "tripchat: read stdin: %v\n", err)
		os.Exit(1)
	}
}

func indentIfJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}

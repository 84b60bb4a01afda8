package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/nvasudevan/tripflow/internal/config"
	"github.com/nvasudevan/tripflow/internal/dialogue"
	"github.com/nvasudevan/tripflow/internal/observability"
	"github.com/nvasudevan/tripflow/internal/prompt"
	"github.com/nvasudevan/tripflow/internal/session"
)

// Engine processes one conversation turn.
type Engine interface {
	ProcessTurn(ctx context.Context, req dialogue.TurnRequest) (dialogue.TurnResponse, error)
}

type Server struct {
	cfg      config.Config
	engine   Engine
	sessions *session.Manager
	upgrader websocket.Upgrader
}

func New(cfg config.Config, engine Engine, sessions *session.Manager) *Server {
	return &Server{
		cfg:      cfg,
		engine:   engine,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/turns", s.handleTurn)
	r.Get("/v1/sessions/{userID}/{sessionID}", s.handleGetSession)
	r.Get("/v1/chat/ws", s.handleChatWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req dialogue.TurnRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	resp, err := s.engine.ProcessTurn(r.Context(), req)
	if err != nil {
		s.respondTurnError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	sessionID := chi.URLParam(r, "sessionID")

	rec := s.sessions.Load(r.Context(), userID, sessionID)
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":              userID,
		"session_id":           sessionID,
		"conversation_history": prompt.Render(rec.Turns),
		"payload":              rec.Payload,
	})
}

// respondTurnError maps engine failures onto the wire contract: generation
// and plan failures carry distinct codes, anything unexpected stays generic.
func (s *Server) respondTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dialogue.ErrGeneration):
		respondError(w, http.StatusBadGateway, "generation_failed", err.Error())
	case errors.Is(err, dialogue.ErrPlan):
		respondError(w, http.StatusBadGateway, "plan_failed", err.Error())
	default:
		log.Printf("unhandled turn error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

var errEmptyBody = errors.New("empty request body")

func decodeJSON(r *http.Request, v any) error {
	defer io.Copy(io.Discard, r.Body)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

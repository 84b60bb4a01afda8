package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nvasudevan/tripflow/internal/dialogue"
	"github.com/nvasudevan/tripflow/internal/protocol"
)

// handleChatWS runs an interactive chat connection. Each user_turn frame is
// processed like a REST turn; fatal turn failures come back as error_event
// frames without tearing down the connection, since the session itself
// remains usable.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("chat ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("chat ws read error: %v", err)
			}
			return
		}

		turn, err := protocol.ParseClientMessage(raw)
		if err != nil {
			s.writeChatError(conn, "invalid_frame", err.Error())
			continue
		}

		resp, err := s.engine.ProcessTurn(r.Context(), dialogue.TurnRequest{
			UserID:    turn.UserID,
			SessionID: turn.SessionID,
			Message:   turn.Message,
		})
		if err != nil {
			s.writeChatError(conn, chatErrorCode(err), err.Error())
			continue
		}

		reply := protocol.AssistantReply{
			Type:                protocol.TypeAssistantReply,
			SessionID:           turn.SessionID,
			Reply:               resp.Reply,
			Payload:             resp.Payload,
			ConversationHistory: resp.ConversationHistory,
			PlanResult:          resp.PlanResult,
		}
		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("chat ws write error: %v", err)
			return
		}
	}
}

func chatErrorCode(err error) string {
	switch {
	case errors.Is(err, dialogue.ErrGeneration):
		return "generation_failed"
	case errors.Is(err, dialogue.ErrPlan):
		return "plan_failed"
	default:
		return "internal_error"
	}
}

func (s *Server) writeChatError(conn *websocket.Conn, code, detail string) {
	event := protocol.ErrorEvent{
		Type:   protocol.TypeErrorEvent,
		Code:   code,
		Detail: detail,
	}
	if err := conn.WriteJSON(event); err != nil {
		log.Printf("chat ws error write failed: %v", err)
	}
}

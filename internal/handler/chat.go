package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/reagent-ai/reagent/internal/config"
	"github.com/reagent-ai/reagent/internal/memory"
	"github.com/reagent-ai/reagent/internal/models"
	"github.com/reagent-ai/reagent/internal/service"
	"github.com/reagent-ai/reagent/internal/tools"
	"github.com/rs/zerolog/log"
)

// Chatter is the slice of ChatService the HTTP handlers depend on.
type Chatter interface {
	Respond(ctx context.Context, sessionID, prompt string) (*service.TurnResult, error)
	RespondStream(ctx context.Context, sessionID, prompt string, onDelta func(string)) (*service.TurnResult, error)
	History(ctx context.Context, sessionID string) ([]memory.Turn, error)
	ClearSession(ctx context.Context, sessionID string) error
	Tools() []tools.Tool
}

// ChatHandler handles POST /api/v1/chat
type ChatHandler struct {
	chat Chatter
}

func NewChatHandler(chat Chatter) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat handles POST /api/v1/chat. With "stream": true the answer is
// delivered as SSE delta events instead of a single JSON body.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	if req.Message == "" {
		models.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > config.DefaultMaxPromptLength {
		models.WriteError(w, http.StatusBadRequest, "message exceeds maximum length")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(req.Timeout)*time.Second)
	defer cancel()

	if req.Stream {
		h.stream(ctx, w, &req)
		return
	}

	result, err := h.chat.Respond(ctx, req.SessionID, req.Message)
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("chat turn failed")
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	models.WriteJSON(w, http.StatusOK, models.ChatResponse{
		Status:    "success",
		SessionID: result.SessionID,
		Answer:    result.Answer,
		ToolsUsed: result.ToolsUsed,
	})
}

func (h *ChatHandler) stream(ctx context.Context, w http.ResponseWriter, req *models.ChatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		models.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	result, err := h.chat.RespondStream(ctx, req.SessionID, req.Message, func(delta string) {
		models.WriteSSE(w, flusher, models.StreamEvent{Type: "delta", Delta: delta})
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("streaming chat turn failed")
		models.WriteSSE(w, flusher, models.StreamEvent{Type: "error", Message: err.Error()})
		return
	}

	models.WriteSSE(w, flusher, models.StreamEvent{
		Type:      "done",
		SessionID: result.SessionID,
		ToolsUsed: result.ToolsUsed,
	})
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reagent-ai/reagent/internal/models"
)

// SessionHandler handles the /api/v1/sessions routes
type SessionHandler struct {
	chat Chatter
}

func NewSessionHandler(chat Chatter) *SessionHandler {
	return &SessionHandler{chat: chat}
}

// History handles GET /api/v1/sessions/{sessionID}/history
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		models.WriteError(w, http.StatusBadRequest, "session id is required")
		return
	}

	turns, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	models.WriteJSON(w, http.StatusOK, models.HistoryResponse{
		SessionID: sessionID,
		Turns:     turns,
	})
}

// Clear handles DELETE /api/v1/sessions/{sessionID}
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		models.WriteError(w, http.StatusBadRequest, "session id is required")
		return
	}

	if err := h.chat.ClearSession(r.Context(), sessionID); err != nil {
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	models.WriteJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"session_id": sessionID,
	})
}

package handler

import (
	"net/http"

	"github.com/reagent-ai/reagent/internal/models"
)

// ToolsHandler handles GET /api/v1/tools
type ToolsHandler struct {
	chat Chatter
}

func NewToolsHandler(chat Chatter) *ToolsHandler {
	return &ToolsHandler{chat: chat}
}

// List handles GET /api/v1/tools
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	available := h.chat.Tools()

	infos := make([]models.ToolInfo, 0, len(available))
	for _, t := range available {
		infos = append(infos, models.ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}

	models.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"count":  len(infos),
		"tools":  infos,
	})
}

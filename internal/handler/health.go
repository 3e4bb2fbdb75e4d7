package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/reagent-ai/reagent/internal/models"
	"github.com/reagent-ai/reagent/internal/tools"
)

const version = "1.0.0"

// Pinger is implemented by checkpoint stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles GET /health with optional dependency checks
type HealthHandler struct {
	llmConfigured bool
	store         Pinger            // nil for the in-memory backend
	catalog       *tools.MCPCatalog // nil when no MCP server is configured
}

func NewHealthHandler(llmConfigured bool, store Pinger, catalog *tools.MCPCatalog) *HealthHandler {
	return &HealthHandler{llmConfigured: llmConfigured, store: store, catalog: catalog}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	if h.llmConfigured {
		checks["llm"] = "ok"
	} else {
		checks["llm"] = "not configured"
		overallStatus = "degraded"
	}

	// Use a short timeout for health checks so they don't block
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			checks["memory"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["memory"] = "ok"
		}
	} else {
		checks["memory"] = "in-memory"
	}

	if h.catalog != nil {
		if h.catalog.Connected() {
			checks["mcp"] = "ok"
		} else {
			// MCP tools are optional; built-ins still work without them.
			checks["mcp"] = "disconnected"
		}
	} else {
		checks["mcp"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}

package models

import "github.com/reagent-ai/reagent/internal/memory"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ChatResponse is returned by POST /api/v1/chat (non-streaming)
type ChatResponse struct {
	Status    string   `json:"status"`
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	ToolsUsed []string `json:"tools_used,omitempty"`
}

// StreamEvent is one SSE payload of a streaming chat response.
// Type is "delta" while text arrives, then a single "done" carrying the
// session id and tool usage, or "error" if the turn failed mid-stream.
type StreamEvent struct {
	Type      string   `json:"type"`
	Delta     string   `json:"delta,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	ToolsUsed []string `json:"tools_used,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// ToolInfo describes one registered tool for GET /api/v1/tools
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// HistoryResponse is returned by GET /api/v1/sessions/{session_id}/history
type HistoryResponse struct {
	SessionID string        `json:"session_id"`
	Turns     []memory.Turn `json:"turns"`
}

// Package audit records tool invocations made during agent turns. Events
// always go to the structured log; when an Elasticsearch sink is configured
// they are additionally indexed for later investigation.
package audit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Event describes one tool invocation inside an agent turn.
type Event struct {
	SessionID  string    `json:"session_id"`
	Tool       string    `json:"tool"`
	InputHash  string    `json:"input_hash"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// Sink receives audit events beyond the structured log.
type Sink interface {
	Index(ctx context.Context, e Event) error
}

// Logger logs tool invocations with hashed inputs. Tool arguments may carry
// user data, so only a hash prefix ever reaches the log or the sink.
type Logger struct {
	enabled bool
	sink    Sink
}

func NewLogger(enabled bool, sink Sink) *Logger {
	return &Logger{enabled: enabled, sink: sink}
}

// ToolCall records one tool execution.
func (a *Logger) ToolCall(ctx context.Context, sessionID, tool, rawInput string, duration time.Duration, execErr error) {
	if !a.enabled {
		return
	}

	e := Event{
		SessionID:  sessionID,
		Tool:       tool,
		InputHash:  hashStr(rawInput)[:16],
		Success:    execErr == nil,
		DurationMs: duration.Milliseconds(),
		At:         time.Now().UTC(),
	}
	if execErr != nil {
		e.Error = execErr.Error()
	}

	evt := log.Info().
		Str("event", "tool_audit").
		Str("session_id", e.SessionID).
		Str("tool", e.Tool).
		Str("input_hash", e.InputHash).
		Bool("success", e.Success).
		Int64("duration_ms", e.DurationMs)
	if e.Error != "" {
		evt = evt.Str("error", e.Error)
	}
	evt.Msg("tool audit")

	if a.sink != nil {
		if err := a.sink.Index(ctx, e); err != nil {
			log.Warn().Err(err).Str("tool", tool).Msg("audit sink index failed")
		}
	}
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}

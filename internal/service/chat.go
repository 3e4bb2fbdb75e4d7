// Package service binds the agent runner, the checkpoint store and the tool
// set into the chat operations shared by the CLI loop and the HTTP handlers.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reagent-ai/reagent/internal/memory"
	"github.com/reagent-ai/reagent/internal/tools"
	"github.com/rs/zerolog/log"
)

// Runner is the agent loop contract ChatService depends on.
type Runner interface {
	Run(ctx context.Context, sessionID string, history []memory.Turn, prompt string, agentTools []tools.Tool) (string, []string, error)
	RunStream(ctx context.Context, sessionID string, history []memory.Turn, prompt string, agentTools []tools.Tool, onDelta func(string)) (string, []string, error)
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	SessionID string
	Answer    string
	ToolsUsed []string
}

// ChatService runs agent turns with conversation memory. Tool resolution
// combines the built-ins with whatever the MCP catalog currently serves.
type ChatService struct {
	runner   Runner
	store    memory.Store
	builtins []tools.Tool
	catalog  *tools.MCPCatalog // optional
}

func NewChatService(runner Runner, store memory.Store, catalog *tools.MCPCatalog) *ChatService {
	return &ChatService{
		runner:   runner,
		store:    store,
		builtins: tools.Builtins(),
		catalog:  catalog,
	}
}

// Tools returns the currently available tool set.
func (s *ChatService) Tools() []tools.Tool {
	out := make([]tools.Tool, 0, len(s.builtins))
	out = append(out, s.builtins...)
	if s.catalog != nil {
		out = append(out, s.catalog.Tools()...)
	}
	return out
}

// Respond runs one agent turn and checkpoints the exchange. An empty session
// id starts a fresh session.
func (s *ChatService) Respond(ctx context.Context, sessionID, prompt string) (*TurnResult, error) {
	return s.respond(ctx, sessionID, prompt, nil)
}

// RespondStream is Respond with incremental delivery of assistant text.
func (s *ChatService) RespondStream(ctx context.Context, sessionID, prompt string, onDelta func(string)) (*TurnResult, error) {
	return s.respond(ctx, sessionID, prompt, onDelta)
}

func (s *ChatService) respond(ctx context.Context, sessionID, prompt string, onDelta func(string)) (*TurnResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	agentTools := s.Tools()

	var answer string
	var toolsUsed []string
	if onDelta != nil {
		answer, toolsUsed, err = s.runner.RunStream(ctx, sessionID, history, prompt, agentTools, onDelta)
	} else {
		answer, toolsUsed, err = s.runner.Run(ctx, sessionID, history, prompt, agentTools)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	turns := []memory.Turn{{Role: "user", Content: prompt, At: now}}
	if strings.TrimSpace(answer) != "" {
		turns = append(turns, memory.Turn{Role: "assistant", Content: answer, At: now})
	}
	if err := s.store.Append(ctx, sessionID, turns...); err != nil {
		// The answer is already produced; losing the checkpoint should not
		// fail the turn.
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to checkpoint turn")
	}

	return &TurnResult{SessionID: sessionID, Answer: answer, ToolsUsed: toolsUsed}, nil
}

// History returns the persisted transcript of a session.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]memory.Turn, error) {
	return s.store.History(ctx, sessionID)
}

// ClearSession drops a session's transcript.
func (s *ChatService) ClearSession(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// Package agent wraps the Anthropic SDK in a multi-turn tool-calling loop:
// the model reasons, requests tool executions, sees their results and repeats
// until it produces a final answer. Conversation memory threads through as
// prior turns supplied by the caller.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/reagent-ai/reagent/internal/audit"
	"github.com/reagent-ai/reagent/internal/memory"
	"github.com/reagent-ai/reagent/internal/tools"
	"github.com/rs/zerolog/log"
)

const systemPrompt = `You are a helpful assistant that reasons step by step and uses tools when they help answer the user's question.

Use the get_current_time tool for any question about the current date or time.
Use the calculate tool for arithmetic instead of computing in your head.
Answer in plain language and keep responses concise.`

// ToolCall represents a tool invocation request from the LLM
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// Agent drives the reasoning loop against Anthropic Claude or a compatible
// provider behind a custom base URL.
type Agent struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	maxIter   int
	auditor   *audit.Logger
}

func New(apiKey, model, baseURL string, maxIter int, auditor *audit.Logger) *Agent {
	if model == "" {
		model = "claude-sonnet-4-6"
	}
	if maxIter <= 0 {
		maxIter = 10
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Agent{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: 4096,
		maxIter:   maxIter,
		auditor:   auditor,
	}
}

// Run executes one agent turn: prior history plus the new user message go in,
// the final answer text and the names of the tools used come out.
func (a *Agent) Run(ctx context.Context, sessionID string, history []memory.Turn, userPrompt string, agentTools []tools.Tool) (string, []string, error) {
	return a.run(ctx, sessionID, history, userPrompt, agentTools, nil)
}

// RunStream behaves like Run but delivers assistant text incrementally
// through onDelta as it arrives from the model.
func (a *Agent) RunStream(ctx context.Context, sessionID string, history []memory.Turn, userPrompt string, agentTools []tools.Tool, onDelta func(string)) (string, []string, error) {
	return a.run(ctx, sessionID, history, userPrompt, agentTools, onDelta)
}

func (a *Agent) run(ctx context.Context, sessionID string, history []memory.Turn, userPrompt string, agentTools []tools.Tool, onDelta func(string)) (string, []string, error) {
	toolParams := buildToolParams(agentTools)

	messages := historyMessages(history)
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)))

	var toolsUsed []string

	for iter := 0; iter < a.maxIter; iter++ {
		params := anthropic.MessageNewParams{
			Model:     anthropic.F(anthropic.Model(a.model)),
			MaxTokens: anthropic.F(int64(a.maxTokens)),
			Messages:  anthropic.F(messages),
			System:    anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(systemPrompt)}),
		}
		if len(toolParams) > 0 {
			params.Tools = anthropic.F(toolParams)
		}

		resp, err := a.step(ctx, params, onDelta)
		if err != nil {
			return "", toolsUsed, fmt.Errorf("LLM call failed: %w", err)
		}

		var textContent string
		var pendingToolCalls []ToolCall
		for _, block := range resp.Content {
			switch b := block.AsUnion().(type) {
			case anthropic.TextBlock:
				textContent += b.Text
			case anthropic.ToolUseBlock:
				var input map[string]interface{}
				if err := json.Unmarshal(b.Input, &input); err != nil {
					log.Warn().Err(err).Str("tool", b.Name).Msg("failed to parse tool input")
					input = map[string]interface{}{}
				}
				pendingToolCalls = append(pendingToolCalls, ToolCall{ID: b.ID, Name: b.Name, Input: input})
			}
		}

		log.Debug().
			Int("iter", iter).
			Str("session_id", sessionID).
			Str("stop_reason", string(resp.StopReason)).
			Int("tool_calls", len(pendingToolCalls)).
			Msg("agent iteration")

		isDone := resp.StopReason == "end_turn" ||
			resp.StopReason == "stop" ||
			resp.StopReason == "stop_sequence" ||
			resp.StopReason == "max_tokens" ||
			len(pendingToolCalls) == 0
		if isDone {
			return textContent, toolsUsed, nil
		}

		// Force a final answer near the cap to avoid runaway loops.
		if iter >= a.maxIter-3 {
			messages = append(messages, resp.ToParam())
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock("You have enough information. Please provide your final answer now without calling any more tools."),
			))
			finalParams := anthropic.MessageNewParams{
				Model:     anthropic.F(anthropic.Model(a.model)),
				MaxTokens: anthropic.F(int64(a.maxTokens)),
				Messages:  anthropic.F(messages),
				System:    anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(systemPrompt)}),
			}
			finalResp, err := a.step(ctx, finalParams, onDelta)
			if err != nil {
				return textContent, toolsUsed, fmt.Errorf("final answer call failed: %w", err)
			}
			for _, block := range finalResp.Content {
				if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
					textContent += b.Text
				}
			}
			return textContent, toolsUsed, nil
		}

		messages = append(messages, resp.ToParam())

		var toolResults []anthropic.ContentBlockParamUnion
		for _, tc := range pendingToolCalls {
			toolsUsed = append(toolsUsed, tc.Name)
			result, execErr := a.executeTool(ctx, sessionID, tc, agentTools)
			if execErr != nil {
				log.Warn().Err(execErr).Str("tool", tc.Name).Msg("tool execution error")
				result = fmt.Sprintf("error: %v", execErr)
			}
			toolResults = append(toolResults, anthropic.NewToolResultBlock(tc.ID, result, execErr != nil))
		}
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return "", toolsUsed, fmt.Errorf("agent loop exceeded max iterations (%d)", a.maxIter)
}

// executeTool runs one requested tool and audits the call. A failing tool
// never surfaces as an error to the agent turn; the loop converts it into an
// error-string tool result for the model.
func (a *Agent) executeTool(ctx context.Context, sessionID string, tc ToolCall, agentTools []tools.Tool) (string, error) {
	rawInput, _ := json.Marshal(tc.Input)

	for _, t := range agentTools {
		if t.Name != tc.Name {
			continue
		}
		start := time.Now()
		result, err := t.Execute(ctx, tc.Input)
		if a.auditor != nil {
			a.auditor.ToolCall(ctx, sessionID, tc.Name, string(rawInput), time.Since(start), err)
		}
		return result, err
	}

	err := fmt.Errorf("unknown tool: %s", tc.Name)
	if a.auditor != nil {
		a.auditor.ToolCall(ctx, sessionID, tc.Name, string(rawInput), 0, err)
	}
	return "", err
}

// buildToolParams converts Tool descriptors into the SDK's tool definitions.
func buildToolParams(agentTools []tools.Tool) []anthropic.ToolUnionUnionParam {
	params := make([]anthropic.ToolUnionUnionParam, len(agentTools))
	for i, t := range agentTools {
		var propsRaw interface{}
		if props, ok := t.InputSchema["properties"]; ok {
			propsRaw = props
		}
		schema := map[string]interface{}{
			"type":       "object",
			"properties": propsRaw,
		}
		if required, ok := t.InputSchema["required"]; ok {
			schema["required"] = required
		}
		params[i] = anthropic.ToolParam{
			Name:        anthropic.String(t.Name),
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.F[interface{}](schema),
		}
	}
	return params
}

// historyMessages rebuilds the SDK conversation from persisted text turns.
func historyMessages(history []memory.Turn) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		if turn.Content == "" {
			continue
		}
		if turn.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}
	return messages
}

package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/reagent-ai/reagent/internal/eval"
	"github.com/reagent-ai/reagent/internal/memory"
	"github.com/reagent-ai/reagent/internal/tools"
)

func TestHistoryMessagesSkipsEmptyTurns(t *testing.T) {
	history := []memory.Turn{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: ""},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "2 + 2?"},
	}
	msgs := historyMessages(history)
	if len(msgs) != 3 {
		t.Errorf("expected 3 messages (empty turn dropped), got %d", len(msgs))
	}
}

func TestHistoryMessagesEmpty(t *testing.T) {
	if msgs := historyMessages(nil); len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
}

func TestBuildToolParamsCount(t *testing.T) {
	params := buildToolParams(tools.Builtins())
	if len(params) != 2 {
		t.Errorf("expected 2 tool params, got %d", len(params))
	}
}

func TestExecuteToolUnknown(t *testing.T) {
	a := &Agent{}
	_, err := a.executeTool(context.Background(), "s", ToolCall{Name: "no_such_tool"}, tools.Builtins())
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Errorf("expected unknown tool error, got %v", err)
	}
}

func TestExecuteToolRunsCalculate(t *testing.T) {
	a := &Agent{}
	got, err := a.executeTool(context.Background(), "s", ToolCall{
		Name:  "calculate",
		Input: map[string]interface{}{"expression": "6 * 7"},
	}, tools.Builtins())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got != "42" {
		t.Errorf("calculate = %q, want 42", got)
	}
}

func TestExecuteToolFailureIsError(t *testing.T) {
	a := &Agent{}
	_, err := a.executeTool(context.Background(), "s", ToolCall{
		Name:  "calculate",
		Input: map[string]interface{}{"expression": "10 / 0"},
	}, tools.Builtins())
	if err == nil {
		t.Fatal("division by zero should surface as a tool error")
	}
	if !errors.Is(err, eval.ErrDivisionByZero) {
		t.Errorf("error chain should carry the evaluator sentinel, got %v", err)
	}
}

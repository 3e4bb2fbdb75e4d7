package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/reagent-ai/reagent/internal/service"
)

type echoResponder struct {
	prompts []string
}

func (e *echoResponder) RespondStream(ctx context.Context, sessionID, prompt string, onDelta func(string)) (*service.TurnResult, error) {
	e.prompts = append(e.prompts, prompt)
	answer := "echo: " + prompt
	onDelta(answer)
	return &service.TurnResult{SessionID: "s-1", Answer: answer}, nil
}

// ─── Exit Commands ───

func TestIsExitCommand(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"quit", true},
		{"exit", true},
		{"q", true},
		{"QUIT", true},
		{"  exit  ", true},
		{"quite", false},
		{"what is 2 + 2?", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsExitCommand(tt.line); got != tt.want {
			t.Errorf("IsExitCommand(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

// ─── REPL Loop ───

func TestRunStreamsUntilExit(t *testing.T) {
	chat := &echoResponder{}
	in := strings.NewReader("hello there\nquit\n")
	var out, errOut bytes.Buffer

	r := New(chat, in, &out, &errOut)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(chat.prompts) != 1 || chat.prompts[0] != "hello there" {
		t.Errorf("prompts = %v", chat.prompts)
	}
	if !strings.Contains(out.String(), "echo: hello there") {
		t.Errorf("output missing streamed answer: %q", out.String())
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Errorf("output missing farewell: %q", out.String())
	}
}

func TestRunSkipsBlankLines(t *testing.T) {
	chat := &echoResponder{}
	in := strings.NewReader("\n   \nq\n")
	var out, errOut bytes.Buffer

	r := New(chat, in, &out, &errOut)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(chat.prompts) != 0 {
		t.Errorf("blank lines reached the agent: %v", chat.prompts)
	}
}

func TestRunStopsOnEOF(t *testing.T) {
	chat := &echoResponder{}
	in := strings.NewReader("hi\n")
	var out, errOut bytes.Buffer

	r := New(chat, in, &out, &errOut)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(chat.prompts) != 1 {
		t.Errorf("prompts = %v", chat.prompts)
	}
}

func TestRunAdoptsSessionID(t *testing.T) {
	chat := &echoResponder{}
	in := strings.NewReader("one\ntwo\nq\n")
	var out, errOut bytes.Buffer

	r := New(chat, in, &out, &errOut)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.sessionID != "s-1" {
		t.Errorf("sessionID = %q, want s-1", r.sessionID)
	}
}

package tools_test

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/reagent-ai/reagent/internal/tools"
)

// ─── Clock ────────────────────────────────────────────────────────────────────

func TestClockToolFormat(t *testing.T) {
	tool := tools.ClockTool()
	got, err := tool.Execute(context.Background(), map[string]interface{}{})
	if err != nil {
		t.Fatalf("clock tool error: %v", err)
	}

	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
	if !re.MatchString(got) {
		t.Errorf("clock output %q does not match YYYY-MM-DD HH:MM:SS", got)
	}

	parsed, err := time.ParseInLocation(tools.ClockTimeFormat, got, time.Local)
	if err != nil {
		t.Fatalf("clock output %q not parseable: %v", got, err)
	}
	if d := time.Since(parsed); d < -time.Minute || d > time.Minute {
		t.Errorf("clock output %q too far from now (%v)", got, d)
	}
}

// ─── Calculate ────────────────────────────────────────────────────────────────

func TestCalculateToolSuccess(t *testing.T) {
	tool := tools.CalculateTool()
	tests := []struct {
		expr string
		want string
	}{
		{"2 + 3 * 4", "14"},
		{"(2+3)*4", "20"},
		{"abs(-5)", "5"},
		{"max(1,2,3)", "3"},
		{"pow(2,10)", "1024"},
		{"divmod(7,2)", "(3, 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := tool.Execute(context.Background(), map[string]interface{}{"expression": tt.expr})
			if err != nil {
				t.Fatalf("Execute(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Execute(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCalculateToolErrors(t *testing.T) {
	tool := tools.CalculateTool()
	tests := []string{
		"10 / 0",
		"__import__('os')",
		"open('x')",
		"a=1",
		"",
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := tool.Execute(context.Background(), map[string]interface{}{"expression": expr})
			if err == nil {
				t.Fatalf("Execute(%q) should fail", expr)
			}
			if !strings.Contains(err.Error(), "error calculating") {
				t.Errorf("error %q should carry the calculating prefix", err)
			}
		})
	}
}

func TestCalculateToolMissingArgument(t *testing.T) {
	tool := tools.CalculateTool()
	if _, err := tool.Execute(context.Background(), map[string]interface{}{}); err == nil {
		t.Error("missing expression argument should fail")
	}
}

// ─── Built-in set ─────────────────────────────────────────────────────────────

func TestBuiltins(t *testing.T) {
	builtins := tools.Builtins()
	if len(builtins) != 2 {
		t.Fatalf("expected 2 built-in tools, got %d", len(builtins))
	}
	names := map[string]bool{}
	for _, tool := range builtins {
		if tool.Name == "" || tool.Description == "" || tool.Execute == nil {
			t.Errorf("tool %q has incomplete descriptor", tool.Name)
		}
		if tool.InputSchema["type"] != "object" {
			t.Errorf("tool %q schema type = %v, want object", tool.Name, tool.InputSchema["type"])
		}
		names[tool.Name] = true
	}
	if !names["get_current_time"] || !names["calculate"] {
		t.Errorf("built-ins missing expected names: %v", names)
	}
}

// ─── MCP catalog ──────────────────────────────────────────────────────────────

func TestMCPCatalogEmptyEndpoint(t *testing.T) {
	cat := tools.NewMCPCatalog("", "", "test")
	got, err := cat.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh with empty endpoint should be a no-op, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tools, got %d", len(got))
	}
	if cat.Connected() {
		t.Error("catalog should not report a connection")
	}
}

func TestMCPCatalogUnreachable(t *testing.T) {
	cat := tools.NewMCPCatalog("http://127.0.0.1:1/mcp", "key", "test")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := cat.Refresh(ctx); err == nil {
		t.Error("refresh against an unreachable server should fail")
	}
	if len(cat.Tools()) != 0 {
		t.Error("failed refresh must not publish tools")
	}
}

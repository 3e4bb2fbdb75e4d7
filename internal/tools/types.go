// Package tools defines the Tool descriptor shared by the agent loop and the
// individual tool implementations, plus the built-in tool set and the MCP
// catalog for externally served tools.
package tools

import "context"

// Tool represents a callable function the LLM can invoke
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
	Execute     func(ctx context.Context, input map[string]interface{}) (string, error)
}

// Builtins returns the two locally implemented tools. They carry no external
// dependencies and keep working when the MCP server is unreachable.
func Builtins() []Tool {
	return []Tool{ClockTool(), CalculateTool()}
}

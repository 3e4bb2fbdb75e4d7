package tools

import (
	"context"
	"fmt"

	"github.com/reagent-ai/reagent/internal/eval"
)

// CalculateTool evaluates an arithmetic expression through the grammar-limited
// evaluator. The expression string is untrusted (it is model-generated from
// user text); internal/eval guarantees nothing outside the arithmetic subset
// is ever executed.
func CalculateTool() Tool {
	return Tool{
		Name:        "calculate",
		Description: "Calculate the result of a mathematical expression. Supports +, -, *, /, parentheses and the functions abs, round, min, max, sum, pow, divmod. Example: \"(2 + 3) * pow(2, 4)\".",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"expression": map[string]interface{}{
					"type":        "string",
					"description": "The arithmetic expression to evaluate",
				},
			},
			"required": []string{"expression"},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			expr, _ := input["expression"].(string)
			result, err := eval.Evaluate(expr)
			if err != nil {
				// The agent loop converts this into an error-string tool
				// result, so a bad expression never aborts the turn.
				return "", fmt.Errorf("error calculating %q: %w", expr, err)
			}
			return result, nil
		},
	}
}

package tools

import (
	"context"
	"time"
)

// ClockTimeFormat is the fixed layout returned by the clock tool.
const ClockTimeFormat = "2006-01-02 15:04:05"

// ClockTool returns the current local date and time
func ClockTool() Tool {
	return Tool{
		Name:        "get_current_time",
		Description: "Get the current local date and time in YYYY-MM-DD HH:MM:SS format. Takes no arguments.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			return time.Now().Format(ClockTimeFormat), nil
		},
	}
}

package agent

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
)

// step performs one model call. With onDelta set it uses the streaming API
// and forwards text deltas as they arrive; either way it returns the full
// accumulated message so the tool loop can inspect stop reason and content.
func (a *Agent) step(ctx context.Context, params anthropic.MessageNewParams, onDelta func(string)) (*anthropic.Message, error) {
	if onDelta == nil {
		return a.client.Messages.New(ctx, params)
	}

	stream := a.client.Messages.NewStreaming(ctx, params)
	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		message.Accumulate(event)

		switch delta := event.Delta.(type) {
		case anthropic.ContentBlockDeltaEventDelta:
			if delta.Text != "" {
				onDelta(delta.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return &message, nil
}

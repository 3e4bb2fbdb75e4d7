// Package cli is the interactive terminal front end. It reads prompts from
// stdin, streams assistant text to stdout and keeps the whole conversation
// under a single session id.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/reagent-ai/reagent/internal/service"
)

// Responder is the slice of ChatService the REPL depends on.
type Responder interface {
	RespondStream(ctx context.Context, sessionID, prompt string, onDelta func(string)) (*service.TurnResult, error)
}

type REPL struct {
	chat      Responder
	in        io.Reader
	out       io.Writer
	errOut    io.Writer
	sessionID string
}

func New(chat Responder, in io.Reader, out, errOut io.Writer) *REPL {
	return &REPL{
		chat:      chat,
		in:        in,
		out:       out,
		errOut:    errOut,
		sessionID: uuid.NewString(),
	}
}

// IsExitCommand reports whether a line ends the session.
func IsExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// Run loops until an exit command, EOF or context cancellation. Ctrl-C is
// handled by the caller cancelling ctx.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "AI Agent ready. Type 'quit', 'exit' or 'q' to leave.")

	// stdin reader goroutine -> lines into channel, so a blocked read
	// cannot stall shutdown
	inputCh := make(chan string)
	scanner := bufio.NewScanner(r.in)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	for {
		fmt.Fprint(r.out, "\nYou: ")

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out, "\nGoodbye!")
			return nil
		case line, ok = <-inputCh:
			if !ok {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return scanner.Err()
			}
		}

		if IsExitCommand(line) {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fmt.Fprint(r.out, "Agent: ")
		result, err := r.chat.RespondStream(ctx, r.sessionID, line, func(delta string) {
			fmt.Fprint(r.out, delta)
		})
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			fmt.Fprintf(r.errOut, "error: %v\n", err)
			continue
		}
		r.sessionID = result.SessionID
		fmt.Fprintln(r.out)
	}
}

package llm

import (
	"context"
	"errors"
)

// ErrNoReply is returned when the provider answered without any choices.
var ErrNoReply = errors.New("llm: empty reply")

// Client sends a prompt to an LLM and returns the reply text.
// Model is provider-specific (e.g. "gpt-4o-mini", "llama-3.3-70b-versatile").
type Client interface {
	Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, model, systemPrompt, userMessage string) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	return f(ctx, model, systemPrompt, userMessage)
}

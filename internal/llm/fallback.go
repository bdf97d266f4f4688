package llm

import (
	"context"
	"errors"
)

// Fallback tries each client in order and returns the first successful reply. When
// every client fails the errors are joined.
type Fallback struct {
	Clients []Client
}

// NewFallback skips nil clients.
func NewFallback(clients ...Client) *Fallback {
	f := &Fallback{}
	for _, c := range clients {
		if c != nil {
			f.Clients = append(f.Clients, c)
		}
	}
	return f
}

// Complete implements Client.
func (f *Fallback) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	if len(f.Clients) == 0 {
		return "", errors.New("llm: no clients configured")
	}
	var errs []error
	for _, c := range f.Clients {
		s, err := c.Complete(ctx, model, systemPrompt, userMessage)
		if err == nil {
			return s, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

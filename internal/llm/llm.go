package llm

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("llm unavailable")

// Client is a minimal "generate text from prompt" surface; the
// provider's internals are opaque to the pipeline.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

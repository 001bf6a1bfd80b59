package llm

import (
	"context"
	"fmt"
)

// Generator is the text generation capability the pipeline depends on.
// Implementations own their transport timeout.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	// IsAvailable is a pre-flight check; a later Generate may still fail.
	IsAvailable(ctx context.Context) bool
	Provider() string
	Model() string
}

// Request is one generation call. MaxTokens <= 0 leaves the cap to the backend.
type Request struct {
	Prompt       string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
}

// Error is returned by every backend on transport or protocol failure.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapErr(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Provider: provider, Err: err}
}

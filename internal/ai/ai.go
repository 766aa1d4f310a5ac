package ai

import (
	"context"
	"errors"
)

// ErrEmptyReply is returned when the model answers with no text
var ErrEmptyReply = errors.New("ai: empty reply")

// TextGenerator turns a prompt into free text
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to TextGenerator
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Unavailable is used when no API key is configured; every call fails
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", errors.New("ai: not configured")
}

package llmclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyContent is wrapped in a ModelError when a provider answers with no text.
var ErrEmptyContent = errors.New("llm returned empty content")

// Role names shared by every provider adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string
	Content string
}

// Request is a provider-neutral completion request.
type Request struct {
	System      string
	Messages    []Message
	Model       string // overrides the client default when set
	MaxTokens   int
	Temperature *float64
}

// Completion is the provider-neutral result.
type Completion struct {
	Content string
	Model   string
}

// LLMClient defines the interface for LLM providers.
type LLMClient interface {
	Name() string
	Close() error
	Complete(ctx context.Context, req Request) (Completion, error)
	// Stream forwards text deltas to onChunk as they arrive and returns the
	// full completion once the provider finishes.
	Stream(ctx context.Context, req Request, onChunk func(chunk string)) (Completion, error)
}

// NewRequest builds a single-turn request.
func NewRequest(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// Temperature is a helper for the optional Request.Temperature field.
func Temperature(v float64) *float64 { return &v }

// ModelError is returned for transport failures, non-2xx answers and empty content.
type ModelError struct {
	Provider string
	Err      error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}
func (e *ModelError) Unwrap() error { return e.Err }

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// checkContent converts blank completions into a ModelError.
func checkContent(provider string, c Completion) (Completion, error) {
	if strings.TrimSpace(c.Content) == "" {
		return Completion{}, &ModelError{Provider: provider, Err: ErrEmptyContent}
	}
	return c, nil
}

func modelOr(req Request, fallback string) string {
	if m := strings.TrimSpace(req.Model); m != "" {
		return m
	}
	return fallback
}

func maxTokensOr(req Request, fallback int) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return fallback
}

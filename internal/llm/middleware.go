package llm

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/time/rate"

	"idea2app/internal/llmclient"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, retries, logging, hooks, etc.).
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit caps calls at rps per second with the given burst. Calls wait
// for a slot or fail with the context error. rps <= 0 disables it.
func RateLimit(rps float64, burst int) Middleware {
	return func(next LLMClient) LLMClient {
		return &rateLimited{next: next, rl: newLimiter(rps, burst)}
	}
}

type rateLimited struct {
	next LLMClient
	rl   *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }

func (c *rateLimited) Complete(ctx context.Context, req Request) (Completion, error) {
	if err := acquire(ctx, c.rl); err != nil {
		return Completion{}, err
	}
	return c.next.Complete(ctx, req)
}

func (c *rateLimited) Stream(ctx context.Context, req Request, onChunk func(string)) (Completion, error) {
	if err := acquire(ctx, c.rl); err != nil {
		return Completion{}, err
	}
	return c.next.Stream(ctx, req, onChunk)
}

// -------- Retry with exponential backoff --------

// Retry retries Complete up to maxAttempts with exponential backoff
// starting at baseDelay. If context is canceled, it stops immediately.
// Stream is never retried once a chunk has been forwarded.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next LLMClient) LLMClient {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next LLMClient
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Complete(ctx context.Context, req Request) (Completion, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		var pErr *llmclient.PermanentError
		if errors.As(err, &pErr) {
			return Completion{}, err
		}
		last = err
		if i == r.max-1 {
			break
		}
		select {
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return Completion{}, last
}

func (r *retrying) Stream(ctx context.Context, req Request, onChunk func(string)) (Completion, error) {
	var last error
	for i := 0; i < r.max; i++ {
		forwarded := false
		out, err := r.next.Stream(ctx, req, func(chunk string) {
			forwarded = true
			if onChunk != nil {
				onChunk(chunk)
			}
		})
		if err == nil {
			return out, nil
		}
		var pErr *llmclient.PermanentError
		if forwarded || errors.As(err, &pErr) {
			return Completion{}, err
		}
		last = err
		if i == r.max-1 {
			break
		}
		select {
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return Completion{}, last
}

// -------- Logging & Hooks --------

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next LLMClient) LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next LLMClient
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Complete(ctx context.Context, req Request) (Completion, error) {
	start := time.Now()
	l.log.Printf("LLM request (%s via %s): %d bytes", PhaseFrom(ctx), l.next.Name(), requestBytes(req))
	out, err := l.next.Complete(ctx, req)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", PhaseFrom(ctx), err)
		return out, err
	}
	l.log.Printf("LLM response (%s): %d bytes in %s", PhaseFrom(ctx), len(out.Content), time.Since(start).Round(time.Millisecond))
	return out, nil
}

func (l *logging) Stream(ctx context.Context, req Request, onChunk func(string)) (Completion, error) {
	l.log.Printf("LLM stream request (%s via %s): %d bytes", PhaseFrom(ctx), l.next.Name(), requestBytes(req))
	out, err := l.next.Stream(ctx, req, onChunk)
	if err != nil {
		l.log.Printf("LLM stream error (%s): %v", PhaseFrom(ctx), err)
	}
	return out, err
}

func requestBytes(req Request) int {
	n := len(req.System)
	for _, m := range req.Messages {
		n += len(m.Content)
	}
	return n
}

// WithHooks runs the context's hooks around every call: Before outermost
// first, After in reverse.
// If no hook is present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next LLMClient) LLMClient {
		return &hooked{next: next}
	}
}

type hooked struct{ next LLMClient }

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }

func (h *hooked) Complete(ctx context.Context, req Request) (Completion, error) {
	hooks, phase := hooksFrom(ctx), PhaseFrom(ctx)
	for _, hook := range hooks {
		hook.Before(ctx, phase, req)
	}
	out, err := h.next.Complete(ctx, req)
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i].After(ctx, phase, out, err)
	}
	return out, err
}

func (h *hooked) Stream(ctx context.Context, req Request, onChunk func(string)) (Completion, error) {
	hooks, phase := hooksFrom(ctx), PhaseFrom(ctx)
	for _, hook := range hooks {
		hook.Before(ctx, phase, req)
	}
	out, err := h.next.Stream(ctx, req, onChunk)
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i].After(ctx, phase, out, err)
	}
	return out, err
}

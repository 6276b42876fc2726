package llm

import (
	"context"
)

// PromptHook observes every model call; used for prompt capture and tracing.
type PromptHook interface {
	Before(ctx context.Context, phase string, req Request)
	After(ctx context.Context, phase string, out Completion, err error)
}

// callScope is what a model call carries in its context: the phase making
// the call and the hooks observing it, outermost first.
type callScope struct {
	phase string
	hooks []PromptHook
}

type ctxKeyScope struct{}

func scopeFrom(ctx context.Context) callScope {
	sc, _ := ctx.Value(ctxKeyScope{}).(callScope)
	return sc
}

// WithHook adds hook to the ones already attached to ctx.
func WithHook(ctx context.Context, hook PromptHook) context.Context {
	if hook == nil {
		return ctx
	}
	sc := scopeFrom(ctx)
	hooks := make([]PromptHook, 0, len(sc.hooks)+1)
	sc.hooks = append(append(hooks, sc.hooks...), hook)
	return context.WithValue(ctx, ctxKeyScope{}, sc)
}

// WithPhase tags the context with the pipeline phase making the call
// ("competitive-analysis", "chat:summary", ...). Hooks are kept.
func WithPhase(ctx context.Context, phase string) context.Context {
	sc := scopeFrom(ctx)
	sc.phase = phase
	return context.WithValue(ctx, ctxKeyScope{}, sc)
}

// PhaseFrom returns the phase stored in the context, or "unknown".
func PhaseFrom(ctx context.Context) string {
	if p := scopeFrom(ctx).phase; p != "" {
		return p
	}
	return "unknown"
}

func hooksFrom(ctx context.Context) []PromptHook {
	return scopeFrom(ctx).hooks
}

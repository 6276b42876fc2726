package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"idea2app/internal/artifact"
	"idea2app/internal/llm"
	"idea2app/internal/mockup"
)

// ErrEmptySynthesis is returned when the model answers with blank content.
var ErrEmptySynthesis = errors.New("synthesis returned empty content")

const defaultMaxTokens = 8192

// Result is one synthesized document.
type Result struct {
	Content string
	Model   string
}

// Engine turns assembled context into finished artifact content with one
// model call per document type.
type Engine struct {
	client    llm.LLMClient
	model     string
	maxTokens int
	catalog   *mockup.Catalog
}

type Option func(*Engine)

// WithModel overrides the provider's default model.
func WithModel(model string) Option { return func(e *Engine) { e.model = model } }

// WithMaxTokens overrides the output token cap.
func WithMaxTokens(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithCatalog sets the component catalog listed in the mockup prompt.
func WithCatalog(c *mockup.Catalog) Option { return func(e *Engine) { e.catalog = c } }

func NewEngine(client llm.LLMClient, opts ...Option) *Engine {
	e := &Engine{client: client, maxTokens: defaultMaxTokens, catalog: mockup.DefaultCatalog()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CompetitiveAnalysis synthesizes the analysis from the research context
// built by research.BuildContext.
func (e *Engine) CompetitiveAnalysis(ctx context.Context, idea, name, researchContext string) (Result, error) {
	var sb strings.Builder
	writeIdea(&sb, idea, name)
	sb.WriteString("\nResearch context:\n")
	sb.WriteString(researchContext)
	sb.WriteString("\n")
	return e.generate(ctx, artifact.TypeCompetitiveAnalysis, analysisSystemPrompt, sb.String())
}

// PRD writes the requirements document. analysis may be empty.
func (e *Engine) PRD(ctx context.Context, idea, name, analysis string) (Result, error) {
	var sb strings.Builder
	writeIdea(&sb, idea, name)
	writePrior(&sb, "Competitive analysis", analysis)
	return e.generate(ctx, artifact.TypePRD, prdSystemPrompt, sb.String())
}

// MVPPlan writes the MVP plan. prd may be empty.
func (e *Engine) MVPPlan(ctx context.Context, idea, name, prd string) (Result, error) {
	var sb strings.Builder
	writeIdea(&sb, idea, name)
	writePrior(&sb, "Product requirements document", prd)
	return e.generate(ctx, artifact.TypeMVPPlan, mvpSystemPrompt, sb.String())
}

// TechSpec writes the technical specification. prd may be empty.
func (e *Engine) TechSpec(ctx context.Context, idea, name, prd string) (Result, error) {
	var sb strings.Builder
	writeIdea(&sb, idea, name)
	writePrior(&sb, "Product requirements document", prd)
	return e.generate(ctx, artifact.TypeTechSpec, techSpecSystemPrompt, sb.String())
}

// Mockup asks for markdown with one JSON UI tree per screen. prd and mvp
// may be empty.
func (e *Engine) Mockup(ctx context.Context, idea, name, prd, mvp string) (Result, error) {
	var sb strings.Builder
	writeIdea(&sb, idea, name)
	writePrior(&sb, "Product requirements document", prd)
	writePrior(&sb, "MVP plan", mvp)
	return e.generate(ctx, artifact.TypeMockup, mockupSystemPrompt+e.catalog.Prompt(), sb.String())
}

func (e *Engine) generate(ctx context.Context, typ artifact.Type, system, user string) (Result, error) {
	ctx = llm.WithPhase(ctx, string(typ))
	out, err := e.client.Complete(ctx, llm.Request{
		System:    system,
		Messages:  []llm.Message{{Role: "user", Content: user}},
		Model:     e.model,
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		return Result{}, fmt.Errorf("synthesize %s: %w", typ, err)
	}
	content := strings.TrimSpace(out.Content)
	if content == "" {
		return Result{}, fmt.Errorf("synthesize %s: %w", typ, ErrEmptySynthesis)
	}
	return Result{Content: content, Model: out.Model}, nil
}

func writeIdea(sb *strings.Builder, idea, name string) {
	fmt.Fprintf(sb, "Product name: %s\n", strings.TrimSpace(name))
	fmt.Fprintf(sb, "Idea:\n%s\n", strings.TrimSpace(idea))
}

// writePrior appends a prior-stage document when there is one; missing
// documents are simply left out.
func writePrior(sb *strings.Builder, label, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n%s\n", label, content)
}

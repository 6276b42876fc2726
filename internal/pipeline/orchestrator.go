package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"idea2app/internal/artifact"
	"idea2app/internal/mockup"
	"idea2app/internal/project"
	"idea2app/internal/research"
	"idea2app/internal/synthesis"
)

// DefaultTimeout bounds one generation end to end.
const DefaultTimeout = 5 * time.Minute

// Researcher is the web-intelligence side of competitive analysis.
type Researcher interface {
	SearchCompetitors(ctx context.Context, idea, name string) (research.SearchResult, error)
	ExtractPages(ctx context.Context, urls []string) (research.ExtractResult, error)
}

// Synthesizer writes one document per call.
type Synthesizer interface {
	CompetitiveAnalysis(ctx context.Context, idea, name, researchContext string) (synthesis.Result, error)
	PRD(ctx context.Context, idea, name, analysis string) (synthesis.Result, error)
	MVPPlan(ctx context.Context, idea, name, prd string) (synthesis.Result, error)
	TechSpec(ctx context.Context, idea, name, prd string) (synthesis.Result, error)
	Mockup(ctx context.Context, idea, name, prd, mvp string) (synthesis.Result, error)
}

// ArtifactStore lists newest first.
type ArtifactStore interface {
	Create(ctx context.Context, a artifact.Artifact) (artifact.Artifact, error)
	ListByProject(ctx context.Context, projectID string, typ artifact.Type) ([]artifact.Artifact, error)
}

type ProjectStore interface {
	Get(ctx context.Context, projectID string) (project.Project, error)
}

// CreditLedger consumes credits atomically; false means the balance was
// too low and nothing was charged.
type CreditLedger interface {
	TryConsume(ctx context.Context, userID string, amount int, action, description string) (bool, error)
}

// Costs maps an artifact type to its credit price.
type Costs map[artifact.Type]int

func DefaultCosts() Costs {
	return Costs{
		artifact.TypeCompetitiveAnalysis: 5,
		artifact.TypePRD:                 3,
		artifact.TypeMVPPlan:             3,
		artifact.TypeTechSpec:            3,
		artifact.TypeMockup:              4,
	}
}

// Request asks for one new artifact version.
type Request struct {
	UserID    string
	ProjectID string
	Type      artifact.Type
}

// Orchestrator sequences research, synthesis and persistence for every
// artifact type.
type Orchestrator struct {
	research  Researcher
	synth     Synthesizer
	artifacts ArtifactStore
	projects  ProjectStore
	credits   CreditLedger
	catalog   *mockup.Catalog

	costs    Costs
	timeout  time.Duration
	inflight *inflight
	now      func() time.Time
}

type Option func(*Orchestrator)

// WithCosts overrides individual prices; types not in c keep their default.
func WithCosts(c Costs) Option {
	return func(o *Orchestrator) {
		for t, v := range c {
			o.costs[t] = v
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithCatalog(c *mockup.Catalog) Option { return func(o *Orchestrator) { o.catalog = c } }

// WithClock overrides time.Now; used by tests.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

func New(r Researcher, s Synthesizer, artifacts ArtifactStore, projects ProjectStore, credits CreditLedger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		research:  r,
		synth:     s,
		artifacts: artifacts,
		projects:  projects,
		credits:   credits,
		catalog:   mockup.DefaultCatalog(),
		costs:     DefaultCosts(),
		timeout:   DefaultTimeout,
		inflight:  newInflight(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Cost returns the credit price of typ.
func (o *Orchestrator) Cost(typ artifact.Type) int { return o.costs[typ] }

// Run generates and stores a new version of req.Type. Ownership and
// prerequisites are checked before any credit is consumed. Credits are not
// refunded when generation fails afterwards.
func (o *Orchestrator) Run(ctx context.Context, req Request) (artifact.Artifact, error) {
	p, err := o.projects.Get(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return artifact.Artifact{}, ErrProjectNotFound
		}
		return artifact.Artifact{}, fmt.Errorf("load project: %w", err)
	}
	if !p.OwnedBy(req.UserID) {
		return artifact.Artifact{}, ErrProjectNotFound
	}

	if missing := req.Type.Prerequisite(); missing != "" {
		list, err := o.artifacts.ListByProject(ctx, p.ID, missing)
		if err != nil {
			return artifact.Artifact{}, fmt.Errorf("check prerequisite %s: %w", missing, err)
		}
		if len(list) == 0 {
			return artifact.Artifact{}, &PrerequisiteError{Type: req.Type, Missing: missing}
		}
	}

	release, ok := o.inflight.acquire(p.ID + "/" + string(req.Type))
	if !ok {
		return artifact.Artifact{}, ErrGenerationInProgress
	}
	defer release()

	cost := o.Cost(req.Type)
	if cost > 0 {
		ok, err := o.credits.TryConsume(ctx, req.UserID, cost, "generate:"+string(req.Type),
			fmt.Sprintf("%s for %s", req.Type, p.Name))
		if err != nil {
			return artifact.Artifact{}, fmt.Errorf("consume credits: %w", err)
		}
		if !ok {
			return artifact.Artifact{}, ErrInsufficientCredits
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	start := o.now()
	gen, err := o.generate(genCtx, p, req.Type)
	if err != nil {
		if genCtx.Err() == context.DeadlineExceeded && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		log.Printf("pipeline: %s for project %s failed after %s (%d credits consumed): %v",
			req.Type, p.ID, o.now().Sub(start).Round(time.Millisecond), cost, err)
		return artifact.Artifact{}, fmt.Errorf("generate %s: %w", req.Type, err)
	}

	now := o.now()
	saved, err := o.artifacts.Create(ctx, artifact.Artifact{
		ID:        uuid.NewString(),
		ProjectID: p.ID,
		Type:      req.Type,
		Content:   gen.Content,
		Metadata:  artifact.Metadata{Source: gen.Source, Model: gen.Model, GeneratedAt: now},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("save %s: %w", req.Type, err)
	}
	log.Printf("pipeline: %s for project %s stored as %s (source=%s, %d bytes)", req.Type, p.ID, saved.ID, gen.Source, len(gen.Content))
	return saved, nil
}

func (o *Orchestrator) generate(ctx context.Context, p project.Project, typ artifact.Type) (Generated, error) {
	switch typ {
	case artifact.TypeCompetitiveAnalysis:
		return o.GenerateCompetitiveAnalysis(ctx, p.Brief(), p.Name)
	case artifact.TypePRD:
		return o.GeneratePRD(ctx, p)
	case artifact.TypeMVPPlan:
		return o.GenerateMVPPlan(ctx, p)
	case artifact.TypeTechSpec:
		return o.GenerateTechSpec(ctx, p)
	case artifact.TypeMockup:
		return o.GenerateMockup(ctx, p)
	default:
		return Generated{}, fmt.Errorf("unknown artifact type %q", typ)
	}
}

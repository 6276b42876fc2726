package pipeline

import (
	"context"
	"fmt"
	"log"

	"idea2app/internal/artifact"
	"idea2app/internal/mockup"
	"idea2app/internal/project"
	"idea2app/internal/research"
)

// Source values recorded in artifact metadata.
const (
	SourceResearch = "research"
	SourceIdeaOnly = "idea-only"
	SourceLLM      = "llm"
)

// Generated is synthesized content that has not been persisted yet.
type Generated struct {
	Content string
	Model   string
	Source  string
}

// GenerateCompetitiveAnalysis runs search, then extraction, then synthesis.
// Search and extraction failures degrade the context; only the synthesis
// call is fatal.
func (o *Orchestrator) GenerateCompetitiveAnalysis(ctx context.Context, idea, name string) (Generated, error) {
	var competitors []research.Competitor
	res, err := o.research.SearchCompetitors(ctx, idea, name)
	if err != nil {
		log.Printf("pipeline: competitor search for %q failed, continuing without competitors: %v", name, err)
	} else {
		competitors = res.Competitors
		if len(competitors) == 0 {
			log.Printf("pipeline: competitor search for %q returned no usable competitors (raw %d bytes)", name, len(res.RawResponse))
		}
	}

	var pages []research.ExtractedPage
	if len(competitors) > 0 {
		urls := make([]string, 0, len(competitors))
		for _, c := range competitors {
			urls = append(urls, c.URL)
		}
		ex, err := o.research.ExtractPages(ctx, urls)
		if err != nil {
			log.Printf("pipeline: extraction of %d urls failed, continuing without page content: %v", len(urls), err)
		} else {
			pages = ex.Results
			for _, f := range ex.Failed {
				log.Printf("pipeline: extraction failed for %s: %s", f.URL, f.Error)
			}
		}
	}

	out, err := o.synth.CompetitiveAnalysis(ctx, idea, name, research.BuildContext(competitors, pages))
	if err != nil {
		return Generated{}, err
	}
	source := SourceResearch
	if len(competitors) == 0 {
		source = SourceIdeaOnly
	}
	return Generated{Content: out.Content, Model: out.Model, Source: source}, nil
}

// GeneratePRD builds on the latest competitive analysis when one exists.
func (o *Orchestrator) GeneratePRD(ctx context.Context, p project.Project) (Generated, error) {
	analysis, err := o.latestContent(ctx, p.ID, artifact.TypeCompetitiveAnalysis)
	if err != nil {
		return Generated{}, err
	}
	out, err := o.synth.PRD(ctx, p.Brief(), p.Name, analysis)
	if err != nil {
		return Generated{}, err
	}
	return Generated{Content: out.Content, Model: out.Model, Source: SourceLLM}, nil
}

// GenerateMVPPlan builds on the latest PRD when one exists.
func (o *Orchestrator) GenerateMVPPlan(ctx context.Context, p project.Project) (Generated, error) {
	prd, err := o.latestContent(ctx, p.ID, artifact.TypePRD)
	if err != nil {
		return Generated{}, err
	}
	out, err := o.synth.MVPPlan(ctx, p.Brief(), p.Name, prd)
	if err != nil {
		return Generated{}, err
	}
	return Generated{Content: out.Content, Model: out.Model, Source: SourceLLM}, nil
}

// GenerateTechSpec builds on the latest PRD when one exists.
func (o *Orchestrator) GenerateTechSpec(ctx context.Context, p project.Project) (Generated, error) {
	prd, err := o.latestContent(ctx, p.ID, artifact.TypePRD)
	if err != nil {
		return Generated{}, err
	}
	out, err := o.synth.TechSpec(ctx, p.Brief(), p.Name, prd)
	if err != nil {
		return Generated{}, err
	}
	return Generated{Content: out.Content, Model: out.Model, Source: SourceLLM}, nil
}

// GenerateMockup builds on the latest PRD and MVP plan. The content is run
// through the mockup parser; Source records which reconstruction path
// succeeded, or "legacy" when none did.
func (o *Orchestrator) GenerateMockup(ctx context.Context, p project.Project) (Generated, error) {
	prd, err := o.latestContent(ctx, p.ID, artifact.TypePRD)
	if err != nil {
		return Generated{}, err
	}
	mvp, err := o.latestContent(ctx, p.ID, artifact.TypeMVPPlan)
	if err != nil {
		return Generated{}, err
	}
	out, err := o.synth.Mockup(ctx, p.Brief(), p.Name, prd, mvp)
	if err != nil {
		return Generated{}, err
	}
	parsed := mockup.Parse(out.Content, o.catalog)
	if parsed.Mode == mockup.ModeLegacy {
		log.Printf("pipeline: mockup for project %s has no parseable spec, storing as legacy", p.ID)
	} else {
		for _, page := range parsed.Pages {
			for _, issue := range page.Spec.Validate(o.catalog) {
				log.Printf("pipeline: mockup page %q: %s", page.Title, issue)
			}
		}
	}
	return Generated{Content: out.Content, Model: out.Model, Source: string(parsed.Mode)}, nil
}

func (o *Orchestrator) latestContent(ctx context.Context, projectID string, typ artifact.Type) (string, error) {
	list, err := o.artifacts.ListByProject(ctx, projectID, typ)
	if err != nil {
		return "", fmt.Errorf("load latest %s: %w", typ, err)
	}
	if a, ok := artifact.Latest(list); ok {
		return a.Content, nil
	}
	return "", nil
}

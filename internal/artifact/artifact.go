package artifact

import (
	"fmt"
	"strings"
	"time"
)

// Type names one kind of generated document.
type Type string

const (
	TypeCompetitiveAnalysis Type = "competitive-analysis"
	TypePRD                 Type = "prd"
	TypeMVPPlan             Type = "mvp-plan"
	TypeTechSpec            Type = "tech-spec"
	TypeMockup              Type = "mockup"
)

// Types lists every artifact type in pipeline order.
var Types = []Type{TypeCompetitiveAnalysis, TypePRD, TypeMVPPlan, TypeTechSpec, TypeMockup}

// ParseType validates a user-supplied type name.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown artifact type %q", s)
}

// Prerequisite returns the artifact type that must exist before t can be
// generated, or "" when t has no dependency.
func (t Type) Prerequisite() Type {
	switch t {
	case TypePRD:
		return TypeCompetitiveAnalysis
	case TypeMVPPlan, TypeTechSpec, TypeMockup:
		return TypePRD
	default:
		return ""
	}
}

// Metadata records how an artifact was produced.
type Metadata struct {
	Source      string    `json:"source"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Artifact is one persisted version of a generated document. Content is
// markdown, or markdown with embedded JSON for mockups.
type Artifact struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Type      Type      `json:"type"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Latest returns the most recent artifact from a newest-first list.
func Latest(list []Artifact) (Artifact, bool) {
	if len(list) == 0 {
		return Artifact{}, false
	}
	return list[0], true
}

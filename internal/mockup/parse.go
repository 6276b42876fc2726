package mockup

import (
	"errors"
	"strings"
)

// Mode names the reconstruction path taken for a piece of model output.
type Mode string

const (
	ModeBlocks Mode = "blocks"
	ModePatch  Mode = "patch"
	// ModeLegacy means no spec could be reconstructed; callers show the raw
	// content instead.
	ModeLegacy Mode = "legacy"
)

// ErrIncompleteSpec is returned when a patch stream never set both root and
// elements.
var ErrIncompleteSpec = errors.New("mockup: spec is missing root or elements")

// Result is the outcome of Parse.
type Result struct {
	Mode  Mode   `json:"mode"`
	Pages []Page `json:"pages"`
}

// Parse reconstructs renderable pages from stored mockup content. Each
// reconstructed spec is passed through SplitPages; a non-empty split
// replaces the single page.
func Parse(content string, catalog *Catalog) Result {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if strings.TrimSpace(content) == "" {
		return Result{Mode: ModeLegacy}
	}

	var (
		mode  Mode
		pages []Page
	)
	if isPatchStream(content) {
		mode = ModePatch
		if spec, err := ApplyPatches(content); err == nil {
			pages = []Page{{Title: DeriveTitle(spec, 1), Spec: spec}}
		}
	} else {
		mode = ModeBlocks
		pages = ParseBlocks(content)
	}
	if len(pages) == 0 {
		return Result{Mode: ModeLegacy}
	}

	out := make([]Page, 0, len(pages))
	for _, p := range pages {
		if split := SplitPages(p.Spec, catalog); len(split) > 0 {
			out = append(out, split...)
			continue
		}
		out = append(out, p)
	}
	return Result{Mode: mode, Pages: out}
}

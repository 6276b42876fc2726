package research

import (
	"fmt"
)

// Competitor is one candidate returned by the reasoning-search step.
type Competitor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	WhyCompetes string `json:"whyCompetes"`
	URL         string `json:"url"`
}

// ExtractedPage is the raw text fetched for one URL.
type ExtractedPage struct {
	URL     string `json:"url"`
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
}

// FailedURL records a per-URL extraction miss.
type FailedURL struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// SearchResult carries parsed competitors and the model's raw reply.
// An empty Competitors slice is a valid outcome.
type SearchResult struct {
	Competitors []Competitor
	RawResponse string
}

// ExtractResult is the outcome of one extraction batch.
type ExtractResult struct {
	Results []ExtractedPage
	Failed  []FailedURL
}

// SearchError wraps a failure of the reasoning-search provider call.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string { return fmt.Sprintf("competitor search: %v", e.Err) }
func (e *SearchError) Unwrap() error { return e.Err }

// ExtractionError wraps a fatal failure of one extraction batch
// (timeout, transport error, non-2xx answer).
type ExtractionError struct {
	StatusCode int
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("page extraction: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("page extraction: %v", e.Err)
}
func (e *ExtractionError) Unwrap() error { return e.Err }

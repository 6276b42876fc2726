package research

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"idea2app/internal/llm"
)

const (
	// MaxExtractURLs caps one extraction batch.
	MaxExtractURLs = 5
	// ExtractTimeout bounds one extraction batch.
	ExtractTimeout = 30 * time.Second
)

// PageExtractionClient fetches raw text for a batch of URLs. Per-URL misses
// belong in ExtractResult.Failed; a returned error fails the whole batch.
type PageExtractionClient interface {
	Extract(ctx context.Context, urls []string) (ExtractResult, error)
}

// SourceFetcher wraps the two web-intelligence providers. Each call is
// independently fallible.
type SourceFetcher struct {
	search      llm.LLMClient
	searchModel string
	extractor   PageExtractionClient
	timeout     time.Duration
}

// Option customizes a SourceFetcher.
type Option func(*SourceFetcher)

// WithSearchModel overrides the model requested from the search provider.
func WithSearchModel(model string) Option {
	return func(f *SourceFetcher) { f.searchModel = model }
}

// WithExtractTimeout overrides ExtractTimeout; used by tests.
func WithExtractTimeout(d time.Duration) Option {
	return func(f *SourceFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func NewSourceFetcher(search llm.LLMClient, extractor PageExtractionClient, opts ...Option) *SourceFetcher {
	f := &SourceFetcher{search: search, extractor: extractor, timeout: ExtractTimeout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ExtractPages filters urls to well-formed http(s) URLs, caps the batch at
// MaxExtractURLs and runs one bounded extraction call. It is not retried.
func (f *SourceFetcher) ExtractPages(ctx context.Context, urls []string) (ExtractResult, error) {
	valid := FilterURLs(urls)
	if len(valid) == 0 {
		return ExtractResult{}, nil
	}
	if f.extractor == nil {
		return ExtractResult{}, &ExtractionError{Err: errors.New("extraction client not configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	res, err := f.extractor.Extract(ctx, valid)
	if err != nil {
		var exErr *ExtractionError
		if errors.As(err, &exErr) {
			return ExtractResult{}, err
		}
		return ExtractResult{}, &ExtractionError{Err: err}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ExtractResult{}, &ExtractionError{Err: ctxErr}
	}
	return res, nil
}

// FilterURLs keeps well-formed absolute http(s) URLs, in order, capped at
// MaxExtractURLs.
func FilterURLs(urls []string) []string {
	out := make([]string, 0, MaxExtractURLs)
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		out = append(out, raw)
		if len(out) == MaxExtractURLs {
			break
		}
	}
	return out
}

package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"idea2app/internal/llm"
	"idea2app/internal/util/jsonutil"
)

const searchSystemPrompt = `You are a market research analyst with live web access.
Identify 3-5 REAL companies or products that compete DIRECTLY with the described business idea.

Rules:
- Only include competitors that solve the same problem for the same audience.
- Do NOT include generic platforms, tangential tools, or companies that merely operate in the same broad industry. Irrelevant matches are worse than fewer matches.
- Every competitor must have a working homepage URL starting with http:// or https://.
- Respond with JSON ONLY. No prose, no markdown, no code fences.

Output schema:
{"competitors":[{"name":"string","description":"one or two sentences","whyCompetes":"why it targets the same users and problem","url":"https://..."}]}`

var reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)

// SearchCompetitors asks the reasoning-search model for direct competitors.
// A reply that cannot be decoded yields an empty list and no error; only a
// failed provider call is returned as *SearchError.
func (f *SourceFetcher) SearchCompetitors(ctx context.Context, idea, name string) (SearchResult, error) {
	if f.search == nil {
		return SearchResult{}, &SearchError{Err: fmt.Errorf("search client not configured")}
	}
	ctx = llm.WithPhase(ctx, "search")
	req := llm.Request{
		System:   searchSystemPrompt,
		Messages: []llm.Message{{Role: "user", Content: searchUserPrompt(idea, name)}},
		Model:    f.searchModel,
	}
	out, err := f.search.Complete(ctx, req)
	if err != nil {
		return SearchResult{}, &SearchError{Err: err}
	}
	competitors, perr := ParseCompetitors(out.Content)
	if perr != nil {
		log.Printf("research: competitor reply not parseable (%v); raw=%q", perr, truncate(out.Content, 200))
		return SearchResult{RawResponse: out.Content}, nil
	}
	return SearchResult{Competitors: competitors, RawResponse: out.Content}, nil
}

func searchUserPrompt(idea, name string) string {
	var sb strings.Builder
	if strings.TrimSpace(name) != "" {
		fmt.Fprintf(&sb, "Business name: %s\n", strings.TrimSpace(name))
	}
	fmt.Fprintf(&sb, "Business idea: %s\n\nFind the closest direct competitors.", strings.TrimSpace(idea))
	return sb.String()
}

// ParseCompetitors extracts the first balanced JSON object from raw and
// decodes its competitors list. Entries without a name are dropped.
func ParseCompetitors(raw string) ([]Competitor, error) {
	cleaned := reThink.ReplaceAllString(raw, "")
	span, err := jsonutil.ExtractObject(cleaned)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Competitors []Competitor `json:"competitors"`
	}
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, err
	}
	out := make([]Competitor, 0, len(payload.Competitors))
	for _, c := range payload.Competitors {
		c.Name = strings.TrimSpace(c.Name)
		c.URL = strings.TrimSpace(c.URL)
		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

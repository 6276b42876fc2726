package research

import (
	"fmt"
	"strings"

	"idea2app/internal/util/textutil"
)

const (
	// NoCompetitorData is returned by BuildContext when search produced nothing.
	NoCompetitorData = "No competitor data was gathered. Base the analysis on the business idea alone and state that live market data was unavailable."

	extractionUnavailable = "Content extraction not available for this competitor."
	contextSeparator      = "\n\n---\n\n"

	// MaxExcerptChars bounds the extracted content attached per competitor.
	MaxExcerptChars = 1500
)

// BuildContext merges competitors and extracted pages into one text block.
// Pages attach to a competitor only when their URL is string-equal to the
// competitor URL.
func BuildContext(competitors []Competitor, extracted []ExtractedPage) string {
	if len(competitors) == 0 {
		return NoCompetitorData
	}
	byURL := make(map[string]ExtractedPage, len(extracted))
	for _, p := range extracted {
		if _, seen := byURL[p.URL]; !seen {
			byURL[p.URL] = p
		}
	}

	blocks := make([]string, 0, len(competitors))
	for i, c := range competitors {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Competitor %d: %s\n", i+1, c.Name)
		fmt.Fprintf(&sb, "Description: %s\n", c.Description)
		fmt.Fprintf(&sb, "Why it competes: %s\n", c.WhyCompetes)
		if c.URL != "" {
			fmt.Fprintf(&sb, "URL: %s\n", c.URL)
		}
		if page, ok := matchPage(byURL, c.URL); ok {
			sb.WriteString("Website content (excerpt):\n")
			sb.WriteString(excerpt(textutil.CleanMarkdown(page.Content), MaxExcerptChars))
		} else {
			sb.WriteString(extractionUnavailable)
		}
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, contextSeparator)
}

func matchPage(byURL map[string]ExtractedPage, url string) (ExtractedPage, bool) {
	if url == "" {
		return ExtractedPage{}, false
	}
	page, ok := byURL[url]
	return page, ok
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

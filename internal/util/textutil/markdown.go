package textutil

import (
	"regexp"
	"strings"
)

var (
	// reImageMD matches markdown images: ![alt](url)
	reImageMD = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	// reImageHTML matches HTML image tags: <img ...>
	reImageHTML = regexp.MustCompile(`(?is)<img[^>]*>`)
	reComment   = regexp.MustCompile(`(?s)<!--.*?-->`)
	// reLinkOnly matches lines that are nothing but a bare link, typical of
	// scraped navigation bars.
	reLinkOnly          = regexp.MustCompile(`(?m)^[ \t]*(?:[-*][ \t]*)?\[[^\]]*\]\([^)]*\)[ \t]*$`)
	reTrailingSpace     = regexp.MustCompile(`(?m)[ \t]+$`)
	reExcessiveNewlines = regexp.MustCompile(`\n{3,}`)
)

// CleanMarkdown strips content that only wastes prompt space in scraped
// pages: images, HTML comments, link-only lines and runs of blank lines.
func CleanMarkdown(text string) string {
	text = reImageMD.ReplaceAllString(text, "")
	text = reImageHTML.ReplaceAllString(text, "")
	text = reComment.ReplaceAllString(text, "")
	text = reLinkOnly.ReplaceAllString(text, "")
	text = reTrailingSpace.ReplaceAllString(text, "")

	// max 2 consecutive newlines
	text = reExcessiveNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

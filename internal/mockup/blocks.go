package mockup

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// ParseBlocks walks markdown content and decodes each fenced JSON block
// into a page, including fences nested in lists and blockquotes. The closest preceding heading becomes the page title and the
// prose between that heading and the block becomes its description. Blocks
// that do not decode into a spec with root and elements are skipped.
func ParseBlocks(content string) []Page {
	src := []byte(content)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var (
		pages []Page
		title string
		desc  []string
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title = strings.TrimSpace(nodeText(node, src))
			desc = desc[:0]
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			spec, ok := decodeBlock(blockBody(node, src))
			if !ok {
				return ast.WalkSkipChildren, nil
			}
			t := title
			if t == "" {
				t = DeriveTitle(spec, len(pages)+1)
			}
			pages = append(pages, Page{
				Title:       t,
				Description: strings.Join(desc, "\n"),
				Spec:        spec,
			})
			title = ""
			desc = desc[:0]
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			if s := strings.TrimSpace(nodeText(node, src)); s != "" {
				desc = append(desc, s)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return pages
}

func decodeBlock(body []byte) (Spec, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Spec{}, false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		log.Printf("mockup: skip block: %v", err)
		return Spec{}, false
	}
	if _, ok := probe["root"]; !ok {
		log.Printf("mockup: skip block: missing root")
		return Spec{}, false
	}
	if _, ok := probe["elements"]; !ok {
		log.Printf("mockup: skip block: missing elements")
		return Spec{}, false
	}
	var spec Spec
	if err := json.Unmarshal(body, &spec); err != nil {
		log.Printf("mockup: skip block: %v", err)
		return Spec{}, false
	}
	return spec, true
}

func blockBody(n *ast.FencedCodeBlock, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

// nodeText concatenates the inline text below n. Block children are
// separated by newlines.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	newline := func() {
		if s := sb.String(); s != "" && !strings.HasSuffix(s, "\n") {
			sb.WriteByte('\n')
		}
	}
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if c != n && c.Type() == ast.TypeBlock {
				newline()
			}
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.CodeSpan:
			for cc := t.FirstChild(); cc != nil; cc = cc.NextSibling() {
				if tt, ok := cc.(*ast.Text); ok {
					sb.Write(tt.Segment.Value(src))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

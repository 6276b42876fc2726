package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const maxPageBytes = 2 << 20

// DirectExtractor fetches each URL itself and reduces the HTML to text.
// Used when no extraction API key is configured.
type DirectExtractor struct {
	http      *http.Client
	userAgent string
}

func NewDirectExtractor(client *http.Client) *DirectExtractor {
	if client == nil {
		client = &http.Client{}
	}
	return &DirectExtractor{http: client, userAgent: "idea2app-extractor/1.0"}
}

func (d *DirectExtractor) Extract(ctx context.Context, urls []string) (ExtractResult, error) {
	pages := make([]*ExtractedPage, len(urls))
	var (
		mu     sync.Mutex
		failed []FailedURL
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxExtractURLs)
	for i, u := range urls {
		g.Go(func() error {
			page, err := d.fetch(gctx, u)
			if err != nil {
				mu.Lock()
				failed = append(failed, FailedURL{URL: u, Error: err.Error()})
				mu.Unlock()
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return ExtractResult{}, &ExtractionError{Err: err}
	}

	out := ExtractResult{Failed: failed}
	for _, p := range pages {
		if p != nil {
			out.Results = append(out.Results, *p)
		}
	}
	return out, nil
}

func (d *DirectExtractor) fetch(ctx context.Context, u string) (*ExtractedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9")

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxPageBytes)
	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		return &ExtractedPage{URL: u, Content: strings.TrimSpace(string(raw))}, nil
	}
	title, text, err := HTMLText(body)
	if err != nil {
		return nil, err
	}
	return &ExtractedPage{URL: u, Content: text, Title: title}, nil
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true, "template": true, "title": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "li": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "tr": true,
}

// HTMLText returns the document title and its visible text with one line
// per block element.
func HTMLText(r io.Reader) (string, string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}
	var (
		title string
		sb    strings.Builder
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "title" && title == "" && n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			if skippedElements[n.Data] {
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] && sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
	walk(doc)
	return title, strings.TrimSpace(sb.String()), nil
}

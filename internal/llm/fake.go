package llm

import (
	"context"
	"fmt"
	"strings"
)

// FakeClient returns deterministic, minimal payloads per phase for offline/testing.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(ctx context.Context, req Request) (Completion, error) {
	return Completion{Content: fakeContent(PhaseFrom(ctx), req), Model: "fake"}, nil
}

func (f *FakeClient) Stream(ctx context.Context, req Request, onChunk func(string)) (Completion, error) {
	content := fakeContent(PhaseFrom(ctx), req)
	if onChunk != nil {
		for _, w := range strings.SplitAfter(content, " ") {
			if err := ctx.Err(); err != nil {
				return Completion{}, err
			}
			onChunk(w)
		}
	}
	return Completion{Content: content, Model: "fake"}, nil
}

func fakeContent(phase string, req Request) string {
	last := ""
	if n := len(req.Messages); n > 0 {
		last = req.Messages[n-1].Content
	}
	switch {
	case phase == "search":
		return `{"competitors":[{"name":"Example Co","description":"fake competitor","whyCompetes":"same market","url":"https://example.com"}]}`
	case phase == "mockup":
		return "## Home\nLanding page.\n\n```json\n" +
			`{"root":"home","elements":{"home":{"type":"Stack","props":{"title":"Home"},"children":["h"]},"h":{"type":"Heading","props":{"text":"Welcome"},"children":[]}}}` +
			"\n```\n"
	case strings.HasPrefix(phase, "chat:questions"):
		return "To refine your idea, I have a few questions:\n1. Who is the target user?\n2. How will you make money?\n3. What makes it different?"
	case strings.HasPrefix(phase, "chat:"):
		return fmt.Sprintf("# Idea Summary\n\n%s", last)
	default:
		return fmt.Sprintf("# %s\n\nGenerated offline for: %s", phase, firstLine(last))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

package llmclient

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"
)

const defaultGeminiMaxTokens = 8192

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself. Cross-cutting concerns
// (rate limiting, retries, logging, hooks) are applied via Middleware.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) Complete(ctx context.Context, req Request) (Completion, error) {
	model := modelOr(req, g.model)
	resp, err := g.cli.Models.GenerateContent(ctx, model, geminiContents(req), geminiConfig(req))
	if err != nil {
		return Completion{}, &ModelError{Provider: g.Name(), Err: err}
	}
	return checkContent(g.Name(), Completion{Content: geminiText(resp), Model: model})
}

func (g *GeminiClient) Stream(ctx context.Context, req Request, onChunk func(chunk string)) (Completion, error) {
	model := modelOr(req, g.model)
	var sb strings.Builder
	for resp, err := range g.cli.Models.GenerateContentStream(ctx, model, geminiContents(req), geminiConfig(req)) {
		if err != nil {
			return Completion{}, &ModelError{Provider: g.Name(), Err: err}
		}
		txt := geminiText(resp)
		if txt == "" {
			continue
		}
		sb.WriteString(txt)
		if onChunk != nil {
			onChunk(txt)
		}
	}
	return checkContent(g.Name(), Completion{Content: sb.String(), Model: model})
}

func geminiContents(req Request) []*genai.Content {
	out := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Content}}})
	}
	return out
}

func geminiConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokensOr(req, defaultGeminiMaxTokens)),
	}
	if s := strings.TrimSpace(req.System); s != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: s}}}
	}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	return cfg
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

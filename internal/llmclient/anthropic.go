package llmclient

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 8192

// AnthropicClient implements LLMClient over the Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

func NewAnthropicClient(apiKey, model, baseURL string) (*AnthropicClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "claude-sonnet-4-5-20250901"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...), model: model}, nil
}

func (a *AnthropicClient) Name() string { return "Anthropic:" + a.model }
func (a *AnthropicClient) Close() error { return nil }

func (a *AnthropicClient) Complete(ctx context.Context, req Request) (Completion, error) {
	msg, err := a.client.Messages.New(ctx, a.params(req))
	if err != nil {
		return Completion{}, &ModelError{Provider: a.Name(), Err: err}
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}
	return checkContent(a.Name(), Completion{Content: sb.String(), Model: string(msg.Model)})
}

func (a *AnthropicClient) Stream(ctx context.Context, req Request, onChunk func(chunk string)) (Completion, error) {
	params := a.params(req)
	stream := a.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var sb strings.Builder
	for stream.Next() {
		ev, ok := stream.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
		if !ok || delta.Text == "" {
			continue
		}
		sb.WriteString(delta.Text)
		if onChunk != nil {
			onChunk(delta.Text)
		}
	}
	if err := stream.Err(); err != nil {
		return Completion{}, &ModelError{Provider: a.Name(), Err: err}
	}
	return checkContent(a.Name(), Completion{Content: sb.String(), Model: string(params.Model)})
}

func (a *AnthropicClient) params(req Request) anthropic.MessageNewParams {
	msgs := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelOr(req, a.model)),
		MaxTokens: int64(maxTokensOr(req, defaultAnthropicMaxTokens)),
		Messages:  msgs,
	}
	if s := strings.TrimSpace(req.System); s != "" {
		params.System = []anthropic.TextBlockParam{{Text: s}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	return params
}

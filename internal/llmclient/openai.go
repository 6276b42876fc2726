package llmclient

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIMaxTokens = 8192

// OpenAIClient implements LLMClient using the official openai-go SDK (chat completions).
// Any OpenAI-compatible endpoint works through BaseURL, which is how the
// reasoning-search provider is reached as well.
type OpenAIClient struct {
	client   openai.Client
	model    string
	provider string
}

// OpenAISettings configures an OpenAI-compatible client.
type OpenAISettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

func NewOpenAIClient(cfg OpenAISettings) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "OpenAI"
	}
	return &OpenAIClient{client: openai.NewClient(opts...), model: cfg.Model, provider: provider}, nil
}

func (o *OpenAIClient) Name() string { return o.provider + ":" + o.model }
func (o *OpenAIClient) Close() error { return nil }

func (o *OpenAIClient) Complete(ctx context.Context, req Request) (Completion, error) {
	params := o.params(req)
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Completion{}, &ModelError{Provider: o.Name(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return Completion{}, &ModelError{Provider: o.Name(), Err: ErrEmptyContent}
	}
	return checkContent(o.Name(), Completion{Content: resp.Choices[0].Message.Content, Model: resp.Model})
}

func (o *OpenAIClient) Stream(ctx context.Context, req Request, onChunk func(chunk string)) (Completion, error) {
	params := o.params(req)
	stream := o.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var sb strings.Builder
	model := string(params.Model)
	for stream.Next() {
		chunk := stream.Current()
		if chunk.Model != "" {
			model = chunk.Model
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onChunk != nil {
			onChunk(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return Completion{}, &ModelError{Provider: o.Name(), Err: err}
	}
	return checkContent(o.Name(), Completion{Content: sb.String(), Model: model})
}

func (o *OpenAIClient) params(req Request) openai.ChatCompletionNewParams {
	msgs := []openai.ChatCompletionMessageParamUnion{}
	if s := strings.TrimSpace(req.System); s != "" {
		msgs = append(msgs, openai.SystemMessage(s))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleAssistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(modelOr(req, o.model)),
		Messages:  msgs,
		MaxTokens: openai.Int(int64(maxTokensOr(req, defaultOpenAIMaxTokens))),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	return params
}

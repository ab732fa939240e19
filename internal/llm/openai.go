package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultOpenAIModel is used when neither the call nor the backend names a model.
const DefaultOpenAIModel = "gpt-3.5-turbo"

// OpenAI calls the Chat Completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI backend. baseURL may be empty.
func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key must be provided")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  coalesce(model, DefaultOpenAIModel),
	}, nil
}

// Name implements Backend.
func (o *OpenAI) Name() string { return "openai" }

// Generate implements Backend.
func (o *OpenAI) Generate(ctx context.Context, messages []Message, params Params) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("at least one message must be provided")
	}

	req := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(coalesce(params.Model, o.model)),
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Temperature: openai.Float(params.Temperature),
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			req.Messages = append(req.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			req.Messages = append(req.Messages, openai.AssistantMessage(m.Content))
		default:
			req.Messages = append(req.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ Backend = (*OpenAI)(nil)

package validation

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

// AnthropicCompleter serves ChatRequests through the Anthropic Messages API.
// System messages become the system prompt; the rest are sent as user turns.
type AnthropicCompleter struct {
	messages AnthropicMessager
}

func NewAnthropicCompleter(apiKey string) (*AnthropicCompleter, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key not configured")
	}
	return &AnthropicCompleter{messages: newAnthropicClient(apiKey)}, nil
}

func (a *AnthropicCompleter) Complete(ctx context.Context, req ChatRequest) (string, error) {
	model := anthropic.Model(req.Model)
	if req.Model == "" || !strings.HasPrefix(req.Model, "claude") {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	params := anthropic.MessageNewParams{
		Model:       model,
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	resp, err := a.messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &TransportError{Status: apiErr.StatusCode, Body: apiErr.RawJSON()}
		}
		return "", &TransportError{Err: err}
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

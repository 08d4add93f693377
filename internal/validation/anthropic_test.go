package validation

import (
	"context"
	"errors"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessager struct {
	mock.Mock
}

func (m *mockMessager) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	args := m.Called(ctx, params)
	msg, _ := args.Get(0).(*anthropic.Message)
	return msg, args.Error(1)
}

func withMessager(t *testing.T, m AnthropicMessager) {
	t.Helper()
	prev := newAnthropicClient
	newAnthropicClient = func(string) AnthropicMessager { return m }
	t.Cleanup(func() { newAnthropicClient = prev })
}

func TestNewAnthropicCompleterRequiresKey(t *testing.T) {
	_, err := NewAnthropicCompleter("  ")
	assert.Error(t, err)
}

func TestAnthropicCompleterMapsMessages(t *testing.T) {
	m := &mockMessager{}
	withMessager(t, m)
	m.On("New", mock.Anything, mock.MatchedBy(func(p anthropic.MessageNewParams) bool {
		return p.Model == anthropic.ModelClaudeSonnet4_20250514 &&
			p.MaxTokens == 8000 &&
			len(p.System) == 1 && p.System[0].Text == "sys" &&
			len(p.Messages) == 1
	})).Return(&anthropic.Message{Content: []anthropic.ContentBlockUnion{
		{Type: "text", Text: `{"a":`},
		{Type: "text", Text: `1}`},
	}}, nil)

	c, err := NewAnthropicCompleter("key")
	require.NoError(t, err)
	text, err := c.Complete(context.Background(), ChatRequest{
		Model:       DefaultModel,
		Messages:    []ChatMessage{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "prompt"}},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
	m.AssertExpectations(t)
}

func TestAnthropicCompleterWrapsErrors(t *testing.T) {
	m := &mockMessager{}
	withMessager(t, m)
	m.On("New", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	c, err := NewAnthropicCompleter("key")
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), ChatRequest{Model: "claude-sonnet-4-20250514", MaxTokens: 10})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindTransport, ErrorKind(err))
}

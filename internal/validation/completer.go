package validation

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// ChatCompleter sends one chat completion and returns the assistant text.
// Failures to reach the endpoint or non-2xx replies are returned as *TransportError.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

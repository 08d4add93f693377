package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	maxResponseBytes         = 8 << 20
)

type OpenRouterConfig struct {
	BaseURL  string
	APIKey   string
	SiteURL  string
	AppTitle string
	// HTTPClient defaults to a client without its own timeout; deadlines come from ctx.
	HTTPClient *http.Client
}

// OpenRouterCompleter talks to an OpenAI-compatible chat completions API.
type OpenRouterCompleter struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	siteURL  string
	appTitle string
}

func NewOpenRouterCompleter(cfg OpenRouterConfig) *OpenRouterCompleter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &OpenRouterCompleter{
		http:     cfg.HTTPClient,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		siteURL:  cfg.SiteURL,
		appTitle: cfg.AppTitle,
	}
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouterCompleter) Complete(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.siteURL != "" {
		httpReq.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.appTitle != "" {
		httpReq.Header.Set("X-Title", c.appTitle)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TransportError{Status: resp.StatusCode, Body: string(blob)}
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(blob, &out); err != nil {
		return "", &TransportError{Status: resp.StatusCode, Body: string(blob), Err: fmt.Errorf("decode completion response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

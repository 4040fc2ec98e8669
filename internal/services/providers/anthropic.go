package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"llmo/internal/platform/config"
	perr "llmo/internal/platform/errors"
)

const anthropicVersion = "2023-06-01"

// Anthropic is a messages-API style client
type Anthropic struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

// AnthropicFromEnv builds the client from PROVIDER_ANTHROPIC_*; nil when no
// key is configured
func AnthropicFromEnv() *Anthropic {
	cfg := config.New().Prefix("PROVIDER_ANTHROPIC_")
	key := cfg.MayString("API_KEY", "")
	if key == "" {
		return nil
	}
	c := NewAnthropic(
		key,
		cfg.MayString("BASE_URL", "https://api.anthropic.com"),
		cfg.MayString("MODEL", "claude-3-5-haiku-latest"),
	)
	c.maxTokens = cfg.MayInt("MAX_TOKENS", c.maxTokens)
	return c
}

// NewAnthropic constructs a client with explicit settings
func NewAnthropic(apiKey, baseURL, model string) *Anthropic {
	return &Anthropic{
		apiKey:    apiKey,
		baseURL:   baseURL,
		model:     model,
		maxTokens: 1024,
		client:    &http.Client{Timeout: DefaultTimeout},
	}
}

// Name implements Querier
func (a *Anthropic) Name() string { return "anthropic" }

// Model implements Querier
func (a *Anthropic) Model() string { return a.model }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Query implements Querier; model overrides the configured default when set
func (a *Anthropic) Query(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = a.model
	}
	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: a.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", perr.JSONErrf("anthropic: marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", perr.Providerf("anthropic: build request: %v", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", classifyTransport(a.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw := readBody(resp.Body)
	if err := classifyHTTP(a.Name(), resp.StatusCode, raw); err != nil {
		return "", err
	}

	var out anthropicResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", perr.Providerf("anthropic: decode response: %v", err)
	}
	for _, c := range out.Content {
		if c.Type == "text" {
			return c.Text, nil
		}
	}
	return "", perr.Providerf("anthropic: no text content")
}

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"llmo/internal/platform/config"
	perr "llmo/internal/platform/errors"
)

// OpenAI is a chat-completions style client
type OpenAI struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// OpenAIFromEnv builds the client from PROVIDER_OPENAI_*; nil when no key
// is configured
func OpenAIFromEnv() *OpenAI {
	cfg := config.New().Prefix("PROVIDER_OPENAI_")
	key := cfg.MayString("API_KEY", "")
	if key == "" {
		return nil
	}
	return NewOpenAI(
		key,
		cfg.MayString("BASE_URL", "https://api.openai.com"),
		cfg.MayString("MODEL", "gpt-4o-mini"),
	)
}

// NewOpenAI constructs a client with explicit settings
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	return &OpenAI{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// Name implements Querier
func (o *OpenAI) Name() string { return "openai" }

// Model implements Querier
func (o *OpenAI) Model() string { return o.model }

type openaiRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
}

// Query implements Querier; model overrides the configured default when set
func (o *OpenAI) Query(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = o.model
	}
	body, err := json.Marshal(openaiRequest{
		Model:    model,
		Messages: []openaiMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", perr.JSONErrf("openai: marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", perr.Providerf("openai: build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", classifyTransport(o.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw := readBody(resp.Body)
	if err := classifyHTTP(o.Name(), resp.StatusCode, raw); err != nil {
		return "", err
	}

	var out openaiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", perr.Providerf("openai: decode response: %v", err)
	}
	if len(out.Choices) == 0 {
		return "", perr.Providerf("openai: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Package providers holds the LLM provider clients the orchestrator queries
package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	perr "llmo/internal/platform/errors"
)

// DefaultTimeout bounds one provider call when the caller sets no deadline
const DefaultTimeout = 20 * time.Second

// Querier is one LLM provider. Implementations map transport failures onto
// the project error codes: RateLimited, Timeout, Provider, Unreachable
type Querier interface {
	Name() string
	Model() string
	Query(ctx context.Context, prompt, model string) (string, error)
}

// Info describes a configured provider for the API surface
type Info struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

// Describe lists the configured providers
func Describe(qs []Querier) []Info {
	out := make([]Info, 0, len(qs))
	for _, q := range qs {
		out = append(out, Info{Name: q.Name(), Model: q.Model()})
	}
	return out
}

// FromEnv builds every provider whose API key is configured
func FromEnv() []Querier {
	var out []Querier
	if c := OpenAIFromEnv(); c != nil {
		out = append(out, c)
	}
	if c := AnthropicFromEnv(); c != nil {
		out = append(out, c)
	}
	return out
}

// classifyHTTP maps a provider response status onto project errors
func classifyHTTP(name string, status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return perr.RateLimitedf("%s: rate limited", name)
	case status >= 500:
		return perr.Providerf("%s: upstream %d: %s", name, status, truncate(body, 200))
	case status >= 400:
		return perr.Providerf("%s: rejected %d: %s", name, status, truncate(body, 200))
	}
	return nil
}

// classifyTransport maps client-side failures onto project errors
func classifyTransport(name string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return perr.Timeoutf("%s: deadline exceeded", name)
	case errors.Is(err, context.Canceled):
		return err
	}
	return perr.Unreachablef("%s: %v", name, err)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}

func readBody(r io.Reader) []byte {
	b, _ := io.ReadAll(io.LimitReader(r, 1<<20))
	return b
}

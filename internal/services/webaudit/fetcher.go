// Package webaudit fetches a site's landing page and extracts the signals
// the audit scorer rates
package webaudit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	perr "llmo/internal/platform/errors"
)

// Fetch limits
const (
	DefaultTimeout = 15 * time.Second
	maxBodyBytes   = 2 << 20
)

// Page is one fetched document
type Page struct {
	HTML       string
	StatusCode int
	FinalURL   string
	HTTPS      bool
	Elapsed    time.Duration
}

// Fetcher retrieves the page for a domain
type Fetcher interface {
	Fetch(ctx context.Context, domain string) (Page, error)
}

// HTTPFetcher fetches over plain HTTP with redirects followed
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewFetcher constructs an HTTPFetcher with sane defaults
func NewFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: DefaultTimeout},
		UserAgent: "llmo-audit/1.0",
	}
}

// Fetch retrieves the landing page for domain. Bare domains get an https
// scheme; http(s) URLs pass through
func (f *HTTPFetcher) Fetch(ctx context.Context, domain string) (Page, error) {
	target := strings.TrimSpace(domain)
	if target == "" {
		return Page{}, perr.ValidationErrf("empty domain")
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Page{}, perr.ValidationErrf("bad domain %q: %v", domain, err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return Page{}, perr.Timeoutf("fetch %s: deadline exceeded", domain)
		case errors.Is(err, context.Canceled):
			return Page{}, err
		}
		return Page{}, perr.Unreachablef("fetch %s: %v", domain, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return Page{}, perr.Unreachablef("fetch %s: status %d", domain, resp.StatusCode)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	final := target
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return Page{
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		FinalURL:   final,
		HTTPS:      strings.HasPrefix(final, "https://"),
		Elapsed:    time.Since(start),
	}, nil
}

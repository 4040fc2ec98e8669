package webaudit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perr "llmo/internal/platform/errors"
)

var samplePage = `<!doctype html>
<html>
<head>
<title>Acme Cloud - Project Management</title>
<meta name="description" content="Acme Cloud is a project management platform for growing teams and their work.">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta property="og:title" content="Acme Cloud">
<meta property="og:description" content="Project management for teams">
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Organization","name":"Acme Cloud"}
</script>
<script type="application/ld+json">
{"@graph":[{"@type":"Product","name":"Acme Cloud"},{"@type":"FAQPage"}]}
</script>
</head>
<body>
<h1>Acme Cloud</h1>
<p>` + wordRun(320) + `</p>
<ul><li>Fast</li><li>Reliable</li></ul>
<h2>Frequently Asked Questions</h2>
</body>
</html>`

func wordRun(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestExtractSignals(t *testing.T) {
	sig := Extract(Page{HTML: samplePage, HTTPS: true, Elapsed: 300 * time.Millisecond})

	if sig.Title == "" || !strings.Contains(sig.Title, "Acme Cloud") {
		t.Fatalf("title = %q", sig.Title)
	}
	if n := len(sig.MetaDescription); n < 50 || n > 160 {
		t.Fatalf("description length = %d", n)
	}
	if !sig.OGTitle || !sig.OGDescription {
		t.Fatal("og tags not detected")
	}
	if !sig.MobileFriendly {
		t.Fatal("viewport not detected")
	}
	if sig.H1Count != 1 {
		t.Fatalf("h1 count = %d", sig.H1Count)
	}
	if sig.ListCount != 1 {
		t.Fatalf("list count = %d", sig.ListCount)
	}
	if sig.WordCount < 300 {
		t.Fatalf("word count = %d", sig.WordCount)
	}
	if !sig.HasFAQ {
		t.Fatal("faq heading not detected")
	}
	if len(sig.SchemaTypes) != 3 {
		t.Fatalf("schema types = %v", sig.SchemaTypes)
	}
	if !sig.StructuredDataValid {
		t.Fatal("valid json-ld flagged invalid")
	}
	if !sig.HTTPS || !sig.PageSpeedOK {
		t.Fatal("technical signals lost")
	}
}

func TestExtractBrokenJSONLD(t *testing.T) {
	page := `<html><head><script type="application/ld+json">{not json</script></head><body></body></html>`
	sig := Extract(Page{HTML: page})
	if sig.StructuredDataValid {
		t.Fatal("broken json-ld must flip validity")
	}
	if len(sig.SchemaTypes) != 0 {
		t.Fatalf("schema types = %v", sig.SchemaTypes)
	}
}

func TestExtractEmptyPage(t *testing.T) {
	sig := Extract(Page{HTML: ""})
	if sig.Title != "" || sig.H1Count != 0 || sig.WordCount != 0 {
		t.Fatalf("unexpected signals: %+v", sig)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "llmo-audit") {
			t.Errorf("user agent = %q", got)
		}
		_, _ = w.Write([]byte("<html><body>hi</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher()
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if page.StatusCode != http.StatusOK || !strings.Contains(page.HTML, "hi") {
		t.Fatalf("page = %+v", page)
	}
	if page.HTTPS {
		t.Fatal("plain http test server must not report https")
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher()
	_, err := f.Fetch(context.Background(), srv.URL)
	if !perr.IsCode(err, perr.ErrorCodeUnreachable) {
		t.Fatalf("err = %v, want unreachable", err)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	f := NewFetcher()
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1")
	if !perr.IsCode(err, perr.ErrorCodeUnreachable) {
		t.Fatalf("err = %v, want unreachable", err)
	}
}

func TestFetchEmptyDomain(t *testing.T) {
	f := NewFetcher()
	_, err := f.Fetch(context.Background(), "  ")
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

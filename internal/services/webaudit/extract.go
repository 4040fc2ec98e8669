package webaudit

import (
	"encoding/json"
	"strings"
	"time"

	"llmo/internal/core/auditscore"

	"golang.org/x/net/html"
)

// speedBudget is the fetch time under which a page counts as fast
const speedBudget = 2 * time.Second

// Extract walks the page and fills the scorer's signals
func Extract(p Page) auditscore.Signals {
	sig := auditscore.Signals{
		HTTPS:               p.HTTPS,
		PageSpeedOK:         p.Elapsed > 0 && p.Elapsed <= speedBudget,
		StructuredDataValid: true,
	}

	doc, err := html.Parse(strings.NewReader(p.HTML))
	if err != nil {
		return sig
	}

	var walk func(*html.Node)
	var textParts []string
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if sig.Title == "" {
					sig.Title = strings.TrimSpace(textOf(n))
				}
			case "meta":
				extractMeta(n, &sig)
			case "h1":
				sig.H1Count++
				if containsFAQCue(textOf(n)) {
					sig.HasFAQ = true
				}
			case "h2", "h3":
				if containsFAQCue(textOf(n)) {
					sig.HasFAQ = true
				}
			case "ul", "ol", "dl":
				sig.ListCount++
			case "script":
				if attr(n, "type") == "application/ld+json" {
					extractSchema(textOf(n), &sig)
				}
				return // script text is not page copy
			case "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				textParts = append(textParts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	sig.WordCount = len(strings.Fields(strings.Join(textParts, " ")))
	return sig
}

func extractMeta(n *html.Node, sig *auditscore.Signals) {
	name := attr(n, "name")
	prop := attr(n, "property")
	content := strings.TrimSpace(attr(n, "content"))
	switch {
	case name == "description":
		sig.MetaDescription = content
	case name == "viewport":
		sig.MobileFriendly = strings.Contains(content, "width=device-width")
	case prop == "og:title":
		sig.OGTitle = content != ""
	case prop == "og:description":
		sig.OGDescription = content != ""
	}
}

// extractSchema parses one JSON-LD block, collecting @type values. Blocks
// that fail to parse flip the validity signal
func extractSchema(raw string, sig *auditscore.Signals) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		sig.StructuredDataValid = false
		return
	}
	collectTypes(v, sig)
}

func collectTypes(v any, sig *auditscore.Signals) {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			collectTypes(e, sig)
		}
	case map[string]any:
		switch tv := t["@type"].(type) {
		case string:
			appendType(sig, tv)
		case []any:
			for _, e := range tv {
				if s, ok := e.(string); ok {
					appendType(sig, s)
				}
			}
		}
		if g, ok := t["@graph"]; ok {
			collectTypes(g, sig)
		}
	}
}

func appendType(sig *auditscore.Signals, typ string) {
	if typ == "" {
		return
	}
	sig.SchemaTypes = append(sig.SchemaTypes, typ)
	if typ == "FAQPage" {
		sig.HasFAQ = true
	}
}

func containsFAQCue(heading string) bool {
	h := strings.ToLower(heading)
	return strings.Contains(h, "faq") || strings.Contains(h, "frequently asked")
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

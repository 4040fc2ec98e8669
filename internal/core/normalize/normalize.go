// Package normalize provides a deterministic text normalizer shared by the
// mention detector and the cache key builder
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove zero-width and combining marks
// 5 Width fold fullwidth to ASCII
// 6 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct{}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Normalize returns the normalized form of s following the pipeline described above
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2-5 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 6 collapse whitespace and trim
	ns = collapseSpaces(ns)

	return ns
}

// Key normalizes s for use inside a cache key: the full pipeline plus
// lowercasing of any residue cases.Fold leaves alone
func (n *Normalizer) Key(s string) string {
	return strings.ToLower(n.Normalize(s))
}

// collapseSpaces converts whitespace runs to a single ASCII space, but preserves
// line breaks. Runs that contain any newline are collapsed to a single newline.
// Leading/trailing spaces/newlines are trimmed
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	sawNL := false
	flush := func() {
		if !inWS {
			return
		}
		if sawNL {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
		inWS = false
		sawNL = false
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			if r == '\n' || r == '\r' {
				sawNL = true
			}
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	out := b.String()
	// Trim both spaces and newlines on edges
	out = strings.Trim(out, " \n\t\r")
	return out
}

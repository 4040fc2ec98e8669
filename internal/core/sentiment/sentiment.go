// Package sentiment classifies short text windows around brand mentions.
// Lexicon based on purpose: provider answers are formal prose, so a small
// curated wordlist with negation handling is stable and cheap to run inline
// during detection
package sentiment

import (
	"strings"
	"unicode"
)

// Label is the polarity assigned to a context window
type Label string

// Polarity labels
const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Valence returns the numeric value used by the visibility scorer:
// +1 positive, 0 neutral, -1 negative
func (l Label) Valence() int {
	switch l {
	case Positive:
		return 1
	case Negative:
		return -1
	default:
		return 0
	}
}

// negationWindow is how many tokens back a negator flips polarity
const negationWindow = 3

// Analyzer scores text against positive and negative lexicons
type Analyzer struct {
	pos map[string]struct{}
	neg map[string]struct{}
}

// New constructs an Analyzer with the default lexicons
func New() *Analyzer {
	return &Analyzer{
		pos: toSet(defaultPositive),
		neg: toSet(defaultNegative),
	}
}

// NewWithLexicons constructs an Analyzer with custom wordlists
func NewWithLexicons(positive, negative []string) *Analyzer {
	return &Analyzer{pos: toSet(positive), neg: toSet(negative)}
}

// Assess returns the polarity label for text
func (a *Analyzer) Assess(text string) Label {
	pos, neg := a.Score(text)
	switch {
	case pos > neg:
		return Positive
	case neg > pos:
		return Negative
	default:
		return Neutral
	}
}

// Score counts positive and negative lexicon hits in text, flipping a hit's
// polarity when a negator appears within the preceding negationWindow tokens
func (a *Analyzer) Score(text string) (pos, neg int) {
	toks := tokenize(text)
	for i, tok := range toks {
		_, isPos := a.pos[tok]
		_, isNeg := a.neg[tok]
		if !isPos && !isNeg {
			continue
		}
		if negatedAt(toks, i) {
			isPos, isNeg = isNeg, isPos
		}
		if isPos {
			pos++
		}
		if isNeg {
			neg++
		}
	}
	return pos, neg
}

func negatedAt(toks []string, i int) bool {
	lo := i - negationWindow
	if lo < 0 {
		lo = 0
	}
	for j := lo; j < i; j++ {
		if _, ok := negators[toks[j]]; ok {
			return true
		}
	}
	return false
}

// tokenize splits on non-letter non-digit runes and lowercases.
// "isn't" becomes ["isn", "t"]; "isn" is in the negator set for that reason
func tokenize(s string) []string {
	out := make([]string, 0, 16)
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return out
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {}, "hardly": {},
	"isn": {}, "wasn": {}, "aren": {}, "don": {}, "doesn": {}, "didn": {},
	"won": {}, "cannot": {}, "cant": {}, "lacks": {}, "lacking": {},
}

var defaultPositive = []string{
	"best", "great", "excellent", "leading", "top", "recommended", "recommend",
	"reliable", "trusted", "popular", "innovative", "powerful", "outstanding",
	"favorite", "love", "easy", "robust", "impressive", "strong", "good",
	"seamless", "intuitive", "fast", "affordable", "superior", "praised",
	"renowned", "efficient", "flexible", "scalable",
}

// "lacks"/"lacking" live in negators only: "lacks good support" scores as
// one flipped cue, not a flipped cue plus a negative hit
var defaultNegative = []string{
	"worst", "bad", "poor", "unreliable", "avoid", "slow", "expensive",
	"difficult", "limited", "weak", "buggy", "terrible", "disappointing",
	"outdated", "overpriced", "clunky", "inferior", "frustrating", "confusing",
	"broken", "insecure", "cumbersome",
}

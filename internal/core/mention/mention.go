// Package mention implements brand mention detection over normalized text
package mention

import (
	"sort"
	"strings"

	"llmo/internal/core/normalize"
	"llmo/internal/core/sentiment"
)

// DefaultContextWindow is the byte window captured on each side of a mention
const DefaultContextWindow = 150

// Brand is a detection target. Aliases are optional extra surface forms
// (product names, ticker symbols) matched alongside the generated variants.
// Competitor marks entities tracked for comparison rather than scoring
type Brand struct {
	Name       string
	Aliases    []string
	Competitor bool
}

// Mention is one coalesced brand occurrence. Spans are [start,end) byte
// offsets over the normalized input
type Mention struct {
	Brand        string          // canonical brand name
	Surface      string          // matched text as it appears in the normalized input
	Start        int
	End          int
	Context      string          // surface plus up to ContextWindow bytes each side
	Sentiment    sentiment.Label // polarity of the context window
	Position     float64         // Start / len(text), in [0,1)
	IsCompetitor bool
}

// Options controls detector behavior
type Options struct {
	// ContextWindow is the byte window for Context capture and sentiment;
	// 0 means DefaultContextWindow, negative disables capture
	ContextWindow int
	// MaxMentions is the hard cap on emitted mentions per brand (0 = no cap)
	MaxMentions int
}

type pattern struct {
	brand int // index into brand names
	text  string
}

// Detector runs detection over raw provider text. Safe for concurrent use
// after construction
type Detector struct {
	norm     *normalize.Normalizer
	analyzer *sentiment.Analyzer
	opts     Options

	ac       *acAutomaton
	patterns []pattern
	brands   []Brand
}

// Detect is a one-shot convenience: it builds a detector for brand plus its
// competitors and scans text, tagging competitor mentions
func Detect(text, brand string, competitors []string) []Mention {
	targets := make([]Brand, 0, 1+len(competitors))
	targets = append(targets, Brand{Name: brand})
	for _, c := range competitors {
		targets = append(targets, Brand{Name: c, Competitor: true})
	}
	return New(targets).Scan(text)
}

// New creates a Detector for the given brands with default options
func New(brands []Brand) *Detector {
	return NewWithOptions(brands, Options{})
}

// NewWithOptions creates a Detector with custom options
func NewWithOptions(brands []Brand, opts Options) *Detector {
	if opts.ContextWindow == 0 {
		opts.ContextWindow = DefaultContextWindow
	}
	d := &Detector{
		norm:     normalize.New(),
		analyzer: sentiment.New(),
		opts:     opts,
	}

	ac := newAutomaton()
	seen := make(map[string]struct{})
	for _, b := range brands {
		name := d.norm.Normalize(b.Name)
		if name == "" {
			continue
		}
		d.brands = append(d.brands, b)
		surfaces := expandVariants(name)
		for _, al := range b.Aliases {
			if na := d.norm.Normalize(al); na != "" {
				surfaces = append(surfaces, expandVariants(na)...)
			}
		}
		for _, sf := range surfaces {
			key := sf + "\x00" + name
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			id := len(d.patterns)
			d.patterns = append(d.patterns, pattern{brand: len(d.brands) - 1, text: sf})
			ac.AddPattern([]byte(sf), id)
		}
	}
	ac.Build()
	d.ac = ac
	return d
}

// expandVariants derives the surface forms matched for a normalized name:
// the name itself, possessive forms, hyphen and space swaps of multi-word
// names, the concatenated form, and the bare domain form
func expandVariants(name string) []string {
	out := []string{name}
	add := func(s string) {
		if s != "" && s != name {
			out = append(out, s)
		}
	}

	if strings.Contains(name, " ") {
		add(strings.ReplaceAll(name, " ", "-"))
		add(strings.ReplaceAll(name, " ", ""))
	}
	if strings.Contains(name, "-") {
		add(strings.ReplaceAll(name, "-", " "))
		add(strings.ReplaceAll(name, "-", ""))
	}

	compact := strings.ReplaceAll(strings.ReplaceAll(name, " ", ""), "-", "")
	add(compact + ".com")

	// possessives over every form collected so far
	for _, base := range out[:len(out):len(out)] {
		if strings.HasSuffix(base, ".com") {
			continue
		}
		out = append(out, base+"'s", base+"’s")
	}
	return out
}

type span struct {
	brand      int
	start, end int
}

// Scan normalizes raw text and returns coalesced mentions in input order.
// Overlapping or touching matches of the same brand merge into one mention
func (d *Detector) Scan(raw string) []Mention {
	text := d.norm.Normalize(raw)
	if text == "" || len(d.patterns) == 0 {
		return nil
	}

	var spans []span
	d.ac.FindAll([]byte(text), func(end, id int) {
		p := d.patterns[id]
		start := end - len(p.text)
		if boundaryOK(text, start, end) {
			spans = append(spans, span{brand: p.brand, start: start, end: end})
		}
	})
	if len(spans) == 0 {
		return nil
	}

	merged := coalesce(spans)

	perBrand := make(map[int]int, len(d.brands))
	out := make([]Mention, 0, len(merged))
	for _, sp := range merged {
		if d.opts.MaxMentions > 0 && perBrand[sp.brand] >= d.opts.MaxMentions {
			continue
		}
		perBrand[sp.brand]++

		b := d.brands[sp.brand]
		m := Mention{
			Brand:        b.Name,
			Surface:      text[sp.start:sp.end],
			Start:        sp.start,
			End:          sp.end,
			Position:     float64(sp.start) / float64(len(text)),
			IsCompetitor: b.Competitor,
		}
		if d.opts.ContextWindow > 0 {
			ls := max(sp.start-d.opts.ContextWindow, 0)
			rs := min(sp.end+d.opts.ContextWindow, len(text))
			m.Context = text[ls:rs]
			m.Sentiment = d.analyzer.Assess(m.Context)
		} else {
			m.Sentiment = sentiment.Neutral
		}
		out = append(out, m)
	}
	return out
}

// coalesce merges overlapping or touching spans of the same brand and sorts
// the result by start offset
func coalesce(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})
	out := make([]span, 0, len(spans))
	last := make(map[int]int) // brand -> index into out of its latest span
	for _, sp := range spans {
		if li, ok := last[sp.brand]; ok && sp.start <= out[li].end {
			if sp.end > out[li].end {
				out[li].end = sp.end
			}
			continue
		}
		out = append(out, sp)
		last[sp.brand] = len(out) - 1
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

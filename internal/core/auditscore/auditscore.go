// Package auditscore rates a page's LLM friendliness 0-100 from extracted
// signals. Four categories share a fixed point budget: structured data 30,
// meta tags 25, content 25, technical 20
package auditscore

import (
	"fmt"
	"sort"
)

// Category names the four budget areas
type Category string

// Budget categories
const (
	StructuredData Category = "structured_data"
	MetaTags       Category = "meta_tags"
	Content        Category = "content"
	Technical      Category = "technical"
)

// Signals is what the audit extractor hands the scorer
type Signals struct {
	SchemaTypes     []string // distinct valid schema.org types found in ld+json
	Title           string
	MetaDescription string
	OGTitle         bool
	OGDescription   bool

	H1Count   int
	WordCount int
	ListCount int
	HasFAQ    bool

	MobileFriendly      bool
	PageSpeedOK         bool
	HTTPS               bool
	StructuredDataValid bool
}

// CategoryScore is the earned and available points for one category
type CategoryScore struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
	Max      int      `json:"max"`
}

// Recommendation describes a failed check worth fixing. Only checks with
// weight at or above the noise floor emit one
type Recommendation struct {
	Category Category `json:"category"`
	Check    string   `json:"check"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"` // 1 is most urgent
	Impact   string   `json:"impact"`   // high | medium | low
}

// Result is the full audit scoring output
type Result struct {
	Score           int              `json:"score"`
	Categories      []CategoryScore  `json:"categories"`
	Recommendations []Recommendation `json:"recommendations"`
}

// noiseFloor is the minimum check weight that emits a recommendation
const noiseFloor = 4

// schemaTypePoints and schemaMax shape the structured data category:
// every distinct valid type earns points up to the category budget
const (
	schemaTypePoints = 10
	schemaMax        = 30
)

type check struct {
	category Category
	name     string
	weight   int
	pass     func(Signals) bool
	advice   string
}

var checks = []check{
	{MetaTags, "title", 10, func(s Signals) bool { return s.Title != "" },
		"add a descriptive <title> tag"},
	{MetaTags, "meta_description", 10, func(s Signals) bool {
		n := len(s.MetaDescription)
		return n >= 50 && n <= 160
	}, "add a meta description between 50 and 160 characters"},
	{MetaTags, "og_title", 2, func(s Signals) bool { return s.OGTitle },
		"add an og:title tag for social previews"},
	{MetaTags, "og_description", 3, func(s Signals) bool { return s.OGDescription },
		"add an og:description tag for social previews"},

	{Content, "h1", 8, func(s Signals) bool { return s.H1Count > 0 },
		"add a single clear <h1> heading"},
	{Content, "word_count", 6, func(s Signals) bool { return s.WordCount >= 300 },
		"expand the page to at least 300 words of body copy"},
	{Content, "lists", 6, func(s Signals) bool { return s.ListCount > 0 },
		"structure key points as lists so answers can quote them"},
	{Content, "faq", 5, func(s Signals) bool { return s.HasFAQ },
		"add an FAQ section answering common questions directly"},

	{Technical, "mobile_friendly", 5, func(s Signals) bool { return s.MobileFriendly },
		"add a responsive viewport meta tag"},
	{Technical, "page_speed", 5, func(s Signals) bool { return s.PageSpeedOK },
		"reduce page weight to speed up loading"},
	{Technical, "https", 5, func(s Signals) bool { return s.HTTPS },
		"serve the site over HTTPS"},
	{Technical, "structured_data_valid", 5, func(s Signals) bool { return s.StructuredDataValid },
		"fix JSON-LD blocks that fail to parse"},
}

var categoryMax = map[Category]int{
	StructuredData: schemaMax,
	MetaTags:       25,
	Content:        25,
	Technical:      20,
}

// ScoreCategory computes one category's earned points
func ScoreCategory(s Signals, cat Category) CategoryScore {
	cs := CategoryScore{Category: cat, Max: categoryMax[cat]}
	if cat == StructuredData {
		cs.Score = schemaTypePoints * len(distinct(s.SchemaTypes))
		if cs.Score > schemaMax {
			cs.Score = schemaMax
		}
		return cs
	}
	for _, c := range checks {
		if c.category == cat && c.pass(s) {
			cs.Score += c.weight
		}
	}
	return cs
}

// Score sums all categories, clamps to 100, and emits recommendations for
// failed checks above the noise floor
func Score(s Signals) Result {
	res := Result{
		Categories: []CategoryScore{
			ScoreCategory(s, StructuredData),
			ScoreCategory(s, MetaTags),
			ScoreCategory(s, Content),
			ScoreCategory(s, Technical),
		},
	}
	for _, cs := range res.Categories {
		res.Score += cs.Score
	}
	if res.Score > 100 {
		res.Score = 100
	}

	if len(distinct(s.SchemaTypes)) == 0 {
		res.Recommendations = append(res.Recommendations, recommend(check{
			StructuredData, "schema_markup", schemaTypePoints, nil,
			"add schema.org JSON-LD markup describing the page",
		}))
	}
	for _, c := range checks {
		if c.weight < noiseFloor || c.pass(s) {
			continue
		}
		res.Recommendations = append(res.Recommendations, recommend(c))
	}
	sort.SliceStable(res.Recommendations, func(i, j int) bool {
		return res.Recommendations[i].Priority < res.Recommendations[j].Priority
	})
	return res
}

func recommend(c check) Recommendation {
	return Recommendation{
		Category: c.category,
		Check:    c.name,
		Message:  fmt.Sprintf("%s: %s", c.category, c.advice),
		Priority: priorityFor(c.weight),
		Impact:   impactFor(c.weight),
	}
}

func priorityFor(weight int) int {
	switch {
	case weight >= 8:
		return 1
	case weight >= 6:
		return 2
	}
	return 3
}

func impactFor(weight int) string {
	switch {
	case weight >= 8:
		return "high"
	case weight >= 4:
		return "medium"
	}
	return "low"
}

func distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

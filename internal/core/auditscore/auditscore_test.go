package auditscore

import (
	"strings"
	"testing"
)

// healthySignals is the baseline scenario: one schema type, good title and
// description, no OG tags, solid content without FAQ, all technical checks
func healthySignals() Signals {
	return Signals{
		SchemaTypes:         []string{"Organization"},
		Title:               "Acme Cloud",
		MetaDescription:     strings.Repeat("a", 80),
		H1Count:             1,
		WordCount:           400,
		ListCount:           2,
		MobileFriendly:      true,
		PageSpeedOK:         true,
		HTTPS:               true,
		StructuredDataValid: true,
	}
}

func TestHealthyPageScoresSeventy(t *testing.T) {
	res := Score(healthySignals())
	if res.Score != 70 {
		t.Fatalf("score = %d, want 70", res.Score)
	}
	if len(res.Recommendations) != 1 {
		t.Fatalf("expected exactly 1 recommendation, got %+v", res.Recommendations)
	}
	rec := res.Recommendations[0]
	if rec.Check != "faq" || rec.Impact != "medium" || rec.Priority != 3 {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
}

func TestCategoryBudgets(t *testing.T) {
	full := Signals{
		SchemaTypes:         []string{"Organization", "Product", "FAQPage", "Article"},
		Title:               "t",
		MetaDescription:     strings.Repeat("a", 100),
		OGTitle:             true,
		OGDescription:       true,
		H1Count:             2,
		WordCount:           1000,
		ListCount:           3,
		HasFAQ:              true,
		MobileFriendly:      true,
		PageSpeedOK:         true,
		HTTPS:               true,
		StructuredDataValid: true,
	}
	cases := []struct {
		cat  Category
		want int
	}{
		{StructuredData, 30}, // 4 types capped at budget
		{MetaTags, 25},
		{Content, 25},
		{Technical, 20},
	}
	for _, tc := range cases {
		t.Run(string(tc.cat), func(t *testing.T) {
			cs := ScoreCategory(full, tc.cat)
			if cs.Score != tc.want || cs.Max != tc.want {
				t.Fatalf("ScoreCategory = %+v, want score %d", cs, tc.want)
			}
		})
	}

	res := Score(full)
	if res.Score != 100 {
		t.Fatalf("perfect page score = %d, want 100", res.Score)
	}
	if len(res.Recommendations) != 0 {
		t.Fatalf("perfect page must have no recommendations: %+v", res.Recommendations)
	}
}

func TestEmptyPageScoresZero(t *testing.T) {
	res := Score(Signals{})
	if res.Score != 0 {
		t.Fatalf("score = %d, want 0", res.Score)
	}
	if len(res.Recommendations) == 0 {
		t.Fatal("empty page must emit recommendations")
	}
	// missing schema and h1 are weight >= 8, so priority 1 comes first
	if res.Recommendations[0].Priority != 1 || res.Recommendations[0].Impact != "high" {
		t.Fatalf("expected a high-impact lead recommendation: %+v", res.Recommendations[0])
	}
}

func TestSchemaTypesDeduplicated(t *testing.T) {
	s := Signals{SchemaTypes: []string{"Organization", "Organization", ""}}
	cs := ScoreCategory(s, StructuredData)
	if cs.Score != 10 {
		t.Fatalf("duplicate types must not stack: %+v", cs)
	}
}

func TestMetaDescriptionLengthBand(t *testing.T) {
	cases := []struct {
		name string
		desc string
		want int
	}{
		{"too short", strings.Repeat("a", 30), 10},
		{"lower bound", strings.Repeat("a", 50), 20},
		{"upper bound", strings.Repeat("a", 160), 20},
		{"too long", strings.Repeat("a", 200), 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Signals{Title: "t", MetaDescription: tc.desc}
			if cs := ScoreCategory(s, MetaTags); cs.Score != tc.want {
				t.Fatalf("meta score = %d, want %d", cs.Score, tc.want)
			}
		})
	}
}

func TestLowWeightFailuresStayQuiet(t *testing.T) {
	s := healthySignals()
	s.HasFAQ = true // only OG tags missing now
	res := Score(s)
	if len(res.Recommendations) != 0 {
		t.Fatalf("OG failures sit below the noise floor: %+v", res.Recommendations)
	}
}

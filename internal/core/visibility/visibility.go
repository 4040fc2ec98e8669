// Package visibility turns per-provider mention analyses into a weighted
// 0-100 brand visibility score
package visibility

import (
	"fmt"
	"math"
	"sort"

	"llmo/internal/core/mention"
	"llmo/internal/core/sentiment"
)

// DefaultThreshold is the per-provider score below which a recommendation
// is emitted
const DefaultThreshold = 50

// DefaultWeights returns the declared provider weights. Providers not listed
// split the leftover weight equally
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"openai":    0.40,
		"anthropic": 0.35,
	}
}

// ProviderResult is one provider's contribution to a scan
type ProviderResult struct {
	Provider  string
	Model     string
	Failed    bool
	ErrorKind string
	Mentions  []mention.Mention
}

// ProviderScore is the scored view of one provider
type ProviderScore struct {
	Provider  string  `json:"provider"`
	Score     int     `json:"score"`
	Weight    float64 `json:"weight"` // normalized over succeeded providers
	Failed    bool    `json:"failed"`
	ErrorKind string  `json:"error_kind,omitempty"`
	Mentions  int     `json:"mentions"`
}

// CompetitorStat aggregates one competitor across providers
type CompetitorStat struct {
	Name      string `json:"name"`
	Mentions  int    `json:"mentions"`
	Providers int    `json:"providers"` // providers the competitor appeared in
}

// Recommendation flags a provider whose score sits under the threshold
type Recommendation struct {
	Provider string `json:"provider"`
	Score    int    `json:"score"`
	Priority int    `json:"priority"` // 1 is most urgent
	Message  string `json:"message"`
}

// Result is the composite output of Score. Composite is an integer in
// [0,100], the rounded weighted average of the succeeding provider scores
type Result struct {
	Composite       int              `json:"composite"`
	Providers       []ProviderScore  `json:"providers"`
	Competitors     []CompetitorStat `json:"competitors"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Scorer computes provider and composite visibility scores
type Scorer struct {
	weights   map[string]float64
	threshold int
}

// New creates a Scorer with the default weights and threshold
func New() *Scorer {
	return &Scorer{weights: DefaultWeights(), threshold: DefaultThreshold}
}

// NewWithWeights creates a Scorer with declared weights and a recommendation
// threshold. Weights should sum to at most 1.0; unlisted providers split the
// remainder
func NewWithWeights(weights map[string]float64, threshold int) *Scorer {
	if weights == nil {
		weights = DefaultWeights()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scorer{weights: weights, threshold: threshold}
}

// ProviderScore computes the 0-100 score for one provider's mentions.
// Components: mention-count bucket (max 40), sentiment mix (max 30),
// prominence (max 30). Zero brand mentions score zero
func (s *Scorer) ProviderScore(mentions []mention.Mention) int {
	var brand []mention.Mention
	for _, m := range mentions {
		if !m.IsCompetitor {
			brand = append(brand, m)
		}
	}
	n := len(brand)
	if n == 0 {
		return 0
	}

	score := mentionBucket(n)

	pos, neg := 0, 0
	first := 1.0
	for _, m := range brand {
		switch m.Sentiment {
		case sentiment.Positive:
			pos++
		case sentiment.Negative:
			neg++
		}
		if m.Position < first {
			first = m.Position
		}
	}

	avg := float64(pos-neg) / float64(n)
	score += int(math.Round((avg + 1) / 2 * 30))

	prominence := 0
	switch {
	case first < 0.10:
		prominence = 15
	case first < 0.25:
		prominence = 10
	case first < 0.50:
		prominence = 5
	}
	prominence += 5 * pos
	if prominence > 30 {
		prominence = 30
	}
	score += prominence

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func mentionBucket(n int) int {
	switch {
	case n >= 10:
		return 40
	case n >= 6:
		return 30
	case n >= 3:
		return 20
	case n >= 1:
		return 10
	}
	return 0
}

// Score scores every provider, redistributes failed providers' weight
// proportionally over the succeeding ones, and aggregates the composite
func (s *Scorer) Score(results []ProviderResult) Result {
	res := Result{Providers: make([]ProviderScore, 0, len(results))}

	raw := s.rawWeights(results)

	var ok int
	var okWeight float64
	for i, pr := range results {
		ps := ProviderScore{
			Provider:  pr.Provider,
			Failed:    pr.Failed,
			ErrorKind: pr.ErrorKind,
		}
		if !pr.Failed {
			ps.Score = s.ProviderScore(pr.Mentions)
			for _, m := range pr.Mentions {
				if !m.IsCompetitor {
					ps.Mentions++
				}
			}
			ok++
			okWeight += raw[i]
		}
		res.Providers = append(res.Providers, ps)
	}

	if ok > 0 {
		var composite float64
		for i := range res.Providers {
			ps := &res.Providers[i]
			if ps.Failed {
				continue
			}
			if okWeight > 0 {
				ps.Weight = raw[i] / okWeight
			} else {
				ps.Weight = 1 / float64(ok)
			}
			composite += ps.Weight * float64(ps.Score)
		}
		res.Composite = clamp(int(math.Round(composite)))
	}

	res.Competitors = competitorStats(results)

	for _, ps := range res.Providers {
		if ps.Failed || ps.Score >= s.threshold {
			continue
		}
		res.Recommendations = append(res.Recommendations, Recommendation{
			Provider: ps.Provider,
			Score:    ps.Score,
			Priority: recommendationPriority(ps.Score),
			Message:  fmt.Sprintf("low visibility on %s: score %d below %d", ps.Provider, ps.Score, s.threshold),
		})
	}
	sort.SliceStable(res.Recommendations, func(i, j int) bool {
		return res.Recommendations[i].Priority < res.Recommendations[j].Priority
	})

	return res
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func recommendationPriority(score int) int {
	switch {
	case score < 20:
		return 1
	case score < 35:
		return 2
	}
	return 3
}

// rawWeights resolves declared weights per result; unlisted providers split
// the leftover of the declared budget equally
func (s *Scorer) rawWeights(results []ProviderResult) []float64 {
	out := make([]float64, len(results))
	var sumListed float64
	var unlisted int
	for i, pr := range results {
		if w, ok := s.weights[pr.Provider]; ok {
			out[i] = w
			sumListed += w
		} else {
			out[i] = -1
			unlisted++
		}
	}
	if unlisted > 0 {
		leftover := 1 - sumListed
		if leftover < 0 {
			leftover = 0
		}
		share := leftover / float64(unlisted)
		for i := range out {
			if out[i] < 0 {
				out[i] = share
			}
		}
	}
	return out
}

func competitorStats(results []ProviderResult) []CompetitorStat {
	totals := map[string]int{}
	providers := map[string]map[string]struct{}{}
	for _, pr := range results {
		if pr.Failed {
			continue
		}
		for _, m := range pr.Mentions {
			if !m.IsCompetitor {
				continue
			}
			totals[m.Brand]++
			if providers[m.Brand] == nil {
				providers[m.Brand] = map[string]struct{}{}
			}
			providers[m.Brand][pr.Provider] = struct{}{}
		}
	}
	if len(totals) == 0 {
		return nil
	}
	out := make([]CompetitorStat, 0, len(totals))
	for name, n := range totals {
		out = append(out, CompetitorStat{Name: name, Mentions: n, Providers: len(providers[name])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mentions != out[j].Mentions {
			return out[i].Mentions > out[j].Mentions
		}
		return out[i].Name < out[j].Name
	})
	return out
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"llmo/internal/core/auditscore"
	"llmo/internal/core/mention"
	"llmo/internal/core/prompts"
	"llmo/internal/core/visibility"
	perr "llmo/internal/platform/errors"
	"llmo/internal/platform/logger"
	pstrings "llmo/internal/platform/strings"
	cachedom "llmo/internal/services/cache/domain"
	mentionsdom "llmo/internal/services/mentions/domain"
	"llmo/internal/services/providers"
	"llmo/internal/services/scan/domain"
	"llmo/internal/services/webaudit"
)

// visibilityPrompt builds the consumer-style question a visibility scan asks
func visibilityPrompt(req domain.ScanRequest) string {
	topic := strings.Join(req.Keywords, ", ")
	if topic == "" {
		topic = req.BrandName
	}
	return fmt.Sprintf(
		"What are the best %s options available today? Mention specific companies and products.",
		topic,
	)
}

func detectionTargets(req domain.ScanRequest) []mention.Brand {
	out := make([]mention.Brand, 0, 1+len(req.Competitors))
	out = append(out, mention.Brand{Name: req.BrandName})
	for _, c := range req.Competitors {
		out = append(out, mention.Brand{Name: c, Competitor: true})
	}
	return out
}

func (o *Orchestrator) runVisibility(ctx context.Context, job *domain.Job) (*domain.Result, error) {
	ps := []prompts.Prompt{{Category: prompts.CategoryRecommendation, Text: visibilityPrompt(job.Request)}}
	return o.runMentionScan(ctx, job, ps)
}

func (o *Orchestrator) runSimulation(ctx context.Context, job *domain.Job) (*domain.Result, error) {
	req := job.Request
	ps := prompts.Standard(req.Industry, req.ProductCategory)
	ps = append(ps, prompts.Comparison(req.BrandName, req.Competitors, req.ProductCategory)...)
	ps = pstrings.IfEmpty(ps, []prompts.Prompt{
		{Category: prompts.CategoryRecommendation, Text: visibilityPrompt(req)},
	})
	return o.runMentionScan(ctx, job, ps)
}

// providerOutcome collects one provider's work across all prompts
type providerOutcome struct {
	result  visibility.ProviderResult
	answers []domain.ProviderAnswer
	events  []mentionsdom.Event
}

// runMentionScan queries every provider with every prompt, detects mentions,
// and aggregates a visibility result. Providers run in parallel bounded by
// the worker budget
func (o *Orchestrator) runMentionScan(ctx context.Context, job *domain.Job, ps []prompts.Prompt) (*domain.Result, error) {
	det := mention.New(detectionTargets(job.Request))

	outcomes := make([]providerOutcome, len(o.deps.Providers))
	sem := make(chan struct{}, o.cfg.Workers)
	var wg sync.WaitGroup
	var done int32
	var progressMu sync.Mutex

	for i, q := range o.deps.Providers {
		wg.Add(1)
		go func(i int, q providers.Querier) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[i] = o.askProvider(ctx, job, q, det, ps)

			// progressMu also serializes the shared job while providers race
			progressMu.Lock()
			done++
			pct := 10 + int(80*done)/len(o.deps.Providers)
			o.advance(ctx, job, pct, fmt.Sprintf("provider %s finished", q.Name()))
			progressMu.Unlock()
		}(i, q)
	}
	wg.Wait()

	if o.isCancelled(job.ID) || ctx.Err() != nil {
		return nil, nil
	}

	results := make([]visibility.ProviderResult, 0, len(outcomes))
	var answers []domain.ProviderAnswer
	var events []mentionsdom.Event
	var lastErrKind string
	allFailed := true
	for _, oc := range outcomes {
		results = append(results, oc.result)
		answers = append(answers, oc.answers...)
		events = append(events, oc.events...)
		if oc.result.Failed {
			lastErrKind = oc.result.ErrorKind
		} else {
			allFailed = false
		}
	}
	if len(results) == 0 {
		return nil, perr.ValidationErrf("no providers configured")
	}
	if allFailed {
		return nil, perr.Aggregatef("all providers failed, last error kind %s", lastErrKind)
	}

	if o.deps.Archive != nil {
		o.deps.Archive.Archive(ctx, events)
	}

	res := o.scorer.Score(results)
	return &domain.Result{Visibility: &res, Answers: answers}, nil
}

// askProvider runs every prompt against one provider: cache first, then the
// retried live call. The provider counts as failed only when every prompt
// failed
func (o *Orchestrator) askProvider(
	ctx context.Context,
	job *domain.Job,
	q providers.Querier,
	det *mention.Detector,
	ps []prompts.Prompt,
) providerOutcome {
	req := job.Request
	r := newRetrier(o.cfg.Retries, o.cfg.BackoffBase, o.cfg.CallTimeout)
	log := logger.C(ctx)

	oc := providerOutcome{
		result: visibility.ProviderResult{Provider: q.Name(), Model: q.Model()},
	}
	var succeeded int
	var lastErr error

	for _, p := range ps {
		if o.isCancelled(job.ID) || ctx.Err() != nil {
			return oc
		}

		params := map[string]string{
			"provider": q.Name(),
			"model":    q.Model(),
			"prompt":   p.Text,
			"brand":    req.BrandName,
		}

		var text string
		payload, hit, _ := o.deps.Cache.Get(ctx, cachedom.QueryLLM, params)
		if hit {
			text = string(payload)
		} else {
			err := r.do(ctx, func(c context.Context) error {
				answer, qerr := q.Query(c, p.Text, "")
				if qerr == nil {
					text = answer
				}
				return qerr
			})
			if err != nil {
				lastErr = err
				log.Warn().Err(err).
					Str("provider", q.Name()).
					Str("prompt_category", p.Category).
					Msg("provider query failed")
				oc.answers = append(oc.answers, domain.ProviderAnswer{
					Provider:  q.Name(),
					Model:     q.Model(),
					Failed:    true,
					ErrorKind: perr.CodeOf(err).String(),
				})
				continue
			}
			_ = o.deps.Cache.Put(ctx, cachedom.QueryLLM, params, []byte(text), 0)
		}

		ms := det.Scan(text)
		oc.result.Mentions = append(oc.result.Mentions, ms...)
		now := time.Now().UTC()
		for _, m := range ms {
			oc.events = append(oc.events, mentionsdom.Event{
				JobID:        job.ID,
				Brand:        m.Brand,
				Provider:     q.Name(),
				Prompt:       p.Text,
				Surface:      m.Surface,
				Sentiment:    string(m.Sentiment),
				IsCompetitor: m.IsCompetitor,
				Position:     m.Position,
				DetectedAt:   now,
			})
		}
		oc.answers = append(oc.answers, domain.ProviderAnswer{
			Provider: q.Name(),
			Model:    q.Model(),
			Cached:   hit,
		})
		succeeded++
	}

	if succeeded == 0 {
		oc.result.Failed = true
		oc.result.ErrorKind = perr.CodeOf(lastErr).String()
	}
	return oc
}

// runAudit fetches the site (cache first), extracts signals, and scores them
func (o *Orchestrator) runAudit(ctx context.Context, job *domain.Job) (*domain.Result, error) {
	req := job.Request
	params := map[string]string{"domain": req.Domain}

	var sig auditscore.Signals
	payload, hit, _ := o.deps.Cache.Get(ctx, cachedom.QueryAudit, params)
	if hit {
		if err := json.Unmarshal(payload, &sig); err != nil {
			hit = false
		}
	}

	if !hit {
		if o.isCancelled(job.ID) || ctx.Err() != nil {
			return nil, nil
		}
		o.advance(ctx, job, 30, "fetching page")

		r := newRetrier(o.cfg.Retries, o.cfg.BackoffBase, o.cfg.CallTimeout)
		var page webaudit.Page
		err := r.do(ctx, func(c context.Context) error {
			p, ferr := o.deps.Fetcher.Fetch(c, req.Domain)
			if ferr == nil {
				page = p
			}
			return ferr
		})
		if err != nil {
			return nil, err
		}

		if o.isCancelled(job.ID) || ctx.Err() != nil {
			return nil, nil
		}
		o.advance(ctx, job, 60, "extracting signals")
		sig = webaudit.Extract(page)

		if b, err := json.Marshal(sig); err == nil {
			_ = o.deps.Cache.Put(ctx, cachedom.QueryAudit, params, b, 0)
		}
	}

	if o.isCancelled(job.ID) || ctx.Err() != nil {
		return nil, nil
	}
	o.advance(ctx, job, 80, "scoring audit")
	res := auditscore.Score(sig)
	return &domain.Result{Audit: &res}, nil
}

// llmo-scan runs one scan end to end and prints the result as JSON.
// Providers come from PROVIDER_* env vars; everything else is in-memory
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"llmo/internal/platform/logger"
	"llmo/internal/services/cache/memory"
	cachesvc "llmo/internal/services/cache/service"
	"llmo/internal/services/providers"
	"llmo/internal/services/scan/domain"
	scansvc "llmo/internal/services/scan/service"
)

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	var (
		brand       = flag.String("brand", "", "brand name (required)")
		site        = flag.String("domain", "", "website domain (required)")
		scanType    = flag.String("type", "visibility", "visibility | audit | simulation")
		keywords    = flag.String("keywords", "", "comma separated keywords")
		competitors = flag.String("competitors", "", "comma separated competitor brands")
		industry    = flag.String("industry", "", "industry for simulation prompts")
		category    = flag.String("category", "", "product category for simulation prompts")
		fake        = flag.Bool("fake", false, "use a canned fake provider instead of live APIs")
	)
	flag.Parse()

	l := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *brand == "" || *site == "" {
		log.Fatal("-brand and -domain are required")
	}

	qs := providers.FromEnv()
	if *fake {
		qs = []providers.Querier{providers.NewFake("fake", "No canned answer for this prompt.")}
	}

	cache := cachesvc.New(memory.New(), cachesvc.ConfigFromEnv())
	scans := scansvc.New(scansvc.Deps{
		Cache:     cache,
		Providers: qs,
		Observer:  scansvc.LogObserver(),
	}, scansvc.ConfigFromEnv())

	job, err := scans.Submit(ctx, domain.ScanRequest{
		BrandName:       *brand,
		Domain:          *site,
		Keywords:        splitList(*keywords),
		Competitors:     splitList(*competitors),
		ScanType:        domain.ScanType(*scanType),
		Industry:        *industry,
		ProductCategory: *category,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("submit failed")
	}

	if err := scans.Execute(logger.WithJob(ctx, job.ID), job.ID); err != nil {
		l.Fatal().Err(err).Str("job_id", job.ID).Msg("scan failed")
	}

	res, err := scans.Result(ctx, job.ID)
	if err != nil {
		l.Fatal().Err(err).Msg("result unavailable")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		l.Fatal().Err(err).Msg("encode result")
	}
}

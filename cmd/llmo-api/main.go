// @title         LLMO API
// @version       0.1.0
// @description   Brand visibility scans, website audits, and cache controls

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"llmo/internal/platform/config"
	"llmo/internal/platform/logger"
	phttp "llmo/internal/platform/net/http"
	"llmo/internal/platform/store"

	"llmo/internal/services/api"
	cachedom "llmo/internal/services/cache/domain"
	"llmo/internal/services/cache/memory"
	cacherepo "llmo/internal/services/cache/repo"
	cachesvc "llmo/internal/services/cache/service"
	mentionsrepo "llmo/internal/services/mentions/repo"
	mentionsvc "llmo/internal/services/mentions/service"
	"llmo/internal/services/providers"
	"llmo/internal/services/scan/domain"
	scanrepo "llmo/internal/services/scan/repo"
	scansvc "llmo/internal/services/scan/service"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres and clickhouse are both optional; without them the API runs
	// on in-memory storage, which suits local dev and tests
	st, err := store.Open(ctx, store.Config{
		AppName: "llmo",
		PG: store.PGConfig{
			Enabled:     pgCfg.MayString("DBURL", "") != "",
			URL:         pgCfg.MayString("DBURL", ""),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
		CH: store.CHConfig{
			Enabled: chCfg.MayString("DBURL", "") != "",
			URL:     chCfg.MayString("DBURL", ""),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	var backend cachedom.Backend
	if st.PG != nil {
		backend = cacherepo.New(st.PG)
	} else {
		mem := memory.New()
		mem.StartSweeper(ctx, 10*time.Minute)
		backend = mem
	}
	cache := cachesvc.New(backend, cachesvc.ConfigFromEnv())

	var jobs domain.JobRepo
	if st.PG != nil {
		jobs = scanrepo.NewPG(st.PG)
	}

	var archive *mentionsvc.Service
	if st.CH != nil {
		archive = mentionsvc.New(mentionsrepo.New(st.CH))
	}

	scans := scansvc.New(scansvc.Deps{
		Repo:      jobs,
		Cache:     cache,
		Providers: providers.FromEnv(),
		Archive:   archive,
	}, scansvc.ConfigFromEnv())

	srv := phttp.NewServer(apiCfg)
	api.Mount(srv.Router(), api.Options{
		Scans:         scans,
		Cache:         cache,
		EnableSwagger: apiCfg.MayBool("SWAGGER", true),
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

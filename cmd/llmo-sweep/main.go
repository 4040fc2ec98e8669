// llmo-sweep deletes expired cache rows from postgres, once or on an interval
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"llmo/internal/platform/config"
	"llmo/internal/platform/logger"
	"llmo/internal/platform/store"

	cacherepo "llmo/internal/services/cache/repo"
)

func main() {
	interval := flag.Duration("interval", 0, "sweep interval; 0 sweeps once and exits")
	flag.Parse()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "llmo",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
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

	repo := cacherepo.New(st.PG)
	sweep := func() {
		n, err := repo.Sweep(ctx)
		if err != nil {
			l.Error().Err(err).Msg("sweep failed")
			return
		}
		l.Info().Int64("removed", n).Msg("cache sweep done")
	}

	sweep()
	if *interval <= 0 {
		return
	}

	t := time.NewTicker(*interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sweep()
		}
	}
}

// Package api mounts the HTTP surface over the scan orchestrator and cache
package api

import (
	cachesvc "llmo/internal/services/cache/service"
	scansvc "llmo/internal/services/scan/service"

	"github.com/go-chi/chi/v5"
)

// Options are the API options
type Options struct {
	Scans         *scansvc.Orchestrator
	Cache         *cachesvc.Service
	EnableSwagger bool
}

// Mount mounts all endpoints onto the given router
func Mount(r chi.Router, opt Options) {
	h := &handlers{
		scans: opt.Scans,
		cache: opt.Cache,
	}

	r.Get("/healthz", h.health)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/scans", func(s chi.Router) {
			s.Post("/", h.submitScan)
			s.Get("/{id}", h.getScan)
			s.Delete("/{id}", h.cancelScan)
			s.Get("/{id}/result", h.getResult)
		})
		v1.Route("/cache", func(c chi.Router) {
			c.Get("/stats", h.cacheStats)
			c.Post("/invalidate", h.cacheInvalidate)
		})
		v1.Get("/providers", h.listProviders)
	})

	mountSwagger(r, opt.EnableSwagger)
}

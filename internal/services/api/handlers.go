package api

import (
	stdhttp "net/http"

	phttp "llmo/internal/platform/net/http"
	"llmo/internal/platform/net/http/bind"
	cachesvc "llmo/internal/services/cache/service"
	"llmo/internal/services/scan/domain"
	scansvc "llmo/internal/services/scan/service"

	"github.com/go-chi/chi/v5"
)

type handlers struct {
	scans *scansvc.Orchestrator
	cache *cachesvc.Service
}

// InvalidateInput selects cache entries to drop by storage key prefix
type InvalidateInput struct {
	Prefix string `json:"prefix" validate:"required,min=1,max=255"`
}

// InvalidateResult reports how many entries were dropped
type InvalidateResult struct {
	Removed int64 `json:"removed"`
}

// @Summary Liveness probe
// @Tags Meta
// @Produce json
// @Success 200 {object} http.Envelope "ok"
// @Router /healthz [get]
func (h *handlers) health(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	phttp.RespondOK(w, r, map[string]string{"status": "ok"})
}

// @Summary Submit a scan
// @Tags Scans
// @Accept json
// @Produce json
// @Param payload body domain.ScanRequest true "Scan request"
// @Success 202 {object} http.Envelope{data=domain.Job} "accepted"
// @Failure 400 {object} http.Envelope "invalid request"
// @Router /api/v1/scans [post]
func (h *handlers) submitScan(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	req, err := bind.ParseJSON[domain.ScanRequest](r)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	job, err := h.scans.Submit(r.Context(), req)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	h.scans.Start(job)

	phttp.RespondAccepted(w, r, job)
}

// @Summary Get scan status and progress
// @Tags Scans
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} http.Envelope{data=domain.Job} "ok"
// @Failure 404 {object} http.Envelope "unknown job"
// @Router /api/v1/scans/{id} [get]
func (h *handlers) getScan(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	job, err := h.scans.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, job)
}

// @Summary Cancel a scan
// @Tags Scans
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} http.Envelope{data=domain.Job} "cancellation requested"
// @Failure 404 {object} http.Envelope "unknown job"
// @Failure 409 {object} http.Envelope "job already finished"
// @Router /api/v1/scans/{id} [delete]
func (h *handlers) cancelScan(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	id := chi.URLParam(r, "id")
	if err := h.scans.Cancel(r.Context(), id); err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	job, err := h.scans.Job(r.Context(), id)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, job)
}

// @Summary Get the final scan result
// @Tags Scans
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} http.Envelope{data=domain.Result} "ok"
// @Failure 404 {object} http.Envelope "no result yet"
// @Router /api/v1/scans/{id}/result [get]
func (h *handlers) getResult(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	res, err := h.scans.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, res)
}

// @Summary Cache hit and size counters
// @Tags Cache
// @Produce json
// @Success 200 {object} http.Envelope{data=domain.Stats} "ok"
// @Router /api/v1/cache/stats [get]
func (h *handlers) cacheStats(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, stats)
}

// @Summary Invalidate cache entries by prefix
// @Tags Cache
// @Accept json
// @Produce json
// @Param payload body InvalidateInput true "Prefix"
// @Success 200 {object} http.Envelope{data=InvalidateResult} "ok"
// @Failure 400 {object} http.Envelope "invalid request"
// @Router /api/v1/cache/invalidate [post]
func (h *handlers) cacheInvalidate(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	in, err := bind.ParseJSON[InvalidateInput](r)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	removed, err := h.cache.Invalidate(r.Context(), in.Prefix)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, InvalidateResult{Removed: removed})
}

// @Summary List configured providers
// @Tags Providers
// @Produce json
// @Success 200 {object} http.Envelope "ok"
// @Router /api/v1/providers [get]
func (h *handlers) listProviders(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	phttp.RespondOK(w, r, h.scans.Providers())
}

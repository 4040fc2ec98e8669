package api

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

// mountSwagger serves the Swagger UI and spec JSON when enabled
func mountSwagger(r chi.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		stdhttp.Redirect(w, r, "/api/docs/", stdhttp.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON())
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}

//go:build swag

package api

import (
	stdhttp "net/http"

	docs "llmo/internal/services/api/docs"
)

// serveDocJSON serves the generated swagger spec
func serveDocJSON() stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
	}
}

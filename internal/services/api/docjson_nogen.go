//go:build !swag

package api

import stdhttp "net/http"

// serveDocJSON (no-swag build) serves a skeleton spec so the UI still loads
func serveDocJSON() stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(`{"openapi":"3.0.3","info":{"title":"LLMO API","version":"0.0.0"},"paths":{}}`))
	}
}

package handlers

import (
	"net/http"

	"github.com/miragerp/statuswatch/internal/httpserver/deps"
)

// Endpoints probes every upstream endpoint and returns raw per-endpoint
// detail, including errors. Operator troubleshooting only.
func Endpoints(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, d, d.Status.TestEndpoints(r.Context()), nil)
	}
}

// CacheStats reports age and expiry per cache key.
func CacheStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, d, d.Status.GetCacheStats(r.Context()), nil)
	}
}

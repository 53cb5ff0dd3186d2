package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/miragerp/statuswatch/internal/httpserver/deps"
	"github.com/miragerp/statuswatch/internal/httpserver/handlers"
	"github.com/miragerp/statuswatch/internal/httpserver/mw"
)

func init() { Register(registerDiagnostics) }

// Operator-only routes: raw endpoint probing and cache introspection.
func registerDiagnostics(r chi.Router, d deps.Deps) {
	guarded := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)

	guarded.Route("/api/diagnostics", func(r chi.Router) {
		r.Get("/endpoints", handlers.Endpoints(d))
		r.Get("/cache", handlers.CacheStats(d))
	})
}

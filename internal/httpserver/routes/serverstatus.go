package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/miragerp/statuswatch/internal/httpserver/deps"
	"github.com/miragerp/statuswatch/internal/httpserver/handlers"
	"github.com/miragerp/statuswatch/internal/httpserver/mw"
)

func init() { Register(registerServerStatus) }

// Public status routes, consumed by the community site frontend. Rate
// limited per client IP; every route always answers 200 with live, stale,
// or default data.
func registerServerStatus(r chi.Router, d deps.Deps) {
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		TrustProxy:        d.TrustProxy,
	}))

	limited.Route("/api/server-status", func(r chi.Router) {
		r.Get("/status", handlers.ServerStatus(d))
		r.Get("/players", handlers.Players(d))
		r.Get("/comprehensive", handlers.Comprehensive(d))
		r.Get("/resources", handlers.Resources(d))
		r.Get("/info", handlers.ServerInfo(d))
		r.Get("/connection", handlers.Connection(d))
	})
}

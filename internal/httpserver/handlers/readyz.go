package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/miragerp/statuswatch/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Upstream bool `json:"upstream"`
}

// Readyz always reports ready: the fallback chain serves responses even
// while the upstream is down. The upstream field carries the live probe
// result for operators.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		check := d.Status.CheckConnection(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready:    true,
			Upstream: check.Connected,
		})
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/miragerp/statuswatch/internal/httpserver/deps"
)

// envelope is the success shape every status route returns. The engine is
// total, so these routes always answer 200 with live, stale, or default
// data; degraded accuracy only shows in auxiliary fields.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Count     *int   `json:"count,omitempty"`
	Timestamp string `json:"timestamp"`
}

func respond(w http.ResponseWriter, d deps.Deps, data any, count *int) {
	now := time.Now
	if d.TimeNow != nil {
		now = d.TimeNow
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(envelope{
		Success:   true,
		Data:      data,
		Count:     count,
		Timestamp: now().UTC().Format(time.RFC3339),
	})
}

package handlers

import (
	"net/http"

	"github.com/miragerp/statuswatch/internal/httpserver/deps"
)

// ServerStatus serves the dynamic.json-derived tri-state status.
func ServerStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, d, d.Status.GetServerStatus(r.Context()), nil)
	}
}

// Players serves the online player list.
func Players(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players := d.Status.GetOnlinePlayers(r.Context())
		count := len(players)
		respond(w, d, players, &count)
	}
}

// Comprehensive serves the merged, priority-resolved view.
func Comprehensive(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, d, d.Status.GetComprehensiveInfo(r.Context()), nil)
	}
}

// Resources serves the synthetic resource summary.
func Resources(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resources := d.Status.GetResourcesStatus(r.Context())
		count := len(resources)
		respond(w, d, resources, &count)
	}
}

// ServerInfo serves the info.json-derived identity view.
func ServerInfo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, d, d.Status.GetServerInfo(r.Context()), nil)
	}
}

// Connection serves the direct connectivity check.
func Connection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, d, d.Status.CheckConnection(r.Context()), nil)
	}
}

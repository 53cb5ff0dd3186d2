package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/miragerp/statuswatch/internal/cache"
	"github.com/miragerp/statuswatch/internal/fivem"
	"github.com/miragerp/statuswatch/internal/httpserver/deps"
	"github.com/miragerp/statuswatch/internal/httpserver/routes"
	"github.com/miragerp/statuswatch/internal/logger"
	"github.com/miragerp/statuswatch/internal/status"
)

// newUpstream fakes a game server exposing the three JSON endpoints.
func newUpstream(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

// newAPI wires the full route surface against the given upstream.
func newAPI(t *testing.T, upstreamURL string) *httptest.Server {
	t.Helper()

	log := logger.New("error", false)
	client := fivem.NewClient(upstreamURL, "", log)
	store := cache.NewMemory(30 * time.Second)
	svc := status.New(client, store, log, status.Options{
		ServerName:   "Integration Test Server",
		ProbeTimeout: 2 * time.Second,
		FetchTimeout: 2 * time.Second,
	})

	d := deps.Deps{
		Logger:          log,
		StartTime:       time.Now(),
		TimeNow:         time.Now,
		Status:          svc,
		RateLimitBurst:  100,
		RateLimitPerMin: 600,
	}

	r := chi.NewRouter()
	routes.RegisterAll(r, d)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Count     *int            `json:"count"`
	Timestamp string          `json:"timestamp"`
}

func getEnvelope(t *testing.T, srv *httptest.Server, path string) envelope {
	t.Helper()
	res, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status = %d, want 200", path, res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("GET %s: Content-Type = %q", path, ct)
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("GET %s: decode: %v", path, err)
	}
	if !env.Success {
		t.Fatalf("GET %s: success = false", path)
	}
	if _, err := time.Parse(time.RFC3339, env.Timestamp); err != nil {
		t.Fatalf("GET %s: timestamp %q not RFC3339: %v", path, env.Timestamp, err)
	}
	return env
}

func TestStatusRoutesAgainstHealthyUpstream(t *testing.T) {
	upstream := newUpstream(t, map[string]string{
		"/dynamic.json": `{"clients":3,"sv_maxclients":"48","hostname":"Mirage RP","gametype":"roleplay","mapname":"fivem-map","version":"1.0.0"}`,
		"/players.json": `[{"id":1,"name":"Ada","ping":40,"identifiers":["license:abc"]},{"id":2,"name":"Linus","ping":55},{"id":3,"name":"Grace","ping":31}]`,
		"/info.json":    `{"hostname":"Mirage RP","sv_maxclients":"48","version":3622,"vars":{"gamename":"gta5"},"resources":["chat","spawnmanager"]}`,
	})
	defer upstream.Close()

	api := newAPI(t, upstream.URL)

	t.Run("status", func(t *testing.T) {
		env := getEnvelope(t, api, "/api/server-status/status")

		var got struct {
			Status     string `json:"status"`
			Uptime     string `json:"uptime"`
			Players    int    `json:"players"`
			MaxPlayers int    `json:"maxPlayers"`
		}
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if got.Status != "online" {
			t.Errorf("status = %q, want online", got.Status)
		}
		if got.Players != 3 || got.MaxPlayers != 48 {
			t.Errorf("players = %d/%d, want 3/48", got.Players, got.MaxPlayers)
		}
		if got.Uptime != "running" {
			t.Errorf("uptime = %q, want running", got.Uptime)
		}
	})

	t.Run("players", func(t *testing.T) {
		env := getEnvelope(t, api, "/api/server-status/players")

		if env.Count == nil || *env.Count != 3 {
			t.Fatalf("count = %v, want 3", env.Count)
		}
		var got []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if len(got) != 3 || got[0].Name != "Ada" || got[0].ID != "1" {
			t.Errorf("unexpected player list: %+v", got)
		}
	})

	t.Run("comprehensive", func(t *testing.T) {
		env := getEnvelope(t, api, "/api/server-status/comprehensive")

		var got struct {
			Server struct {
				Status string `json:"status"`
				Uptime string `json:"uptime"`
				Name   string `json:"name"`
			} `json:"server"`
			Players struct {
				Online int `json:"online"`
				Max    int `json:"max"`
			} `json:"players"`
		}
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if got.Server.Status != "online" {
			t.Errorf("server.status = %q, want online", got.Server.Status)
		}
		if got.Players.Online != 3 || got.Players.Max != 48 {
			t.Errorf("players = %d/%d, want 3/48", got.Players.Online, got.Players.Max)
		}
	})

	t.Run("resources", func(t *testing.T) {
		env := getEnvelope(t, api, "/api/server-status/resources")
		if env.Count == nil || *env.Count != 1 {
			t.Fatalf("count = %v, want 1", env.Count)
		}
	})

	t.Run("info", func(t *testing.T) {
		env := getEnvelope(t, api, "/api/server-status/info")

		var got struct {
			Resources []string       `json:"resources"`
			Vars      map[string]any `json:"vars"`
		}
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if len(got.Resources) != 2 {
			t.Errorf("resources = %v, want 2 entries", got.Resources)
		}
	})

	t.Run("connection", func(t *testing.T) {
		env := getEnvelope(t, api, "/api/server-status/connection")

		var got struct {
			Connected bool `json:"connected"`
		}
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if !got.Connected {
			t.Error("connected = false, want true")
		}
	})

	t.Run("healthz", func(t *testing.T) {
		res, err := http.Get(api.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz: %v", err)
		}
		defer func() { _ = res.Body.Close() }()
		if res.StatusCode != http.StatusOK {
			t.Errorf("healthz status = %d, want 200", res.StatusCode)
		}
	})
}

func TestStatusRoutesAgainstDeadUpstream(t *testing.T) {
	upstream := newUpstream(t, nil)
	upstream.Close() // connection refused from here on

	api := newAPI(t, upstream.URL)

	env := getEnvelope(t, api, "/api/server-status/status")

	var got struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.Status != "unknown" {
		t.Errorf("status = %q, want unknown", got.Status)
	}
	if got.Uptime != "0d 0h 0m" {
		t.Errorf("uptime = %q, want default", got.Uptime)
	}

	players := getEnvelope(t, api, "/api/server-status/players")
	if players.Count == nil || *players.Count != 0 {
		t.Errorf("players count = %v, want 0", players.Count)
	}
	if string(players.Data) != "[]" {
		t.Errorf("players data = %s, want []", players.Data)
	}
}

func TestDiagnosticsRoutesOpenWithoutRestrictions(t *testing.T) {
	upstream := newUpstream(t, map[string]string{
		"/dynamic.json": `{"clients":0,"sv_maxclients":32,"hostname":"Mirage RP"}`,
		"/players.json": `[]`,
		"/info.json":    `{"vars":{},"resources":[]}`,
	})
	defer upstream.Close()

	api := newAPI(t, upstream.URL)

	env := getEnvelope(t, api, "/api/diagnostics/endpoints")

	var got map[string]struct {
		URL       string `json:"url"`
		ValidJSON bool   `json:"valid_json"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("probed %d endpoints, want 4", len(got))
	}
	for _, name := range []string{"info", "dynamic", "players"} {
		if !got[name].ValidJSON {
			t.Errorf("%s: valid_json = false, want true", name)
		}
	}

	cacheEnv := getEnvelope(t, api, "/api/diagnostics/cache")
	var stats map[string]any
	if err := json.Unmarshal(cacheEnv.Data, &stats); err != nil {
		t.Fatalf("decode cache stats: %v", err)
	}
}

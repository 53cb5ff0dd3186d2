package status

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/miragerp/statuswatch/internal/cache"
	"github.com/miragerp/statuswatch/internal/fivem"
	"github.com/miragerp/statuswatch/internal/logger"
)

// Cache keys, one per logical read operation.
const (
	keyServerStatus  = "serverStatus"
	keyPlayers       = "players"
	keyResources     = "resources"
	keyServerInfo    = "serverInfo"
	keyComprehensive = "comprehensive"
)

// Options tunes the service. Zero values fall back to the observed defaults.
type Options struct {
	ServerName   string        // display name when the upstream reports none
	ProbeTimeout time.Duration // restart probes and connection check (default 3s)
	FetchTimeout time.Duration // single-endpoint reads (default 5s)
}

// Service answers one question: is the game server actually usable right
// now. Every public read operation is total — failures are absorbed into
// the fallback chain (live fetch, then fresh cache, then hardcoded
// default) and never surface as errors.
type Service struct {
	client *fivem.Client
	store  cache.Store
	log    logger.Logger
	opts   Options
	now    func() time.Time
}

func New(client *fivem.Client, store cache.Store, log logger.Logger, opts Options) *Service {
	if opts.ServerName == "" {
		opts.ServerName = "FiveM Server"
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 3 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	return &Service{
		client: client,
		store:  store,
		log:    log,
		opts:   opts,
		now:    time.Now,
	}
}

// WithClock injects the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetServerStatus derives the tri-state status from dynamic.json: online
// iff at least one client is connected.
func (s *Service) GetServerStatus(ctx context.Context) ServerStatus {
	res := s.client.Fetch(ctx, fivem.EndpointDynamic, s.opts.FetchTimeout)

	var dyn dynamicPayload
	if err := res.Decode(&dyn); err != nil {
		s.log.Warn("server status fetch failed", logger.Error(err))
		return s.fallbackServerStatus(ctx)
	}

	st := ServerStatus{
		Status:     StatusOffline,
		Uptime:     orDefault(dyn.Uptime, UptimeRunning),
		Version:    orDefault(string(dyn.Version), StatusUnknown),
		Timestamp:  s.now().UTC(),
		Players:    int(dyn.Clients),
		MaxPlayers: maxClientsOrDefault(dyn.SvMaxclients),
	}
	if dyn.Clients > 0 {
		st.Status = StatusOnline
	}

	s.putCache(ctx, keyServerStatus, st)
	return st
}

// GetOnlinePlayers returns the current player list. It never fails: if both
// players.json and the dynamic fallback are unusable it returns an empty
// list.
func (s *Service) GetOnlinePlayers(ctx context.Context) []Player {
	players, err := s.fetchPlayers(ctx)
	if err != nil {
		s.log.Warn("all player sources failed", logger.Error(err))
		return []Player{}
	}
	return players
}

// fetchPlayers distinguishes "zero players" from "the fetch machinery
// failed on both paths"; the comprehensive merge needs that distinction
// (a failed player fetch is the second strongest offline signal).
func (s *Service) fetchPlayers(ctx context.Context) ([]Player, error) {
	res := s.client.Fetch(ctx, fivem.EndpointPlayers, s.opts.FetchTimeout)
	if res.Usable() {
		var raw []playerPayload
		if err := json.Unmarshal(res.Body, &raw); err == nil {
			players := make([]Player, 0, len(raw))
			for _, p := range raw {
				players = append(players, p.toPlayer())
			}
			s.putCache(ctx, keyPlayers, players)
			return players, nil
		}
		// Valid JSON but not an array: treat like a failed fetch.
		s.log.Warn("players.json returned a non-array body")
	}

	// players.json is empirically the first endpoint to fail during a
	// restart; dynamic.json's scalar count holds on longer.
	return s.playersFromDynamic(ctx)
}

func (s *Service) playersFromDynamic(ctx context.Context) ([]Player, error) {
	res := s.client.Fetch(ctx, fivem.EndpointDynamic, s.opts.FetchTimeout)

	var dyn dynamicPayload
	if err := res.Decode(&dyn); err != nil {
		return nil, fmt.Errorf("players fallback via dynamic failed: %w", err)
	}

	count := int(dyn.Clients)
	if count <= 0 {
		return []Player{}, nil
	}

	// dynamic.json carries no per-player detail, only the count, so the
	// list is synthesized. Ping is cosmetic.
	players := make([]Player, 0, count)
	for i := 1; i <= count; i++ {
		players = append(players, Player{
			ID:          fmt.Sprintf("player_%d", i),
			Name:        fmt.Sprintf("Player %d", i),
			Ping:        20 + rand.IntN(100),
			Identifiers: []string{},
		})
	}
	s.log.Debug("synthesized player list from dynamic count",
		logger.Int("count", count))
	return players, nil
}

// GetResourcesStatus approximates resource state: the upstream exposes no
// resource introspection, so a single synthetic server-process entry is
// reported.
func (s *Service) GetResourcesStatus(ctx context.Context) []Resource {
	resources := []Resource{
		{Name: "FiveM Server", Status: "started", Type: "server"},
	}
	s.putCache(ctx, keyResources, resources)
	return resources
}

// GetServerInfo derives the identity view from info.json.
func (s *Service) GetServerInfo(ctx context.Context) ServerInfo {
	res := s.client.Fetch(ctx, fivem.EndpointInfo, s.opts.FetchTimeout)

	var raw infoPayload
	if err := res.Decode(&raw); err != nil {
		s.log.Warn("server info fetch failed", logger.Error(err))
		return s.fallbackServerInfo(ctx)
	}

	info := ServerInfo{
		Server: ServerDetails{
			Name:       orDefault(raw.Hostname, s.opts.ServerName),
			MaxClients: maxClientsOrDefault(raw.SvMaxclients),
			Version:    orDefault(string(raw.Version), StatusUnknown),
			Map:        orDefault(raw.Mapname, "Los Santos"),
			Gametype:   orDefault(raw.Gametype, "FiveM"),
		},
		Vars:      raw.Vars,
		Resources: raw.Resources,
		Uptime:    raw.Uptime,
	}
	if info.Vars == nil {
		info.Vars = map[string]any{}
	}
	if info.Resources == nil {
		info.Resources = []string{}
	}

	s.putCache(ctx, keyServerInfo, info)
	return info
}

// CheckConnection probes info.json once with a short timeout. Known
// limitation: a server mid-restart may still answer this single probe, so
// a positive result alone does not rule out a restart — that is what
// DetectRestart is for.
func (s *Service) CheckConnection(ctx context.Context) ConnectionCheck {
	res := s.client.Fetch(ctx, fivem.EndpointInfo, s.opts.ProbeTimeout)

	var raw infoPayload
	if err := res.Decode(&raw); err != nil {
		return ConnectionCheck{Connected: false, Error: res.Err}
	}

	return ConnectionCheck{
		Connected:  true,
		Status:     StatusOnline,
		Uptime:     orDefault(raw.Uptime, defaultUptime),
		Players:    int(raw.Clients),
		MaxPlayers: maxClientsOrDefault(raw.SvMaxclients),
	}
}

// GetComprehensiveInfo combines every signal, resolving the status in
// strict priority order:
//
//  1. restart signature (any confidence) -> offline / "restarting"
//  2. player fetch machinery failed      -> offline / "offline"
//  3. connection check succeeded         -> online / "running"
//     (zero players is still online: an empty server is running)
//  4. player-count heuristic             -> online iff any players
//
// The connection check only runs once the restart probe has cleared; it
// gives false positives during restarts. Reordering these steps changes
// observable behavior under partial failure.
func (s *Service) GetComprehensiveInfo(ctx context.Context) ComprehensiveInfo {
	sig := s.client.DetectRestart(ctx, s.opts.ProbeTimeout)
	players, playersErr := s.fetchPlayers(ctx)

	var resolved, label string
	switch {
	case sig.Restarting:
		resolved, label = StatusOffline, UptimeRestarting
		s.log.Info("status resolved by restart detection",
			logger.String("confidence", string(sig.Confidence)))
	case playersErr != nil:
		resolved, label = StatusOffline, UptimeOffline
		s.log.Info("status resolved by failed player fetch")
	default:
		if conn := s.CheckConnection(ctx); conn.Connected {
			resolved, label = StatusOnline, UptimeRunning
		} else if len(players) > 0 {
			resolved, label = StatusOnline, UptimeRunning
			s.log.Info("status resolved by player-count heuristic",
				logger.Int("players", len(players)))
		} else {
			resolved, label = StatusOffline, UptimeOffline
		}
	}

	if players == nil {
		players = []Player{}
	}

	// Payload enrichment; each of these falls back safely on its own.
	srv := s.GetServerStatus(ctx)
	info := s.GetServerInfo(ctx)
	resources := s.GetResourcesStatus(ctx)

	running := 0
	for _, r := range resources {
		if r.Status == "started" {
			running++
		}
	}

	comp := ComprehensiveInfo{
		Server: ComprehensiveServer{
			Status:     resolved,
			Uptime:     label,
			Version:    srv.Version,
			Name:       info.Server.Name,
			MaxClients: info.Server.MaxClients,
			GameBuild:  info.Server.Version,
		},
		Players: PlayersSummary{
			Online: len(players),
			Max:    info.Server.MaxClients,
			List:   players,
		},
		Resources: ResourcesSummary{
			Total:   len(resources),
			Running: running,
			Status:  resources,
		},
		Performance: Performance{
			Uptime:    label,
			Timestamp: s.now().UTC(),
		},
		Vars:    info.Vars,
		Version: srv.Version,
	}

	s.putCache(ctx, keyComprehensive, comp)
	return comp
}

// GetCacheStats reports per-key age and expiry, for diagnostics.
func (s *Service) GetCacheStats(ctx context.Context) map[string]cache.KeyStats {
	return s.store.Stats(ctx)
}

// TestEndpoints probes every known endpoint and surfaces raw detail. This
// is the one operation that exposes errors instead of absorbing them; it
// exists for operator troubleshooting.
func (s *Service) TestEndpoints(ctx context.Context) map[string]EndpointProbe {
	out := make(map[string]EndpointProbe, len(fivem.AllEndpoints()))
	for _, ep := range fivem.AllEndpoints() {
		res := s.client.Fetch(ctx, ep, s.opts.FetchTimeout)
		probe := EndpointProbe{
			URL:        s.client.BaseURL() + ep.Path(),
			HTTPStatus: res.HTTPStatus,
			ValidJSON:  res.ValidJSON,
			Error:      res.Err,
		}
		if res.Usable() {
			probe.Data = json.RawMessage(res.Body)
		}
		out[string(ep)] = probe
	}
	return out
}

// ── fallbacks and cache plumbing ─────────────────────────────────────

func (s *Service) fallbackServerStatus(ctx context.Context) ServerStatus {
	var st ServerStatus
	if s.cached(ctx, keyServerStatus, &st) {
		s.log.Debug("serving cached server status")
		return st
	}
	return ServerStatus{
		Status:     StatusUnknown,
		Uptime:     defaultUptime,
		Version:    StatusUnknown,
		Timestamp:  s.now().UTC(),
		Players:    0,
		MaxPlayers: defaultMaxPlayers,
	}
}

func (s *Service) fallbackServerInfo(ctx context.Context) ServerInfo {
	var info ServerInfo
	if s.cached(ctx, keyServerInfo, &info) {
		s.log.Debug("serving cached server info")
		return info
	}
	return ServerInfo{
		Server: ServerDetails{
			Name:       s.opts.ServerName,
			MaxClients: defaultMaxPlayers,
			Version:    StatusUnknown,
			Map:        "Los Santos",
			Gametype:   "FiveM",
		},
		Vars:      map[string]any{},
		Resources: []string{},
	}
}

func (s *Service) putCache(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("failed to marshal cache payload",
			logger.String("key", key),
			logger.Error(err))
		return
	}
	s.store.Set(ctx, key, data)
}

func (s *Service) cached(ctx context.Context, key string, v any) bool {
	data, ok := s.store.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("cached payload is corrupt",
			logger.String("key", key),
			logger.Error(err))
		return false
	}
	return true
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func maxClientsOrDefault(v flexInt) int {
	if v > 0 {
		return int(v)
	}
	return defaultMaxPlayers
}

package status

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Externally exposed status vocabulary. "restarting" is never a status of
// its own: a restarting server is reported offline with an uptime label of
// "restarting" so dashboards can tell the two apart.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusUnknown = "unknown"
)

// Uptime labels carried next to the status.
const (
	UptimeRunning    = "running"
	UptimeOffline    = "offline"
	UptimeRestarting = "restarting"

	defaultUptime = "0d 0h 0m"
)

const defaultMaxPlayers = 64

// ServerStatus is the single-endpoint view derived from dynamic.json.
type ServerStatus struct {
	Status     string    `json:"status"`
	Uptime     string    `json:"uptime"`
	Version    string    `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
}

// Player is one entry of the online player list.
type Player struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ping        int      `json:"ping"`
	Identifiers []string `json:"identifiers"`
}

// Resource is a synthetic resource entry. The upstream exposes no real
// resource introspection, so the list always holds one "server process"
// entry.
type Resource struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

// ServerInfo is the identity view derived from info.json.
type ServerInfo struct {
	Server    ServerDetails  `json:"server"`
	Vars      map[string]any `json:"vars"`
	Resources []string       `json:"resources"`
	Uptime    string         `json:"uptime,omitempty"`
}

type ServerDetails struct {
	Name       string `json:"name"`
	MaxClients int    `json:"maxClients"`
	Version    string `json:"version"`
	Map        string `json:"map"`
	Gametype   string `json:"gametype"`
}

// ConnectionCheck is the outcome of the direct connectivity probe.
// A mid-restart server can still answer this single probe, so a positive
// result is only trusted after the restart detector has cleared.
type ConnectionCheck struct {
	Connected  bool   `json:"connected"`
	Status     string `json:"status,omitempty"`
	Uptime     string `json:"uptime,omitempty"`
	Players    int    `json:"players,omitempty"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ComprehensiveInfo is the merged, priority-resolved view combining every
// signal into one status answer.
type ComprehensiveInfo struct {
	Server      ComprehensiveServer `json:"server"`
	Players     PlayersSummary      `json:"players"`
	Resources   ResourcesSummary    `json:"resources"`
	Performance Performance         `json:"performance"`
	Vars        map[string]any      `json:"vars"`
	Version     string              `json:"version"`
}

type ComprehensiveServer struct {
	Status     string `json:"status"`
	Uptime     string `json:"uptime"`
	Version    string `json:"version"`
	Name       string `json:"name"`
	MaxClients int    `json:"maxClients"`
	GameBuild  string `json:"gameBuild"`
}

type PlayersSummary struct {
	Online int      `json:"online"`
	Max    int      `json:"max"`
	List   []Player `json:"list"`
}

type ResourcesSummary struct {
	Total   int        `json:"total"`
	Running int        `json:"running"`
	Status  []Resource `json:"status"`
}

type Performance struct {
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// EndpointProbe is the raw per-endpoint detail surfaced by the diagnostics
// operation only; every other read operation absorbs errors into fallbacks.
type EndpointProbe struct {
	URL        string          `json:"url"`
	HTTPStatus int             `json:"http_status,omitempty"`
	ValidJSON  bool            `json:"valid_json"`
	Error      string          `json:"error,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// ── upstream payload shapes ──────────────────────────────────────────

// The upstream is loose about types: sv_maxclients arrives as a number on
// some builds and as a quoted string on others. flexInt accepts both and
// reads anything unparseable as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(int(v))
		return nil
	}
	*f = 0
	return nil
}

// flexString accepts a string or a bare number (info.json reports the
// server build version as a number).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	tok := strings.TrimSpace(string(b))
	if tok == "null" {
		*f = ""
		return nil
	}
	*f = flexString(tok)
	return nil
}

type dynamicPayload struct {
	Clients      flexInt    `json:"clients"`
	SvMaxclients flexInt    `json:"sv_maxclients"`
	Hostname     string     `json:"hostname"`
	Gametype     string     `json:"gametype"`
	Mapname      string     `json:"mapname"`
	Version      flexString `json:"version"`
	Uptime       string     `json:"uptime"`
}

type playerPayload struct {
	ID          flexInt  `json:"id"`
	Name        string   `json:"name"`
	Ping        flexInt  `json:"ping"`
	Identifiers []string `json:"identifiers"`
	Endpoint    string   `json:"endpoint"`
}

func (p playerPayload) toPlayer() Player {
	out := Player{
		Name:        p.Name,
		Ping:        int(p.Ping),
		Identifiers: p.Identifiers,
	}
	switch {
	case p.ID != 0:
		out.ID = strconv.Itoa(int(p.ID))
	case p.Endpoint != "":
		out.ID = p.Endpoint
	default:
		out.ID = "unknown"
	}
	if out.Name == "" {
		out.Name = "Unknown Player"
	}
	if out.Identifiers == nil {
		out.Identifiers = []string{}
	}
	return out
}

type infoPayload struct {
	Hostname     string         `json:"hostname"`
	Clients      flexInt        `json:"clients"`
	SvMaxclients flexInt        `json:"sv_maxclients"`
	Version      flexString     `json:"version"`
	Mapname      string         `json:"mapname"`
	Gametype     string         `json:"gametype"`
	Vars         map[string]any `json:"vars"`
	Resources    []string       `json:"resources"`
	Uptime       string         `json:"uptime"`
}

package fivem

// Endpoint identifies one of the fixed upstream JSON endpoints exposed by a
// FiveM server process. The set is immutable for the process lifetime.
type Endpoint string

const (
	EndpointInfo    Endpoint = "info"    // server identity, vars, resource list
	EndpointDynamic Endpoint = "dynamic" // player count, max clients, map
	EndpointPlayers Endpoint = "players" // per-player detail
	EndpointPing    Endpoint = "ping"    // latency check, diagnostics only
)

// Path returns the relative path of the endpoint under the base URL.
func (e Endpoint) Path() string {
	switch e {
	case EndpointInfo:
		return "/info.json"
	case EndpointDynamic:
		return "/dynamic.json"
	case EndpointPlayers:
		return "/players.json"
	case EndpointPing:
		return "/ping.json"
	}
	return "/" + string(e) + ".json"
}

// ProbeEndpoints returns the three endpoints the restart detector fans out
// to. Ping is excluded: it never carries data, only reachability.
func ProbeEndpoints() []Endpoint {
	return []Endpoint{EndpointPlayers, EndpointDynamic, EndpointInfo}
}

// AllEndpoints returns every known endpoint, for diagnostics.
func AllEndpoints() []Endpoint {
	return []Endpoint{EndpointInfo, EndpointDynamic, EndpointPlayers, EndpointPing}
}

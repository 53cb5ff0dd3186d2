package fivem

import (
	"context"
	"time"

	"github.com/miragerp/statuswatch/internal/logger"
)

// restartInvalidQuorum is how many 2xx-but-invalid-JSON probes it takes to
// call a restart with high confidence. Empirically chosen: a single flaky
// endpoint happens, two at once is the restart signature.
const restartInvalidQuorum = 2

// Confidence grades a restart verdict.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// RestartSignal aggregates one probe per endpoint into a restart verdict.
type RestartSignal struct {
	Restarting bool           `json:"restarting"`
	Confidence Confidence     `json:"confidence"`
	Details    []*ProbeResult `json:"details"`
}

// DetectRestart probes every data endpoint with a short timeout and
// classifies the combined outcome. A single valid response proves nothing
// (one endpoint can still answer mid-restart, which is why the connection
// check alone is not trusted); the verdict comes from the pattern across
// all three.
func (c *Client) DetectRestart(ctx context.Context, timeout time.Duration) RestartSignal {
	endpoints := ProbeEndpoints()
	results := make([]*ProbeResult, 0, len(endpoints))
	for _, ep := range endpoints {
		results = append(results, c.Fetch(ctx, ep, timeout))
	}

	sig := ClassifyRestart(results)
	if sig.Restarting {
		c.log.Info("restart signature detected",
			logger.String("confidence", string(sig.Confidence)))
	}
	return sig
}

// ClassifyRestart derives a RestartSignal from probe outcomes. Pure function
// of its inputs, deterministic, no hidden state.
//
//   - >= 2 probes answered 2xx with an invalid JSON body: the server is
//     accepting connections but not serving real data yet -> high confidence.
//   - exactly 1 such probe and no probe returned substantive content ->
//     medium confidence.
//   - anything else -> not restarting.
func ClassifyRestart(results []*ProbeResult) RestartSignal {
	if len(results) == 0 {
		return RestartSignal{Restarting: false, Confidence: ConfidenceUnknown, Details: []*ProbeResult{}}
	}

	invalidJSON := 0
	substantive := 0
	for _, r := range results {
		if r.HTTPOk() && !r.ValidJSON {
			invalidJSON++
		}
		if r.Substantive {
			substantive++
		}
	}

	switch {
	case invalidJSON >= restartInvalidQuorum:
		return RestartSignal{Restarting: true, Confidence: ConfidenceHigh, Details: results}
	case invalidJSON == 1 && substantive == 0:
		return RestartSignal{Restarting: true, Confidence: ConfidenceMedium, Details: results}
	default:
		return RestartSignal{Restarting: false, Confidence: ConfidenceLow, Details: results}
	}
}

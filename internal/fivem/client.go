package fivem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/miragerp/statuswatch/internal/logger"
	"github.com/miragerp/statuswatch/internal/utils"
)

const (
	userAgent = "statuswatch/1.0"

	// maxBodyBytes bounds how much of an upstream response is read.
	// players.json on a full 1024-slot server stays well under this.
	maxBodyBytes = 8 << 20

	// substantiveBodyBytes is the length above which a body counts as
	// substantive. Empirically chosen; a restarting upstream tends to
	// answer with "" or "\r\n".
	substantiveBodyBytes = 10
)

// ProbeResult is the classified outcome of fetching one endpoint once.
// It is created fresh on every fetch and never mutated afterwards.
type ProbeResult struct {
	Endpoint    Endpoint `json:"endpoint"`
	HTTPStatus  int      `json:"http_status,omitempty"` // 0 on transport failure
	ValidJSON   bool     `json:"valid_json"`
	Substantive bool     `json:"substantive"` // body longer than the substantive threshold
	Body        []byte   `json:"-"`           // raw body, retained so callers decode without re-fetching
	Err         string   `json:"error,omitempty"`
}

// HTTPOk reports whether the upstream answered with a 2xx status.
func (p *ProbeResult) HTTPOk() bool {
	return p.HTTPStatus >= 200 && p.HTTPStatus < 300
}

// Usable reports whether the body can be decoded as JSON.
func (p *ProbeResult) Usable() bool {
	return p.HTTPOk() && p.ValidJSON
}

// Decode unmarshals the retained body into v.
func (p *ProbeResult) Decode(v any) error {
	if !p.Usable() {
		return fmt.Errorf("probe of %s is not decodable: %s", p.Endpoint, p.Err)
	}
	if err := json.Unmarshal(p.Body, v); err != nil {
		return fmt.Errorf("failed to decode %s body: %w", p.Endpoint, err)
	}
	return nil
}

// Client probes the three unauthenticated JSON endpoints of a FiveM server.
// It holds no state besides the HTTP transport; results carry their own
// classification and are safe to share.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logger.Logger
}

func NewClient(baseURL, apiKey string, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		log: log,
	}
}

// BaseURL returns the configured upstream address.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch issues one GET to the endpoint with a bounded timeout and classifies
// the outcome. It never returns an error: every failure mode is recorded on
// the ProbeResult so callers can feed it into the restart heuristic.
//
// JSON validity is decided from the body bytes, never from the Content-Type
// header. The upstream does not reliably set one, and mid-restart it returns
// truncated or empty bodies with HTTP 200 (the restart signature).
func (c *Client) Fetch(ctx context.Context, ep Endpoint, timeout time.Duration) *ProbeResult {
	res := &ProbeResult{Endpoint: ep}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ep.Path(), http.NoBody)
	if err != nil {
		res.Err = fmt.Sprintf("failed to create request: %v", err)
		return res
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failure (DNS, refused, timeout): no HTTP status.
		res.Err = err.Error()
		c.log.Debug("upstream fetch failed",
			logger.String("endpoint", string(ep)),
			logger.Error(err))
		return res
	}
	defer utils.Close(resp.Body)

	res.HTTPStatus = resp.StatusCode
	if !res.HTTPOk() {
		res.Err = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		res.Err = fmt.Sprintf("failed to read body: %v", err)
		return res
	}

	res.Body = body
	res.Substantive = len(body) > substantiveBodyBytes
	res.ValidJSON = json.Valid(body)
	if !res.ValidJSON {
		res.Err = "response body is not valid JSON"
		c.log.Debug("upstream returned non-JSON body",
			logger.String("endpoint", string(ep)),
			logger.Int("status", res.HTTPStatus),
			logger.Int("body_bytes", len(body)))
	}
	return res
}

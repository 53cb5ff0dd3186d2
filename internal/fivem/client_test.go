package fivem

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/miragerp/statuswatch/internal/logger"
)

func testLogger() logger.Logger {
	return logger.New("error", false)
}

func TestFetchJSONValidityIgnoresContentType(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantValid   bool
	}{
		{
			name:        "valid JSON declared as text/plain",
			body:        `{"clients": 5, "sv_maxclients": 64}`,
			contentType: "text/plain",
			wantValid:   true,
		},
		{
			name:        "valid JSON with no content type",
			body:        `[]`,
			contentType: "",
			wantValid:   true,
		},
		{
			name:        "garbage declared as application/json",
			body:        `{"clients": 5, "sv_max`,
			contentType: "application/json",
			wantValid:   false,
		},
		{
			name:        "empty body with HTTP 200",
			body:        "",
			contentType: "application/json",
			wantValid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := NewClient(ts.URL, "", testLogger())
			res := c.Fetch(context.Background(), EndpointDynamic, 2*time.Second)

			if res.ValidJSON != tt.wantValid {
				t.Errorf("ValidJSON = %v, want %v", res.ValidJSON, tt.wantValid)
			}
			if res.HTTPStatus != http.StatusOK {
				t.Errorf("HTTPStatus = %d, want 200", res.HTTPStatus)
			}
			if tt.wantValid && res.Err != "" {
				t.Errorf("Err = %q, want empty on valid response", res.Err)
			}
			if !tt.wantValid && res.Err == "" {
				t.Error("Err should be set on invalid JSON")
			}
		})
	}
}

func TestFetchSubstantiveThreshold(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		wantSubstantive bool
	}{
		{name: "short garbage", body: "\r\n", wantSubstantive: false},
		{name: "exactly at threshold", body: strings.Repeat("x", 10), wantSubstantive: false},
		{name: "above threshold", body: strings.Repeat("x", 11), wantSubstantive: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := NewClient(ts.URL, "", testLogger())
			res := c.Fetch(context.Background(), EndpointInfo, 2*time.Second)

			if res.Substantive != tt.wantSubstantive {
				t.Errorf("Substantive = %v, want %v (body %d bytes)",
					res.Substantive, tt.wantSubstantive, len(tt.body))
			}
		})
	}
}

func TestFetchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", testLogger())
	res := c.Fetch(context.Background(), EndpointPlayers, 2*time.Second)

	if res.HTTPStatus != http.StatusServiceUnavailable {
		t.Errorf("HTTPStatus = %d, want 503", res.HTTPStatus)
	}
	if res.Err == "" {
		t.Error("Err should be set on non-2xx status")
	}
	if res.ValidJSON {
		t.Error("ValidJSON should be false on HTTP error")
	}
	if res.Usable() {
		t.Error("Usable() should be false on HTTP error")
	}
}

func TestFetchTransportFailure(t *testing.T) {
	// Closed server: connection refused
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	c := NewClient(ts.URL, "", testLogger())
	res := c.Fetch(context.Background(), EndpointInfo, 2*time.Second)

	if res.HTTPStatus != 0 {
		t.Errorf("HTTPStatus = %d, want 0 on transport failure", res.HTTPStatus)
	}
	if res.Err == "" {
		t.Error("Err should be set on transport failure")
	}
}

func TestFetchTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", testLogger())
	start := time.Now()
	res := c.Fetch(context.Background(), EndpointDynamic, 50*time.Millisecond)

	if res.Err == "" {
		t.Error("Err should be set on timeout")
	}
	if res.HTTPStatus != 0 {
		t.Errorf("HTTPStatus = %d, want 0 on timeout", res.HTTPStatus)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("fetch took %v, timeout did not cancel the request", elapsed)
	}
}

func TestFetchHeaders(t *testing.T) {
	var gotAuth, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret-key", testLogger())
	res := c.Fetch(context.Background(), EndpointInfo, 2*time.Second)

	if !res.Usable() {
		t.Fatalf("fetch failed: %s", res.Err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotUA != userAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, userAgent)
	}
}

func TestProbeResultDecode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"clients": 12}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", testLogger())
	res := c.Fetch(context.Background(), EndpointDynamic, 2*time.Second)

	var v struct {
		Clients int `json:"clients"`
	}
	if err := res.Decode(&v); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v.Clients != 12 {
		t.Errorf("clients = %d, want 12", v.Clients)
	}

	// Decode on a failed probe must error, not panic
	bad := &ProbeResult{Endpoint: EndpointDynamic, Err: "boom"}
	if err := bad.Decode(&v); err == nil {
		t.Error("Decode on failed probe should return error")
	}
}

func TestEndpointPaths(t *testing.T) {
	tests := []struct {
		ep   Endpoint
		want string
	}{
		{EndpointInfo, "/info.json"},
		{EndpointDynamic, "/dynamic.json"},
		{EndpointPlayers, "/players.json"},
		{EndpointPing, "/ping.json"},
	}
	for _, tt := range tests {
		if got := tt.ep.Path(); got != tt.want {
			t.Errorf("Path(%s) = %q, want %q", tt.ep, got, tt.want)
		}
	}
}

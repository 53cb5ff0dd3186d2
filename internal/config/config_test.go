package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.FiveMBaseURL != "http://localhost:30120" {
		t.Errorf("FiveMBaseURL = %q, want default upstream", cfg.FiveMBaseURL)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cfg.CacheTTL)
	}
	if cfg.SweepInterval != 60*time.Second {
		t.Errorf("SweepInterval = %v, want 60s", cfg.SweepInterval)
	}
	if cfg.ProbeTimeout != 3*time.Second {
		t.Errorf("ProbeTimeout = %v, want 3s", cfg.ProbeTimeout)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.FetchTimeout)
	}
	if cfg.CacheBackend != CacheBackendMemory {
		t.Errorf("CacheBackend = %q, want memory", cfg.CacheBackend)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STATUSWATCH_FIVEM_URL", "http://10.0.0.5:30120")
	t.Setenv("STATUSWATCH_CACHE_TTL", "10s")
	t.Setenv("STATUSWATCH_ALLOWED_CIDRS", "10.0.0.0/8, 192.168.1.1")

	cfg := Load()

	if cfg.FiveMBaseURL != "http://10.0.0.5:30120" {
		t.Errorf("FiveMBaseURL = %q, want env override", cfg.FiveMBaseURL)
	}
	if cfg.CacheTTL != 10*time.Second {
		t.Errorf("CacheTTL = %v, want 10s", cfg.CacheTTL)
	}
	if len(cfg.AllowedCIDRS) != 2 || cfg.AllowedCIDRS[0] != "10.0.0.0/8" || cfg.AllowedCIDRS[1] != "192.168.1.1" {
		t.Errorf("AllowedCIDRS = %v, want [10.0.0.0/8 192.168.1.1]", cfg.AllowedCIDRS)
	}
}

func TestLoadRedisBackendRequiresAddr(t *testing.T) {
	t.Setenv("STATUSWATCH_CACHE_BACKEND", "redis")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic when redis backend is selected without an address")
		}
	}()
	Load()
}

func TestApplyProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := []byte("server:\n  base_url: http://fivem.internal:30120\n  name: Mirage RP\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	cfg := &Config{
		FiveMBaseURL: "http://localhost:30120",
		FiveMAPIKey:  "keep-me",
		ServerName:   "FiveM Server",
	}
	if err := applyProfile(cfg, path); err != nil {
		t.Fatalf("applyProfile failed: %v", err)
	}

	if cfg.FiveMBaseURL != "http://fivem.internal:30120" {
		t.Errorf("FiveMBaseURL = %q, want profile override", cfg.FiveMBaseURL)
	}
	if cfg.ServerName != "Mirage RP" {
		t.Errorf("ServerName = %q, want profile override", cfg.ServerName)
	}
	// Unset profile fields must not clobber existing values
	if cfg.FiveMAPIKey != "keep-me" {
		t.Errorf("FiveMAPIKey = %q, want untouched value", cfg.FiveMAPIKey)
	}
}

func TestApplyProfileMissingFile(t *testing.T) {
	cfg := &Config{}
	if err := applyProfile(cfg, "/does/not/exist.yaml"); err == nil {
		t.Error("applyProfile() with missing file should return error")
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "10.0.0.1", want: []string{"10.0.0.1"}},
		{name: "spaces and quotes", input: ` "10.0.0.1" , '192.168.0.0/16' `, want: []string{"10.0.0.1", "192.168.0.0/16"}},
		{name: "trailing comma", input: "a,b,", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAndTrim(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

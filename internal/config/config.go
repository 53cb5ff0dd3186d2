package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	FiveMBaseURL string // upstream game server address (ex: http://localhost:30120)
	FiveMAPIKey  string // optional bearer token sent to the upstream
	ServerName   string // display name used when the upstream does not report one
	ProfileFile  string // optional YAML profile overriding the upstream settings

	CacheTTL      time.Duration // freshness window for cached payloads (default: 30s)
	SweepInterval time.Duration // interval between cache sweeps (default: 60s)
	ProbeTimeout  time.Duration // restart probes and connection check (default: 3s)
	FetchTimeout  time.Duration // single-endpoint reads (default: 5s)

	CacheBackend string // "memory" | "redis"

	// Redis (only used when CacheBackend == "redis")
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDialTimeout    time.Duration // ex: 5s
	RedisReadTimeout    time.Duration // ex: 3s
	RedisWriteTimeout   time.Duration // ex: 3s
	RedisPoolSize       int           // connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)

	AllowedHosts []string // optional, restrict diagnostics to specific Host headers
	AllowedCIDRS []string // optional, restrict diagnostics to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	RateLimitBurst  int // token bucket capacity for the public status routes
	RateLimitPerMin int // refill rate per client IP per minute
}

func Load() *Config {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("STATUSWATCH_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("STATUSWATCH_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("STATUSWATCH_LOG_LEVEL", "info"),
		PrettyLog: mustBool("STATUSWATCH_PRETTY_LOG", true),

		// Upstream
		FiveMBaseURL: getenv("STATUSWATCH_FIVEM_URL", "http://localhost:30120"),
		FiveMAPIKey:  getenv("STATUSWATCH_FIVEM_API_KEY", ""),
		ServerName:   getenv("STATUSWATCH_SERVER_NAME", "FiveM Server"),
		ProfileFile:  getenv("STATUSWATCH_PROFILE_FILE", ""),

		// Cache / polling
		CacheTTL:      mustDuration("STATUSWATCH_CACHE_TTL", 30*time.Second),
		SweepInterval: mustDuration("STATUSWATCH_SWEEP_INTERVAL", 60*time.Second),
		ProbeTimeout:  mustDuration("STATUSWATCH_PROBE_TIMEOUT", 3*time.Second),
		FetchTimeout:  mustDuration("STATUSWATCH_FETCH_TIMEOUT", 5*time.Second),

		CacheBackend: getenv("STATUSWATCH_CACHE_BACKEND", CacheBackendMemory),

		// Redis settings
		RedisAddr:           getenv("STATUSWATCH_REDIS_ADDR", ""),
		RedisUser:           getenv("STATUSWATCH_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("STATUSWATCH_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("STATUSWATCH_REDIS_DB", 0),
		RedisDialTimeout:    mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout:    mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWriteTimeout:   mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),

		// Access restrictions (diagnostics endpoints)
		AllowedHosts: splitAndTrim(getenv("STATUSWATCH_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("STATUSWATCH_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("STATUSWATCH_TRUST_PROXY", true),

		// Rate limiting (public status routes)
		RateLimitBurst:  getenvInt("STATUSWATCH_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("STATUSWATCH_RATE_LIMIT_PER_MIN", 60),
	}

	if cfg.ProfileFile != "" {
		if err := applyProfile(cfg, cfg.ProfileFile); err != nil {
			panic(fmt.Sprintf("❌ FATAL: failed to load profile file %s: %v", cfg.ProfileFile, err))
		}
	}

	if cfg.CacheBackend != CacheBackendMemory && cfg.CacheBackend != CacheBackendRedis {
		panic(fmt.Sprintf("❌ FATAL: STATUSWATCH_CACHE_BACKEND must be %q or %q, got %q",
			CacheBackendMemory, CacheBackendRedis, cfg.CacheBackend))
	}
	if cfg.CacheBackend == CacheBackendRedis && cfg.RedisAddr == "" {
		panic("❌ FATAL: STATUSWATCH_REDIS_ADDR is required when STATUSWATCH_CACHE_BACKEND=redis")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfgCopy.FiveMAPIKey != "" {
			cfgCopy.FiveMAPIKey = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

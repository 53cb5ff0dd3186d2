package cache

import "context"

// KeyStats describes one cached entry for the diagnostics endpoint.
type KeyStats struct {
	AgeSeconds int  `json:"age"`
	Expired    bool `json:"expired"`
}

// Store keeps the last successful payload per logical operation key.
// Payloads are opaque JSON; freshness is decided against the store's TTL.
// A stale entry reads as a miss but is only physically removed by Sweep.
type Store interface {
	// Get returns the payload for key if it is still fresh.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores data under key with the current time as capture timestamp.
	Set(ctx context.Context, key string, data []byte)
	// Stats reports age and expiry per key, including stale entries.
	Stats(ctx context.Context) map[string]KeyStats
	// Sweep removes expired entries and returns how many were deleted.
	Sweep(ctx context.Context) int
}

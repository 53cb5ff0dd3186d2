package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is the default Store: a mutex-protected in-process map. Single
// owner, no persistence; a process restart clears it entirely.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data []byte
	ts   time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return NewMemoryWithClock(ttl, time.Now)
}

// NewMemoryWithClock injects the clock, for tests.
func NewMemoryWithClock(ttl time.Duration, now func() time.Time) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	// Stale entries read as misses; Sweep removes them later.
	if m.now().Sub(e.ts) >= m.ttl {
		return nil, false
	}
	return e.data, true
}

func (m *Memory) Set(_ context.Context, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{data: data, ts: m.now()}
}

func (m *Memory) Stats(_ context.Context) map[string]KeyStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	stats := make(map[string]KeyStats, len(m.entries))
	for key, e := range m.entries {
		age := now.Sub(e.ts)
		stats[key] = KeyStats{
			AgeSeconds: int(age.Seconds()),
			Expired:    age >= m.ttl,
		}
	}
	return stats
}

func (m *Memory) Sweep(_ context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	deleted := 0
	for key, e := range m.entries {
		if now.Sub(e.ts) >= m.ttl {
			delete(m.entries, key)
			deleted++
		}
	}
	return deleted
}

// Len returns the number of entries, fresh or stale.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

package scheduler

import (
	"context"
	"time"

	"github.com/miragerp/statuswatch/internal/cache"
	"github.com/miragerp/statuswatch/internal/logger"
)

// DefaultSweepInterval is how often expired cache entries are removed.
const DefaultSweepInterval = 60 * time.Second

// CacheSweeper periodically evicts expired entries from the status cache.
// This is memory hygiene only: reads already treat stale entries as misses,
// so sweeping never changes what callers observe, it only bounds map size.
type CacheSweeper struct {
	store    cache.Store
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewCacheSweeper(store cache.Store, log logger.Logger, interval time.Duration) *CacheSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &CacheSweeper{
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep. The goroutine exits on Stop or when ctx
// is cancelled, so tests never leak timers.
func (s *CacheSweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops the sweeper.
func (s *CacheSweeper) Stop() {
	close(s.stopCh)
}

func (s *CacheSweeper) sweep(ctx context.Context) {
	deleted := s.store.Sweep(ctx)
	if deleted > 0 {
		s.logger.Info("swept expired cache entries",
			logger.Int("deleted", deleted))
	} else {
		s.logger.Debug("no expired cache entries to sweep")
	}
}

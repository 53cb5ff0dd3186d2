package deps

import (
	"time"

	"github.com/miragerp/statuswatch/internal/logger"
	"github.com/miragerp/statuswatch/internal/status"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Status *status.Service // the status-inference engine

	AllowedHosts []string // Host headers allowed on diagnostics endpoints
	AllowedCIDRS []string // IPs allowed on diagnostics/readyz endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)

	RateLimitBurst  int // token bucket capacity for public status routes
	RateLimitPerMin int // refill per client IP per minute
}

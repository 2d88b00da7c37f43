package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/reel/internal/auth"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/session"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time                // for testing, defaults to time.Now
	AllowedHosts   []string                        // Host headers allowed to access the server
	AllowedCIDRS   []string                        // IPs allowed to access the API and probes
	TrustProxy     bool                            // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Session        *session.Session                // working state + write-back
	Gate           *auth.Gate                      // admin secret and identity fallback
	Storage        string                          // backend name, reported by readyz
	StoragePing    func(ctx context.Context) error // nil when the backend has no probe
	VersionTrigger chan struct{}                   // manual version check (nil if the checker is disabled)
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}

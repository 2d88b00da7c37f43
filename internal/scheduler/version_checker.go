package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/version"
)

// maxDocumentBytes caps how much of the remote document is read.
const maxDocumentBytes = 1 << 20

// ErrCheckInProgress is returned by Check while another check is running.
var ErrCheckInProgress = errors.New("version check already in progress")

// Reinitializer is the part of the session the checker drives.
type Reinitializer interface {
	CatalogVersion() int
	Reinitialize(ctx context.Context) error
}

// VersionChecker polls the deployed entry document and re-initializes the
// session when a newer catalog version is announced.
type VersionChecker struct {
	url           string
	client        *http.Client
	target        Reinitializer
	logger        logger.Logger
	interval      time.Duration
	timeout       time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
	running       atomic.Bool
	lastSeen      atomic.Int64

	// set when a reload could not reach the announced version; guarded by running
	stuckRemote int
	stuckLocal  int
}

// NewVersionChecker creates a checker. manualTrigger may be shared with the
// HTTP layer; a send on it runs a check outside the ticker.
func NewVersionChecker(
	url string,
	target Reinitializer,
	log logger.Logger,
	interval time.Duration,
	timeout time.Duration,
	manualTrigger chan struct{},
) *VersionChecker {
	return &VersionChecker{
		url:           url,
		client:        &http.Client{},
		target:        target,
		logger:        logger.Component(log, "version_checker"),
		interval:      interval,
		timeout:       timeout,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs a first check and then checks on every tick or manual trigger.
func (vc *VersionChecker) Start(ctx context.Context) error {
	if vc.url == "" {
		return fmt.Errorf("version checker needs a URL")
	}
	if _, err := vc.Check(ctx); err != nil {
		vc.logger.Warn("initial version check failed", logger.Error(err))
	}

	ticker := time.NewTicker(vc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				vc.checkAndLog(ctx)
			case <-vc.manualTrigger:
				vc.logger.Info("manual version check triggered")
				vc.checkAndLog(ctx)
			case <-vc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the checker.
func (vc *VersionChecker) Stop() {
	close(vc.stopCh)
}

// LastSeen returns the most recent remote version observed, 0 if none.
func (vc *VersionChecker) LastSeen() int {
	return int(vc.lastSeen.Load())
}

func (vc *VersionChecker) checkAndLog(ctx context.Context) {
	if _, err := vc.Check(ctx); err != nil {
		vc.logger.Warn("version check failed", logger.Error(err))
	}
}

// Check fetches the remote document once. It reports whether the session
// was re-initialized. Overlapping calls fail fast with ErrCheckInProgress.
func (vc *VersionChecker) Check(ctx context.Context) (bool, error) {
	if !vc.running.CompareAndSwap(false, true) {
		return false, ErrCheckInProgress
	}
	defer vc.running.Store(false)

	if vc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, vc.timeout)
		defer cancel()
	}

	remote, err := vc.fetch(ctx)
	if err != nil {
		return false, err
	}
	vc.lastSeen.Store(int64(remote))

	local := vc.target.CatalogVersion()
	if remote <= local {
		vc.logger.Debug("catalog is up to date",
			logger.Int("local", local),
			logger.Int("remote", remote))
		return false, nil
	}

	if remote == vc.stuckRemote && local == vc.stuckLocal {
		vc.logger.Debug("announced catalog still unavailable locally",
			logger.Int("local", local),
			logger.Int("remote", remote))
		return false, nil
	}

	vc.logger.Info("newer catalog announced, reinitializing",
		logger.Int("local", local),
		logger.Int("remote", remote))
	if err := vc.target.Reinitialize(ctx); err != nil {
		return false, fmt.Errorf("failed to reinitialize: %w", err)
	}

	if reached := vc.target.CatalogVersion(); reached < remote {
		vc.stuckRemote, vc.stuckLocal = remote, reached
		vc.logger.Warn("reload did not reach the announced catalog version, waiting for a newer announcement",
			logger.Int("local", reached),
			logger.Int("remote", remote))
	}
	return true, nil
}

func (vc *VersionChecker) fetch(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, vc.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := vc.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", vc.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, vc.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to read document: %w", err)
	}
	return version.ParseMeta(body)
}

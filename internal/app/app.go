package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/reel/internal/auth"
	"github.com/MrSnakeDoc/reel/internal/catalog"
	"github.com/MrSnakeDoc/reel/internal/config"
	"github.com/MrSnakeDoc/reel/internal/httpserver"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/scheduler"
	"github.com/MrSnakeDoc/reel/internal/session"
	"github.com/MrSnakeDoc/reel/internal/store"
	"github.com/MrSnakeDoc/reel/internal/utils"
	"github.com/MrSnakeDoc/reel/internal/version"
)

// saveTimeout bounds every write-back.
const saveTimeout = 5 * time.Second

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	backend *Backend
	session *session.Session
	server  *httpserver.Server
	checker *scheduler.VersionChecker
	sweeper *scheduler.PendingSweeper
}

// NewSession opens storage and runs the startup sequence. The caller owns
// the returned backend.
func NewSession(ctx context.Context, cfg *config.Config, log logger.Logger) (*session.Session, *Backend, error) {
	backend, err := OpenBackend(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	sess := session.New(session.Options{
		Adapter:         store.NewAdapter(backend),
		LoadCatalog:     func() (*catalog.Source, error) { return catalog.Load(cfg.CatalogFile) },
		DefaultIdentity: cfg.DefaultIdentity,
		SaveTimeout:     saveTimeout,
	}, log)

	if err := sess.Init(ctx); err != nil {
		utils.CloseLogged(backend, "storage", log)
		return nil, nil, fmt.Errorf("failed to initialize library: %w", err)
	}
	return sess, backend, nil
}

// New wires storage, the session, background jobs and the HTTP server.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	sess, backend, err := NewSession(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	var (
		checker        *scheduler.VersionChecker
		versionTrigger chan struct{}
	)
	if cfg.VersionURL != "" {
		versionTrigger = make(chan struct{}, 1)
		checker = scheduler.NewVersionChecker(
			cfg.VersionURL,
			sess,
			loggerClient,
			cfg.VersionCheckInterval,
			cfg.VersionCheckTimeout,
			versionTrigger,
		)
	} else {
		loggerClient.Info("version url not configured, version checks disabled")
	}

	sweeper := scheduler.NewPendingSweeper(sess, loggerClient, cfg.SweepInterval, cfg.PendingTimeout)

	gate := auth.NewGate(cfg.AdminSecret, cfg.DefaultIdentity)
	if !gate.Enabled() {
		loggerClient.Warn("REEL_ADMIN_SECRET is empty, admin actions are disabled")
	}

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		Session:        sess,
		Gate:           gate,
		Storage:        backend.Name,
		StoragePing:    backend.Ping,
		VersionTrigger: versionTrigger,
	}

	return &App{
		cfg:     cfg,
		logger:  loggerClient,
		backend: backend,
		session: sess,
		server:  httpserver.New(cfg, loggerClient, d),
		checker: checker,
		sweeper: sweeper,
	}, nil
}

// Run serves until ctx is cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting reel %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	if a.checker != nil {
		if err := a.checker.Start(ctx); err != nil {
			return fmt.Errorf("failed to start version checker: %w", err)
		}
		a.logger.Info("version checker started",
			logger.Duration("interval", a.cfg.VersionCheckInterval))
	}

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start pending sweeper: %w", err)
	}
	a.logger.Info("pending sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.checker != nil {
		a.checker.Stop()
	}
	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Warnf("failed to close %s storage: %v", a.backend.Name, err)
	} else {
		a.logger.Infof("✅ %s storage closed cleanly", a.backend.Name)
	}

	if runErr == nil {
		a.logger.Info("✅ reel stopped cleanly")
	}
	return runErr
}

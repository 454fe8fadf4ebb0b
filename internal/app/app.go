// Package app wires configuration into long-lived services and runs them.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/imgresolver/internal/api"
	"github.com/JakeFAU/imgresolver/internal/clock/system"
	"github.com/JakeFAU/imgresolver/internal/config"
	"github.com/JakeFAU/imgresolver/internal/dispatcher"
	collyfetcher "github.com/JakeFAU/imgresolver/internal/fetcher/colly"
	"github.com/JakeFAU/imgresolver/internal/hash/md5"
	"github.com/JakeFAU/imgresolver/internal/id/uuid"
	"github.com/JakeFAU/imgresolver/internal/metrics"
	"github.com/JakeFAU/imgresolver/internal/resolver"
	"github.com/JakeFAU/imgresolver/internal/rules"
	"github.com/JakeFAU/imgresolver/internal/storage"
	"github.com/JakeFAU/imgresolver/internal/strategy"
	"github.com/JakeFAU/imgresolver/internal/sweep"
)

const shutdownTimeout = 10 * time.Second

// Option overrides a collaborator, mainly for tests.
type Option func(*options)

type options struct {
	fetcher resolver.Fetcher
	clock   resolver.Clock
}

// WithFetcher replaces the Colly fetcher.
func WithFetcher(f resolver.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithClock replaces the system clock.
func WithClock(c resolver.Clock) Option {
	return func(o *options) { o.clock = c }
}

// App contains the application's dependencies.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	stores     *storage.Stores
	registry   *rules.Registry
	dispatcher *dispatcher.Dispatcher
	sweeper    *sweep.Sweeper
	apiServer  *api.Server
}

// New builds every service from cfg. The rule table is compiled here, so a
// malformed rule fails startup.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = system.New()
	}
	if o.fetcher == nil {
		o.fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent:     cfg.HTTP.UserAgent,
			RespectRobots: cfg.HTTP.RespectRobots,
			Timeout:       cfg.FetchTimeout(),
		})
	}
	metrics.Init()

	registry, err := rules.Compile(rules.Builtin(rules.APIKeys{
		Flickr:      cfg.APIKeys.Flickr,
		Mobypicture: cfg.APIKeys.Mobypicture,
	}))
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	stores, err := storage.Open(ctx, cfg.Store, logger.Named("storage"))
	if err != nil {
		return nil, err
	}

	pipeline, err := strategy.NewPipeline(strategy.Deps{
		Cache:     stores.Cache,
		Blacklist: stores.Blacklist,
		Fetcher:   o.fetcher,
		Hasher:    md5.New(),
		Clock:     o.clock,
		Logger:    logger.Named("strategy"),
		Timeout:   cfg.FetchTimeout(),
	})
	if err != nil {
		stores.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	dispatch, err := dispatcher.New(registry, strategy.ForKinds(pipeline), logger.Named("dispatcher"))
	if err != nil {
		stores.Close()
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}
	sweeper, err := sweep.New(stores.Blacklist, o.clock, cfg.BlacklistTTL(), cfg.SweepInterval(), logger.Named("sweep"))
	if err != nil {
		stores.Close()
		return nil, fmt.Errorf("build sweeper: %w", err)
	}

	logger.Info("application created",
		zap.Int("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
		zap.Int("rules", len(registry.Rules())),
		zap.Int("services", len(registry.ServiceNames())),
	)
	return &App{
		cfg:        cfg,
		logger:     logger,
		stores:     stores,
		registry:   registry,
		dispatcher: dispatch,
		sweeper:    sweeper,
		apiServer:  api.NewServer(dispatch, uuid.New(), cfg, logger.Named("api")),
	}, nil
}

// Dispatcher returns the resolution dispatcher.
func (a *App) Dispatcher() *dispatcher.Dispatcher { return a.dispatcher }

// Sweeper returns the blacklist sweeper.
func (a *App) Sweeper() *sweep.Sweeper { return a.sweeper }

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler { return a.apiServer.Handler() }

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Run serves HTTP and sweeps the blacklist until ctx is canceled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		a.logger.Info("blacklist sweeper started", zap.Duration("interval", a.cfg.SweepInterval()))
		a.sweeper.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}

// Close waits for pending async resolutions and releases the stores.
func (a *App) Close() {
	a.dispatcher.Wait()
	a.stores.Close()
	if err := a.logger.Sync(); err != nil {
		// Sync on stdout/stderr fails on some platforms; nothing to do.
		a.logger.Debug("logger sync failed", zap.Error(err))
	}
	a.logger.Info("shutdown complete")
}

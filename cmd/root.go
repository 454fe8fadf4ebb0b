// Package cmd defines the CLI commands for the imgresolver executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/imgresolver/internal/app"
	"github.com/JakeFAU/imgresolver/internal/config"
	"github.com/JakeFAU/imgresolver/internal/logging"
)

// appKeyType is the key for storing the app holder in the context.
type appKeyType string

const appKey appKeyType = "app"

// appHolder carries the App built by the pre-run hook back to run, which
// closes it whether or not the command failed.
type appHolder struct {
	app    App
	closed bool
}

func (h *appHolder) close() {
	if h.app == nil || h.closed {
		return
	}
	h.closed = true
	h.app.Close()
}

// Resolver is the part of the dispatcher the commands use.
type Resolver interface {
	ResolveAsync(ctx context.Context, url string, onSuccess func(imageURL, service string), onFailure func(reason string))
	Wait()
	ServiceNames() []string
}

// Sweeper expires blacklist entries.
type Sweeper interface {
	SweepOnce(ctx context.Context) (int64, error)
}

// App defines the application interface that commands use, so tests can
// inject a fake.
type App interface {
	Close()
	Logger() *zap.Logger
	Run(ctx context.Context) error
	Resolver() Resolver
	Sweeper() Sweeper
}

type appAdapter struct {
	*app.App
}

func (a appAdapter) Resolver() Resolver { return a.Dispatcher() }

func (a appAdapter) Sweeper() Sweeper { return a.App.Sweeper() }

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(ctx context.Context, cfgPath string) (App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return appAdapter{App: a}, nil
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "imgresolver",
		Short: "Resolves photo-sharing page URLs to their raw image URLs.",
		Long: `imgresolver maps short links and photo pages from photo-sharing services
to the URL of the underlying image, either by rewriting the link or by
fetching the service's page or API and extracting the image location.`,
		SilenceUsage: true,

		// Build the application once for whichever subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			holder, ok := cmd.Context().Value(appKey).(*appHolder)
			if !ok {
				holder = &appHolder{}
				cmd.SetContext(context.WithValue(cmd.Context(), appKey, holder))
			}
			appInstance, err := newApp(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			holder.app = appInstance
			return nil
		},

		// Not reached when RunE fails; run closes the app in that case.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if holder, ok := cmd.Context().Value(appKey).(*appHolder); ok {
				holder.close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, JSON or TOML)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newServicesCmd())
	cmd.AddCommand(newSweepCmd())
	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	holder, ok := ctx.Value(appKey).(*appHolder)
	if !ok || holder.app == nil {
		return nil, errors.New("application not initialized")
	}
	return holder.app, nil
}

// run executes root and always releases the App it built.
func run(ctx context.Context, root *cobra.Command) error {
	holder := &appHolder{}
	defer holder.close()
	return root.ExecuteContext(context.WithValue(ctx, appKey, holder))
}

// Execute is the main entry point.
func Execute() {
	if err := run(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

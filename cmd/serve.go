package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/keycolor/internal/api"
	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/metrics/exporters"
	"github.com/smazurov/keycolor/internal/systemd"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// CreateServeCmd creates the serve command.
func CreateServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serves discovery, apply, preferences and the dependency check over HTTP, ` +
			`with an SSE event stream at /api/events, OpenAPI docs at /docs and Prometheus metrics at /metrics.`,
		Args: cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, opts *Options) {
			InitLogging(opts, true)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, opts); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				os.Exit(1)
			}
		}),
	}
}

// NewServer builds the API server for app. services may be nil when the
// system D-Bus is unreachable.
func NewServer(app *App, services api.ServiceStatus) *api.Server {
	apiOpts := &api.Options{
		AuthUsername: app.Options.AuthUsername,
		AuthPassword: app.Options.AuthPassword,
		CORSOrigins:  app.Options.CORSOrigins(),
		Workflow:     app.Controller,
		Preferences:  app.Prefs,
		Dependency:   app.Bootstrap,
		Services:     services,
		EventBus:     app.Bus,
	}
	if app.Options.ServerMetrics {
		apiOpts.PrometheusHandler = exporters.HTTPHandler()
	}
	return api.NewServer(apiOpts)
}

// serve runs the API server until ctx ends.
func serve(ctx context.Context, opts *Options) error {
	app, err := NewApp(opts, Deps{})
	if err != nil {
		return err
	}
	logger := app.Logger

	var services api.ServiceStatus
	if manager, connErr := systemd.NewManager(ctx); connErr != nil {
		logger.Warn("systemd D-Bus unavailable, service status disabled", "error", connErr)
	} else {
		defer manager.Close()
		services = manager
	}

	server := NewServer(app, services)

	stopLogs := events.ForwardLogs(app.Bus)
	defer stopLogs()

	sseExporter := exporters.NewSSEExporter(app.Bus)
	sseExporter.Start(ctx)
	defer sseExporter.Stop()

	stopWatch, err := app.Prefs.Watch(logging.GetLogger("prefs"), server.ReloadPreferences)
	if err != nil {
		logger.Warn("Failed to watch preference file", "path", app.Prefs.Path(), "error", err)
	} else {
		defer func() {
			if stopErr := stopWatch(); stopErr != nil {
				logger.Warn("Error stopping preference watcher", "error", stopErr)
			}
		}()
	}

	if !app.Prefs.Get().SkipDependencyCheck {
		// The result is logged and published for SSE clients
		_, _ = app.Bootstrap.Check(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(opts.ServerListen)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", "error", err)
	}
	return nil
}

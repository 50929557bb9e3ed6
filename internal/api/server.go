// Package api serves the color workflow over HTTP with huma: discovery,
// apply, preferences, the dependency check and an SSE event stream.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/keycolor/internal/api/models"
	"github.com/smazurov/keycolor/internal/bootstrap"
	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/prefs"
	"github.com/smazurov/keycolor/internal/session"
	"github.com/smazurov/keycolor/internal/version"
)

// Workflow is the discovery and apply surface of session.Controller.
type Workflow interface {
	Policy() session.Policy
	DiscoverDevices(ctx context.Context, generation uint64, remembered string) (session.DeviceList, error)
	DiscoverLeds(ctx context.Context, device, remembered string) (session.LedList, error)
	ApplyColor(ctx context.Context, sel session.Selection) (session.ApplyResult, error)
}

// Preferences is the part of prefs.Store the API edits.
type Preferences interface {
	Get() prefs.Record
	UpdateSettings(settings prefs.Settings) (prefs.Record, error)
	Reset() (prefs.Record, error)
}

// DependencyChecker runs the device tool version probe.
type DependencyChecker interface {
	Check(ctx context.Context) (bootstrap.Status, error)
}

// ServiceStatus reports a systemd unit's ActiveState.
type ServiceStatus interface {
	GetServiceStatus(ctx context.Context, name string) (string, error)
}

// Options wires the server to the application.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	CORSOrigins       []string
	Workflow          Workflow
	Preferences       Preferences
	Dependency        DependencyChecker
	Services          ServiceStatus // optional
	EventBus          *events.Bus
	PrometheusHandler http.Handler // optional
}

// Server is the huma API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	mu         sync.Mutex
	httpServer *http.Server
	options    *Options
	state      *session.State
	eventBus   *events.Bus
	logger     *slog.Logger
}

// NewServer creates the API server using Go 1.22+ native routing.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	if len(opts.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = opts.CORSOrigins
	}
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("keycolor API", version.Version)
	config.Info.Description = "Set keyboard LED colors through ratbagctl"
	// Empty servers list will make OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	rec := opts.Preferences.Get()
	server := &Server{
		api:      api,
		mux:      mux,
		options:  opts,
		state:    session.NewState(session.Selection{Device: rec.LastDevice, Led: rec.LastLed, Color: rec.LastColor}),
		eventBus: opts.EventBus,
		logger:   logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	// Registered on the mux directly so it bypasses auth
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()
	return server
}

// GetMux returns the underlying HTTP ServeMux for additional setup
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start serves HTTP on addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting keycolor API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()
	return srv.ListenAndServe()
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ReloadPreferences adopts a selection edited outside the API as the
// session's remembered defaults.
func (s *Server) ReloadPreferences(rec prefs.Record) {
	if rec.LastDevice != s.state.Selection().Device {
		s.state.SelectDevice(rec.LastDevice)
	}
	s.state.SelectLed(rec.LastLed)
	s.state.SetColor(rec.LastColor)
	s.publish(events.PreferencesChangedEvent{Source: "file", Timestamp: time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"system"},
		Security:    []map[string][]string{}, // Empty security = no auth required
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		return &models.VersionResponse{Body: version.Get()}, nil
	})

	s.registerDeviceRoutes()
	s.registerColorRoutes()
	s.registerPreferenceRoutes()
	s.registerDependencyRoutes()
	s.registerSSERoutes()
	s.registerMetricsRoutes()
	s.registerLogRoutes()
}

// withAuth returns security requirement for basic auth
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}

func (s *Server) publish(ev events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ev)
	}
}

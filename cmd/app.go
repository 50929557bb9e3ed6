// Package cmd holds the keycolor subcommands and the wiring they share.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/smazurov/keycolor/internal/bootstrap"
	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/prefs"
	"github.com/smazurov/keycolor/internal/process"
	"github.com/smazurov/keycolor/internal/ratbag"
	"github.com/smazurov/keycolor/internal/session"
)

// Deps are the process-level collaborators. Zero values select the real
// implementations.
type Deps struct {
	Runner   process.Runner
	LookPath prefs.LookPathFunc
	Connect  bootstrap.ConnectFunc
}

// App is the component graph every shell is built on.
type App struct {
	Options    *Options
	Logger     *slog.Logger
	Tool       *ratbag.Client
	Prefs      *prefs.Store
	Bus        *events.Bus
	Controller *session.Controller
	Bootstrap  *bootstrap.Bootstrapper
}

// InitLogging initializes logging from opts. Loggers handed out earlier
// keep their handlers, so this runs before NewApp.
func InitLogging(opts *Options, stdout bool) {
	cfg := opts.LoggingConfig()
	cfg.DisableStdout = !stdout
	logging.Initialize(cfg)
}

// NewApp builds the component graph and loads the preference file.
func NewApp(opts *Options, deps Deps) (*App, error) {
	logger := logging.GetLogger("main")

	policy, err := session.NewPolicy(opts.ApplyMode, opts.ApplyProfile)
	if err != nil {
		return nil, fmt.Errorf("invalid apply settings: %w", err)
	}

	runner := deps.Runner
	if runner == nil {
		runner = process.NewExec(logging.GetLogger("process"))
	}

	var storeOpts []prefs.Option
	if deps.LookPath != nil {
		storeOpts = append(storeOpts, prefs.WithLookPath(deps.LookPath))
	}
	store := prefs.NewStore(opts.PrefsPath, logging.GetLogger("prefs"), storeOpts...)
	// The store logs load failures and falls back to defaults
	_, _ = store.Load()

	bus := events.New()
	tool := ratbag.NewClient(opts.Tool, runner, logging.GetLogger("ratbag"))

	controller := session.NewController(tool, policy, logging.GetLogger("session"),
		session.WithModelMarker(opts.ModelMarker),
		session.WithRecorder(store),
		session.WithPublisher(bus),
	)

	bootOpts := []bootstrap.Option{bootstrap.WithPublisher(bus)}
	if deps.Connect != nil {
		bootOpts = append(bootOpts, bootstrap.WithServiceConnector(deps.Connect))
	}
	boot := bootstrap.New(tool, runner, logging.GetLogger("bootstrap"), bootOpts...)

	return &App{
		Options:    opts,
		Logger:     logger,
		Tool:       tool,
		Prefs:      store,
		Bus:        bus,
		Controller: controller,
		Bootstrap:  boot,
	}, nil
}

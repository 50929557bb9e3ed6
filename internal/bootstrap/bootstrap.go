// Package bootstrap checks that the device tool is installed and, on request,
// installs it with the configured package manager template and brings up the
// ratbagd service.
//
// Confirmation is the caller's job: the terminal UI shows a modal and the CLI
// asks y/N (or takes --yes) before Install is called.
package bootstrap

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/metrics"
	"github.com/smazurov/keycolor/internal/prefs"
	"github.com/smazurov/keycolor/internal/process"
	"github.com/smazurov/keycolor/internal/ratbag"
	"github.com/smazurov/keycolor/internal/systemd"
)

// VersionProber queries the device tool version.
type VersionProber interface {
	Tool() string
	Version(ctx context.Context) (string, error)
}

// ServiceController starts and enables system services.
type ServiceController interface {
	StartService(ctx context.Context, name string) error
	EnableService(ctx context.Context, name string) error
	Close()
}

// ConnectFunc opens a ServiceController on demand.
type ConnectFunc func(ctx context.Context) (ServiceController, error)

// Publisher receives dependency status events.
type Publisher interface {
	Publish(ev events.Event)
}

// Status is the outcome of a dependency check.
type Status struct {
	Tool      string `json:"tool" example:"ratbagctl" doc:"Device tool name"`
	Installed bool   `json:"installed" doc:"Whether the tool answered its version query"`
	Version   string `json:"version,omitempty" example:"0.17" doc:"Version output"`
}

// Plan is the install command derived from the preference record.
type Plan struct {
	Argv         []string
	StartService bool
}

// String renders the plan's command for confirmation prompts.
func (p Plan) String() string {
	return process.Format(p.Argv)
}

// Bootstrapper runs dependency checks and installs.
type Bootstrapper struct {
	prober    VersionProber
	runner    process.Runner
	connect   ConnectFunc
	publisher Publisher
	logger    logging.Logger
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithServiceConnector replaces the systemd D-Bus connection.
func WithServiceConnector(connect ConnectFunc) Option {
	return func(b *Bootstrapper) {
		b.connect = connect
	}
}

// WithPublisher publishes a DependencyStatusEvent after every check.
func WithPublisher(p Publisher) Option {
	return func(b *Bootstrapper) {
		b.publisher = p
	}
}

// New creates a Bootstrapper. Services are reached over the system D-Bus
// unless WithServiceConnector is given.
func New(prober VersionProber, runner process.Runner, logger logging.Logger, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		prober: prober,
		runner: runner,
		logger: logger,
		connect: func(ctx context.Context) (ServiceController, error) {
			return systemd.NewManager(ctx)
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Check runs the tool's version query. A missing tool is reported as
// Installed=false with a nil error; any other failure is returned.
func (b *Bootstrapper) Check(ctx context.Context) (Status, error) {
	status := Status{Tool: b.prober.Tool()}

	version, err := b.prober.Version(ctx)
	switch {
	case err == nil:
		status.Installed = true
		status.Version = version
		b.logger.Info("Dependencies are installed", "tool", status.Tool, "version", version)
	case ratbag.IsToolNotFound(err):
		b.logger.Warn("Device tool is not installed", "tool", status.Tool)
		err = nil
	default:
		err = newError(ErrCodeCheckFailed, "error checking dependencies", err)
		b.logger.Warn("Dependency check failed", "error", err)
	}

	metrics.SetDependencyInstalled(status.Installed)
	b.publish(status, err)
	return status, err
}

// PlanInstall splits the install template without a shell and appends the
// package name.
func PlanInstall(rec prefs.Record) (Plan, error) {
	argv, err := process.Split(rec.InstallCommand)
	if err != nil {
		return Plan{}, newError(ErrCodeInstallFailed, "invalid install command", err)
	}
	if len(argv) == 0 {
		return Plan{}, newError(ErrCodeInstallFailed, "install command is empty", nil)
	}
	if pkg := strings.TrimSpace(rec.PackageName); pkg != "" {
		argv = append(argv, pkg)
	}
	return Plan{Argv: argv, StartService: rec.HasSystemd}, nil
}

// Install runs the planned install command, then starts and enables
// ratbagd when the record says the host uses systemd, and finally checks
// that the tool now answers. Nothing is retried.
func (b *Bootstrapper) Install(ctx context.Context, rec prefs.Record) (Status, error) {
	plan, err := PlanInstall(rec)
	if err != nil {
		return Status{Tool: b.prober.Tool()}, err
	}

	b.logger.Info("Installing dependencies", "command", plan.String())
	start := time.Now()
	res, err := b.runner.Run(ctx, plan.Argv[0], plan.Argv[1:]...)
	if err != nil {
		return Status{Tool: b.prober.Tool()}, installError(err)
	}
	b.logger.Info("Install command finished", "duration", time.Since(start))

	if plan.StartService {
		if err := b.startService(ctx); err != nil {
			return Status{Tool: b.prober.Tool()}, err
		}
	}

	status, err := b.Check(ctx)
	if err != nil {
		return status, err
	}
	if !status.Installed {
		msg := status.Tool + " is still not available after install"
		if out := strings.TrimSpace(res.Stdout); out != "" {
			msg += ": " + out
		}
		return status, newError(ErrCodeInstallFailed, msg, nil)
	}
	return status, nil
}

func (b *Bootstrapper) startService(ctx context.Context) error {
	services, err := b.connect(ctx)
	if err != nil {
		return newError(ErrCodeServiceFailed, "failed to connect to systemd", err)
	}
	defer services.Close()

	if err := services.StartService(ctx, systemd.RatbagdUnit); err != nil {
		return newError(ErrCodeServiceFailed, "failed to start "+systemd.RatbagdUnit, err)
	}
	if err := services.EnableService(ctx, systemd.RatbagdUnit); err != nil {
		return newError(ErrCodeServiceFailed, "failed to enable "+systemd.RatbagdUnit, err)
	}
	b.logger.Info("Service started and enabled", "unit", systemd.RatbagdUnit)
	return nil
}

// installError surfaces the package manager's stderr verbatim.
func installError(err error) error {
	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(exitErr.Stderr); msg != "" {
			return newError(ErrCodeInstallFailed, "failed to install dependencies: "+msg, nil)
		}
	}
	return newError(ErrCodeInstallFailed, "failed to install dependencies", err)
}

func (b *Bootstrapper) publish(status Status, err error) {
	if b.publisher == nil {
		return
	}
	ev := events.DependencyStatusEvent{
		Installed: status.Installed,
		Version:   status.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	b.publisher.Publish(ev)
}

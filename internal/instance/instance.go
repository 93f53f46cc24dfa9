// Package instance manages the single application instance rig drives
// during test runs. A Manager owns at most one running instance at a time:
// Acquire hands back the held instance when it is still usable and launches
// a replacement when it is not, AcquireFresh always replaces, and Close
// retires whatever is held.
//
// The in-memory reference is the only source of truth. Nothing is recovered
// from disk across rig processes; the advisory state file exists for humans
// and for `rig status`, never for reuse decisions.
package instance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tessro/rig/internal/config"
	"github.com/tessro/rig/internal/driver"
	"github.com/tessro/rig/internal/locate"
	"github.com/tessro/rig/internal/logging"
	"github.com/tessro/rig/internal/proc"
	"github.com/tessro/rig/internal/statefile"
)

// Launch errors.
var (
	// ErrReadyTimeout indicates the app never answered on its automation
	// endpoint before the configured deadline.
	ErrReadyTimeout = errors.New("instance did not become ready before timeout")

	// ErrEarlyExit indicates the app process exited while rig was still
	// waiting for the automation endpoint to come up.
	ErrEarlyExit = errors.New("instance exited before becoming ready")
)

// Locator resolves a release version to an installed executable.
type Locator interface {
	Resolve(version string) (locate.Install, error)
}

// Runner spawns and retires operating system processes on behalf of the
// Manager. The production implementation lives in internal/proc.
type Runner interface {
	// Run launches exe with args and waits for it to exit.
	Run(ctx context.Context, exe string, args []string) error

	// Start launches exe with args as a long-running process. Output is
	// captured to logPath when non-empty.
	Start(exe string, args []string, logPath string) (Proc, error)

	// KillByName terminates any processes matching the given names and
	// returns how many were killed. Absence of a name is not an error.
	KillByName(names []string) int
}

// Proc is a handle on a spawned process.
type Proc interface {
	PID() int
	Done() <-chan struct{}
	Kill() error
	StopWithTimeout(timeout time.Duration) error
}

// Driver speaks to the app's local automation endpoint.
type Driver interface {
	Ping(ctx context.Context) error
	CloseWork(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Config carries everything a Manager needs to launch and retire instances.
// Zero values fall back to the defaults in internal/config; the seam fields
// (Locator, Runner, NewDriver) default to the production implementations.
type Config struct {
	// Version selects which installed release to launch.
	Version string

	// Args are passed to the app executable on the real launch.
	Args []string

	// Endpoint is the base URL of the app's automation endpoint.
	Endpoint string

	// Maintenance lists argument vectors run to completion against the app
	// executable, in order, before every real launch.
	Maintenance [][]string

	// StrayProcesses names helper processes killed before every launch.
	StrayProcesses []string

	ReadyTimeout time.Duration
	PollInterval time.Duration
	ProbeTimeout time.Duration
	StopGrace    time.Duration

	// AppLogDir is where per-launch app output is written. Empty disables
	// output capture.
	AppLogDir string

	// State, when set, records the held instance to the advisory state
	// file after each launch. The Manager only ever writes it.
	State *statefile.Store

	Locator   Locator
	Runner    Runner
	NewDriver func(endpoint string) Driver

	Logger *slog.Logger
}

// New creates a Manager. Only locator construction can fail; everything
// else defaults in place.
func New(cfg Config) (*Manager, error) {
	if cfg.Version == "" {
		cfg.Version = config.DefaultVersion
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = config.DefaultEndpoint
	}
	if cfg.Maintenance == nil {
		cfg.Maintenance = config.DefaultMaintenance
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = config.DefaultReadyTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = config.DefaultPollInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = config.DefaultProbeTimeout
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = config.DefaultStopGrace
	}
	if cfg.Runner == nil {
		cfg.Runner = procRunner{r: proc.NewRunner()}
	}
	if cfg.NewDriver == nil {
		cfg.NewDriver = func(endpoint string) Driver {
			return driver.New(endpoint)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Component("instance")
	}
	if cfg.Locator == nil {
		loc, err := locate.New()
		if err != nil {
			return nil, err
		}
		cfg.Locator = loc
	}

	return &Manager{cfg: cfg, log: cfg.Logger}, nil
}

// procRunner adapts *proc.Runner to the Runner seam. Needed because
// proc.Runner.Start returns the concrete *proc.Process type.
type procRunner struct {
	r *proc.Runner
}

func (p procRunner) Run(ctx context.Context, exe string, args []string) error {
	return p.r.Run(ctx, exe, args)
}

func (p procRunner) Start(exe string, args []string, logPath string) (Proc, error) {
	pr, err := p.r.Start(exe, args, logPath)
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (p procRunner) KillByName(names []string) int {
	return p.r.KillByName(names)
}

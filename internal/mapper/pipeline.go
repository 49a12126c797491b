package mapper

import (
	"fmt"
	"os"
	"time"

	"github.com/wrfdata/wrf-exporter/internal/config"
	"github.com/wrfdata/wrf-exporter/internal/inject"
	"github.com/wrfdata/wrf-exporter/internal/logging"
	"github.com/wrfdata/wrf-exporter/internal/procutil"
)

// Status says how the pipeline arrived at its mapping file.
type Status int

const (
	// StatusCached means the destination already existed and force was off;
	// nothing was launched or injected.
	StatusCached Status = iota
	// StatusFresh means injection reported success and verification agreed.
	StatusFresh
	// StatusRecovered means injection reported failure but the artifact was
	// on disk anyway. Expected when running without elevated privileges.
	StatusRecovered
)

func (s Status) String() string {
	switch s {
	case StatusCached:
		return "cached"
	case StatusFresh:
		return "fresh"
	case StatusRecovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Result is the pipeline's terminal value on success.
type Result struct {
	Status Status
	Path   string
}

// finder locates the launched game in the process table and waits out its
// settle window.
type finder interface {
	Find(name string) (int32, error)
	AwaitReady(pid int32, name string, settle time.Duration) error
}

// terminator shuts the game down, by handle first and by name as fallback.
type terminator interface {
	Terminate(target *procutil.Target, name string) bool
}

// launchFunc starts the game executable.
type launchFunc func(log *logging.Logger, path string) (*procutil.Target, error)

// Pipeline orchestrates the full mapping-file extraction: launch the game,
// wait until it is safe to inject, inject the dumper module, terminate the
// game, and recover the mapping file from the dumper output directory.
//
// The injection outcome is treated as a hint only. On a reported failure the
// pipeline still terminates the game and inspects the output directory; a
// well-formed bundle there overrides the report.
type Pipeline struct {
	cfg      config.Config
	log      *logging.Logger
	injector inject.Injector
	finder   finder
	term     terminator
	launch   launchFunc

	// Settle is the post-appearance initialization window.
	Settle time.Duration
	// TerminateGrace runs after the injector returns and before the game is
	// terminated, so a slow injection can finish writing its output.
	TerminateGrace time.Duration
}

// New creates a Pipeline wired to the real process table and injector.
func New(cfg config.Config, log *logging.Logger, injector inject.Injector) *Pipeline {
	waiter := procutil.NewWaiter(log)
	waiter.Timeout = time.Duration(cfg.Mapper.FindTimeoutSeconds) * time.Second

	return &Pipeline{
		cfg:            cfg,
		log:            log,
		injector:       injector,
		finder:         waiter,
		term:           procutil.NewTerminator(log),
		launch:         procutil.Launch,
		Settle:         time.Duration(cfg.Mapper.SettleSeconds) * time.Second,
		TerminateGrace: 10 * time.Second,
	}
}

// Run executes the pipeline and returns the final mapping-file path. Every
// exit path attempts termination of the launched game; termination failures
// are logged and never mask the pipeline error.
func (p *Pipeline) Run() (Result, error) {
	dst := p.cfg.Mapper.Destination

	// Cached short-circuit, evaluated before anything else runs.
	if _, err := os.Stat(dst); err == nil && !p.cfg.Mapper.Force {
		p.log.Info(fmt.Sprintf("Mapping file already exists at %s and force is off, skipping extraction", dst))
		return Result{Status: StatusCached, Path: dst}, nil
	}

	if err := p.cfg.ValidateMapper(); err != nil {
		return Result{}, err
	}

	modulePath := p.cfg.Mapper.ModulePath
	if _, err := os.Stat(modulePath); err != nil {
		return Result{}, &PreflightError{What: "dumper module", Path: modulePath}
	}
	p.log.Info(fmt.Sprintf("Dumper module confirmed: %s", modulePath))

	exePath := p.cfg.GameExecutablePath()
	if _, err := os.Stat(exePath); err != nil {
		return Result{}, &PreflightError{What: "game executable", Path: exePath}
	}

	if procutil.Elevated() {
		p.log.Info("Running with administrator privileges")
	} else {
		p.log.Warn("Not running as administrator - the injector will likely misreport failure; verification will decide")
	}

	outDir := p.cfg.Mapper.OutputDir
	if err := p.prepareOutputDir(outDir); err != nil {
		return Result{}, err
	}

	p.log.Info("Starting game process...")
	target, err := p.launch(p.log, exePath)
	if err != nil {
		return Result{}, err
	}

	name := p.cfg.GameProcessName()
	terminated := false
	defer func() {
		// Best-effort cleanup for early error returns.
		if !terminated {
			p.term.Terminate(target, name)
		}
	}()

	p.log.Info(fmt.Sprintf("Waiting for %s to be ready for injection...", name))
	pid, err := p.finder.Find(name)
	if err != nil {
		return Result{}, err
	}
	if err := p.finder.AwaitReady(pid, name, p.Settle); err != nil {
		return Result{}, err
	}

	outcome := p.injector.Inject(name, modulePath)
	p.log.Info(fmt.Sprintf("Injection outcome: %s", outcome))

	// The dumper keeps writing after the injector returns. Give it time
	// before pulling the game down.
	p.log.Info(fmt.Sprintf("Waiting %s before terminating the game in case the dump is still being written...", p.TerminateGrace))
	time.Sleep(p.TerminateGrace)
	p.term.Terminate(target, name)
	terminated = true

	if outcome == inject.ReportedFailure {
		p.log.Info("Injection reported failure, but that report is unreliable. Checking for the mapping file...")
		mappingPath, lerr := Locate(outDir)
		if lerr != nil {
			p.log.Debug(fmt.Sprintf("Verification after reported failure found nothing: %v", lerr))
			return Result{}, &InjectionError{ProcessName: name, ModulePath: modulePath}
		}
		p.log.Info(fmt.Sprintf("Mapping file was produced despite the failure report: %s", mappingPath))

		published, perr := Publish(mappingPath, dst)
		if perr != nil {
			return Result{}, perr
		}
		return Result{Status: StatusRecovered, Path: published}, nil
	}

	mappingPath, err := Locate(outDir)
	if err != nil {
		return Result{}, err
	}
	p.log.Info(fmt.Sprintf("Mapping file successfully created: %s", mappingPath))

	published, err := Publish(mappingPath, dst)
	if err != nil {
		return Result{}, err
	}
	p.log.Info(fmt.Sprintf("Mapping file copied from %s to %s", mappingPath, published))

	return Result{Status: StatusFresh, Path: published}, nil
}

// prepareOutputDir makes sure the dumper output directory exists and is
// empty. The directory itself is kept; only its contents go.
func (p *Pipeline) prepareOutputDir(outDir string) error {
	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		// Mkdir, not MkdirAll: a missing parent is a precondition error the
		// operator needs to see, not something to paper over.
		if err := os.Mkdir(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create dumper output directory %s: %w", outDir, err)
		}
		return nil
	}

	p.log.Info(fmt.Sprintf("Clearing dumper output directory: %s", outDir))
	if err := clearDir(outDir); err != nil {
		return fmt.Errorf("failed to clear dumper output directory %s: %w", outDir, err)
	}
	return nil
}

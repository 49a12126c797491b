// Package inject wraps the black-box module-injection capability. The
// outcome it reports is a hint, not ground truth: injection is known to
// succeed while reporting failure, particularly without elevated privileges.
// Callers must verify the filesystem side effects instead of trusting it.
package inject

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/wrfdata/wrf-exporter/internal/logging"
)

// Outcome is the injection mechanism's own success/failure report.
type Outcome int

const (
	ReportedFailure Outcome = iota
	ReportedSuccess
)

func (o Outcome) String() string {
	if o == ReportedSuccess {
		return "reported-success"
	}
	return "reported-failure"
}

// Injector loads a module into a running process identified by name.
type Injector interface {
	Inject(processName, modulePath string) Outcome
}

// injectTimeout bounds a single injector invocation. No retries: a hung
// injector is as terminal as a failed one.
const injectTimeout = 2 * time.Minute

// CommandInjector shells out to an external injector executable. Exit code
// zero is a reported success, anything else a reported failure.
type CommandInjector struct {
	log *logging.Logger

	// Path to the injector executable.
	Path string
}

// NewCommandInjector creates an injector backed by the executable at path.
func NewCommandInjector(log *logging.Logger, path string) *CommandInjector {
	return &CommandInjector{log: log, Path: path}
}

// Inject runs the injector against the named process. Pure pass-through; the
// orchestrator decides what the outcome actually means.
func (c *CommandInjector) Inject(processName, modulePath string) Outcome {
	cmd := exec.Command(c.Path, "--process", processName, "--module", modulePath)

	c.log.Debug(fmt.Sprintf("Running injector: %s --process %s --module %s", c.Path, processName, modulePath))

	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		c.log.Error(fmt.Sprintf("Injector failed to start: %v", err))
		return ReportedFailure
	}
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			c.log.Warn(fmt.Sprintf("Injector reported failure: %v", err))
			return ReportedFailure
		}
	case <-time.After(injectTimeout):
		cmd.Process.Kill()
		c.log.Warn(fmt.Sprintf("Injector timed out after %s", injectTimeout))
		return ReportedFailure
	}

	c.log.Info("Injector reported success")
	return ReportedSuccess
}

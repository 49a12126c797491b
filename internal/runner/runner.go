// Package runner executes collaborator executables (DepotDownloader,
// BatchExport) and streams their output into the pipeline log.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/wrfdata/wrf-exporter/internal/logging"
)

// DefaultTimeout bounds a single collaborator run. Game downloads are slow;
// an hour is the original tool's ceiling.
const DefaultTimeout = time.Hour

// Runner runs an external command to completion, logging its combined
// output line by line.
type Runner struct {
	log *logging.Logger

	// Timeout bounds the run; zero means DefaultTimeout.
	Timeout time.Duration
}

// New creates a Runner.
func New(log *logging.Logger) *Runner {
	return &Runner{log: log, Timeout: DefaultTimeout}
}

// Run executes command with args, blocking until it exits. The name tags
// every logged output line. A non-zero exit code or a timeout is an error.
func (r *Runner) Run(ctx context.Context, name string, command string, args ...string) error {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to %s output: %w", name, err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s process: %w", name, err)
	}
	r.log.Info(fmt.Sprintf("Started process %s with PID %d", name, cmd.Process.Pid))

	r.streamOutput(name, stdout)

	err = cmd.Wait()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("process %s timed out after %s", name, timeout)
	}
	if err != nil {
		return fmt.Errorf("process %s exited with error: %w", name, err)
	}
	return nil
}

// streamOutput logs the command's combined output line by line until the
// reader is exhausted or the scanner fails.
func (r *Runner) streamOutput(name string, rd io.Reader) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			r.log.Debug(fmt.Sprintf("[process: %s] %s", name, line))
		}
	}
	if err := scanner.Err(); err != nil {
		// The process keeps running after a streaming failure (oversized
		// line, read error); note the gap instead of failing the run.
		r.log.Warn(fmt.Sprintf("Output streaming of %s stopped early, further output is lost: %v", name, err))
	}
}

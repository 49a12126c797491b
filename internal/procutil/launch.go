package procutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/wrfdata/wrf-exporter/internal/logging"
)

// Target is a launched external process. The handle is owned exclusively by
// the component that launched it; termination through the handle is
// authoritative, name-based lookup is the fallback.
type Target struct {
	PID  int32
	Name string

	cmd  *exec.Cmd
	done chan error
}

// Exited reports whether the process has been reaped.
func (t *Target) Exited() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// WaitExit blocks until the process exits or the timeout elapses.
func (t *Target) WaitExit(timeout time.Duration) bool {
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// launchGrace is how long a fresh process gets to prove it did not
// immediately crash.
const launchGrace = 2 * time.Second

// Launch starts the executable at path with its normal window behavior and
// verifies it survives the immediate post-launch grace window.
func Launch(log *logging.Logger, path string) (*Target, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LaunchError{Path: path, Err: err}
	}

	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Path: path, Err: err}
	}

	t := &Target{
		PID:  int32(cmd.Process.Pid),
		Name: filepath.Base(path),
		cmd:  cmd,
		done: make(chan error, 1),
	}

	// Reap in the background so the exit status is observable without
	// blocking the pipeline.
	go func() {
		t.done <- cmd.Wait()
		close(t.done)
	}()

	log.Info(fmt.Sprintf("Game process started with PID: %d", t.PID))

	time.Sleep(launchGrace)
	if t.Exited() {
		return nil, &LaunchError{Path: path}
	}

	return t, nil
}

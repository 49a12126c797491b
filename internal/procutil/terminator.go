package procutil

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/wrfdata/wrf-exporter/internal/logging"
)

// Terminator shuts down a target process: first through the launch handle
// (graceful request, then forced kill), then by process-table name if no
// handle is available or the handle path fails. Calling it on an
// already-exited process is a no-op success.
type Terminator struct {
	log *logging.Logger

	// GracefulWait is how long a graceful termination request gets before
	// the kill is forced.
	GracefulWait time.Duration
}

// NewTerminator creates a Terminator with the stock 10s graceful wait.
func NewTerminator(log *logging.Logger) *Terminator {
	return &Terminator{
		log:          log,
		GracefulWait: 10 * time.Second,
	}
}

// Terminate stops the target. The handle on target is tried first; if that
// fails, or target is nil, every table row matching name is killed. Returns
// true when the process is known to be down.
func (t *Terminator) Terminate(target *Target, name string) bool {
	if target != nil {
		if target.Exited() {
			t.log.Debug(fmt.Sprintf("Process %s already exited, nothing to terminate", name))
			return true
		}
		if t.terminateHandle(target) {
			return true
		}
		t.log.Warn(fmt.Sprintf("Handle-based termination of %s failed, falling back to process name", name))
	}
	return t.TerminateByName(name)
}

// terminateHandle requests graceful termination through the launch handle
// and forces a kill if the process does not exit in time.
func (t *Terminator) terminateHandle(target *Target) bool {
	proc, err := process.NewProcess(target.PID)
	if err == nil {
		// Graceful request: SIGTERM where the platform has one, a plain
		// terminate on Windows.
		if err := proc.Terminate(); err == nil {
			if target.WaitExit(t.GracefulWait) {
				t.log.Info(fmt.Sprintf("Terminated process %s (PID: %d)", target.Name, target.PID))
				return true
			}
		}
	}

	if target.cmd == nil || target.cmd.Process == nil {
		return false
	}
	if err := target.cmd.Process.Kill(); err != nil {
		t.log.Error(fmt.Sprintf("Failed to terminate process %s (PID %d): %v", target.Name, target.PID, err))
		return false
	}
	target.WaitExit(t.GracefulWait)
	t.log.Info(fmt.Sprintf("Force killed process %s (PID: %d)", target.Name, target.PID))
	return true
}

// TerminateByName kills every process-table row matching name. Returns true
// if at least one match was killed.
func (t *Terminator) TerminateByName(name string) bool {
	procs, err := process.Processes()
	if err != nil {
		t.log.Warn(fmt.Sprintf("Failed to list processes while terminating %s: %v", name, err))
		return false
	}

	killed := 0
	for _, p := range procs {
		row, err := p.Name()
		if err != nil || !MatchesName(row, name) {
			continue
		}
		if err := p.Kill(); err != nil {
			t.log.Warn(fmt.Sprintf("Failed to kill %s (PID %d): %v", row, p.Pid, err))
			continue
		}
		killed++
	}

	if killed == 0 {
		t.log.Warn(fmt.Sprintf("No running process matching %s to terminate", name))
		return false
	}
	t.log.Info(fmt.Sprintf("Terminated %d process(es) matching %s", killed, name))
	return true
}

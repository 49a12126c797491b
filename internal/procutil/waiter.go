package procutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/wrfdata/wrf-exporter/internal/logging"
)

// truncatedNameLen is how many characters of the executable base name the
// Windows process table keeps for long image names.
const truncatedNameLen = 20

// Waiter polls the OS process table until a named process appears and is
// settled enough to act on. There is no event to subscribe to, so both waits
// are plain bounded sleep-poll loops.
type Waiter struct {
	log *logging.Logger

	// PollInterval is the delay between process-table scans.
	PollInterval time.Duration
	// Timeout bounds Find.
	Timeout time.Duration
}

// NewWaiter creates a Waiter with the stock 5s/60s polling parameters.
func NewWaiter(log *logging.Logger) *Waiter {
	return &Waiter{
		log:          log,
		PollInterval: 5 * time.Second,
		Timeout:      60 * time.Second,
	}
}

// Find scans the process table until a process matching name appears and
// returns its PID. It fails with *NotFoundError once Timeout elapses.
func (w *Waiter) Find(name string) (int32, error) {
	deadline := time.Now().Add(w.Timeout)
	attempt := 0

	for time.Now().Before(deadline) {
		attempt++

		procs, err := process.Processes()
		if err != nil {
			w.log.Debug(fmt.Sprintf("Process table scan failed on attempt %d: %v", attempt, err))
		} else {
			if pid, row, ok := matchProcess(procs, name); ok {
				w.log.Info(fmt.Sprintf("Process %s detected (PID: %d) - matched table row: %s", name, pid, row))
				return pid, nil
			}

			// Every 6th attempt (~30s) dump near misses. Diagnostics only,
			// never part of the match decision.
			if attempt%6 == 1 {
				w.logNearMisses(procs, name)
			}
		}

		time.Sleep(w.PollInterval)
	}

	return 0, &NotFoundError{Name: name, Timeout: w.Timeout}
}

// AwaitReady sleeps out the settle window in fixed sub-intervals,
// re-verifying at each step that pid is still alive. Injecting the moment a
// process appears in the table is too early; a fixed settle window is the
// only readiness proxy the OS offers.
func (w *Waiter) AwaitReady(pid int32, name string, settle time.Duration) error {
	w.log.Info(fmt.Sprintf("Process %s found (PID: %d), waiting %s for full initialization...", name, pid, settle))

	interval := w.PollInterval
	for elapsed := time.Duration(0); elapsed < settle; elapsed += interval {
		step := interval
		if remaining := settle - elapsed; remaining < step {
			step = remaining
		}
		time.Sleep(step)

		alive, err := process.PidExists(pid)
		if err != nil {
			return fmt.Errorf("failed to check if process %s (PID %d) is still running: %w", name, pid, err)
		}
		if !alive {
			return &DiedError{Name: name, PID: pid}
		}

		w.log.Debug(fmt.Sprintf("Initialization progress: %s/%s...", elapsed+step, settle))
	}

	w.log.Info(fmt.Sprintf("Process %s should now be ready for injection", name))
	return nil
}

// matchProcess returns the first table row matching name.
func matchProcess(procs []*process.Process, name string) (int32, string, bool) {
	for _, p := range procs {
		row, err := p.Name()
		if err != nil || row == "" {
			continue // process may have just exited
		}
		if MatchesName(row, name) {
			return p.Pid, row, true
		}
	}
	return 0, "", false
}

// MatchesName reports whether a process-table row refers to the target
// executable. The table truncates long image names, so the row is compared
// case-insensitively against the full name, the name without its ".exe"
// suffix, and a 20-character prefix of that base name.
func MatchesName(row, target string) bool {
	row = strings.ToLower(row)
	target = strings.ToLower(target)
	if target == "" {
		return false
	}

	base := strings.TrimSuffix(target, ".exe")
	short := base
	if len(short) > truncatedNameLen {
		short = short[:truncatedNameLen]
	}

	return strings.Contains(row, target) ||
		strings.Contains(row, base) ||
		strings.Contains(row, short)
}

// logNearMisses logs table rows sharing a prefix with the target.
func (w *Waiter) logNearMisses(procs []*process.Process, name string) {
	base := strings.ToLower(strings.TrimSuffix(name, ".exe"))
	fragment := base
	if len(fragment) > 8 {
		fragment = fragment[:8]
	}

	var rows []string
	for _, p := range procs {
		row, err := p.Name()
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(row), fragment) {
			rows = append(rows, fmt.Sprintf("%s (PID %d)", row, p.Pid))
		}
	}

	if len(rows) > 0 {
		w.log.Debug(fmt.Sprintf("Related processes in table: %s", strings.Join(rows, ", ")))
	} else {
		w.log.Debug(fmt.Sprintf("No processes related to %q in table yet", fragment))
	}
}

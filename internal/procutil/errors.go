package procutil

import (
	"fmt"
	"time"
)

// NotFoundError is returned when a process never shows up in the process
// table within the polling deadline. Distinct from DiedError so callers can
// tell "never started" from "died after starting".
type NotFoundError struct {
	Name    string
	Timeout time.Duration
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("process %s not found within %s", e.Name, e.Timeout)
}

// DiedError is returned when a process that was already found disappears
// before its settle window elapses.
type DiedError struct {
	Name string
	PID  int32
}

func (e *DiedError) Error() string {
	return fmt.Sprintf("process %s (PID %d) died during initialization", e.Name, e.PID)
}

// LaunchError is returned when an executable fails to start or exits within
// the immediate post-launch grace window.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("process %s exited immediately after launch", e.Path)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

package proc

import (
	"errors"
	"os"
	"syscall"
	"time"
)

// Alive checks if a process with the given PID is running.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	// Send signal 0 to check if process exists
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	if err != nil {
		// Process doesn't exist or we don't have permission
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			return false
		}
		// EPERM means process exists but we can't signal it
		if errors.Is(err, syscall.EPERM) {
			return true
		}
		return false
	}

	return true
}

// StopPID stops a process rig did not spawn in this session: SIGTERM, poll
// until it exits or grace elapses, then SIGKILL. Absence is not an error.
func StopPID(pid int, grace time.Duration) error {
	if !Alive(pid) {
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		// Exited between the liveness check and the signal
		return nil
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !Alive(pid) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return process.Kill()
}

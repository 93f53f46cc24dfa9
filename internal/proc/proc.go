// Package proc provides the process primitives rig uses to launch and
// retire application instances.
package proc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/tessro/rig/internal/logging"
)

// maxOutputTail bounds how much captured output a failed maintenance run
// carries in its error.
const maxOutputTail = 2048

// Process represents one spawned application process.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	// waitErr is written once before done is closed; read it only after
	// Done() is closed.
	waitErr error
}

// PID returns the process ID.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Done returns a channel closed when the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// WaitErr returns the exit error. Valid only after Done() is closed.
func (p *Process) WaitErr() error {
	return p.waitErr
}

// Kill forcibly terminates the process.
func (p *Process) Kill() error {
	return p.cmd.Process.Kill()
}

// StopWithTimeout stops the process: SIGTERM, wait up to timeout, SIGKILL.
func (p *Process) StopWithTimeout(timeout time.Duration) error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already gone
		<-p.done
		return nil
	}

	select {
	case <-p.done:
	case <-time.After(timeout):
		slog.Debug("process did not exit gracefully, sending SIGKILL",
			"pid", p.cmd.Process.Pid, "timeout", timeout)
		_ = p.cmd.Process.Kill()
		<-p.done
	}

	return nil
}

// Runner executes the application binary.
type Runner struct {
	log *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner() *Runner {
	return &Runner{log: logging.Component("proc")}
}

// Run spawns exe with args and waits for it to exit. Used for maintenance
// launches that must complete before a real instance starts. Cancelling the
// context kills the process.
func (r *Runner) Run(ctx context.Context, exe string, args []string) error {
	r.log.Debug("running to completion", "exe", exe, "args", args)

	cmd := exec.CommandContext(ctx, exe, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("run %s: %w", filepath.Base(exe), ctx.Err())
		}
		tail := strings.TrimSpace(string(output))
		if len(tail) > maxOutputTail {
			tail = tail[len(tail)-maxOutputTail:]
		}
		if tail != "" {
			return fmt.Errorf("run %s %s: %w: %s", filepath.Base(exe), strings.Join(args, " "), err, tail)
		}
		return fmt.Errorf("run %s %s: %w", filepath.Base(exe), strings.Join(args, " "), err)
	}
	return nil
}

// Start spawns exe with args as a long-running process in its own session,
// so it survives rig exiting. Output is redirected to logPath when set.
func (r *Runner) Start(exe string, args []string, logPath string) (*Process, error) {
	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	var logFile *os.File
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("open app log: %w", err)
		}
		logFile = f
		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("start %s: %w", filepath.Base(exe), err)
	}

	r.log.Info("started process", "exe", exe, "pid", cmd.Process.Pid, "log", logPath)

	p := &Process{cmd: cmd, done: make(chan struct{})}
	go func() {
		defer logging.LogPanic("proc-wait", nil)
		p.waitErr = cmd.Wait()
		if logFile != nil {
			logFile.Close()
		}
		close(p.done)
	}()

	return p, nil
}

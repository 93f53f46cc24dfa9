package proc

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// KillByName kills every process whose executable name matches one of the
// given names. Best-effort: absence is not an error, per-process failures
// (races, permissions) are logged and skipped, and rig itself is never a
// target. Returns the number of processes killed.
func (r *Runner) KillByName(names []string) int {
	if len(names) == 0 {
		return 0
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	procs, err := process.Processes()
	if err != nil {
		r.log.Warn("process enumeration failed", "error", err)
		return 0
	}

	self := int32(os.Getpid())
	killed := 0
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		name, err := p.Name()
		if err != nil || !wanted[name] {
			continue
		}
		if err := p.Kill(); err != nil {
			r.log.Debug("kill stray failed", "name", name, "pid", p.Pid, "error", err)
			continue
		}
		r.log.Info("killed stray process", "name", name, "pid", p.Pid)
		killed++
	}

	return killed
}

package locate

import (
	"fmt"
	"os"
	"path/filepath"
)

// Fixed resolves every version to one explicit executable path, bypassing
// the installs registry. Used when the config names the executable directly.
type Fixed struct {
	Exe string
}

// Resolve verifies the fixed executable exists and returns it for any version.
func (f Fixed) Resolve(version string) (Install, error) {
	info, err := os.Stat(f.Exe)
	if err != nil || info.IsDir() {
		return Install{}, fmt.Errorf("version %q: %w: %s", version, ErrNoExecutable, f.Exe)
	}
	return Install{Version: version, Dir: filepath.Dir(f.Exe), Exe: f.Exe}, nil
}

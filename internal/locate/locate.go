// Package locate resolves application install versions to executable paths.
//
// Installs are registered in installs.toml (version -> install directory).
// The executable path comes from the registry entry when present, otherwise
// from the release.yaml manifest shipped inside the install directory.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tessro/rig/internal/paths"
)

// Errors returned by locator operations.
var (
	ErrNotFound     = errors.New("install not found")
	ErrNoExecutable = errors.New("install has no usable executable")
	ErrExists       = errors.New("install already registered")
	ErrEmptyVersion = errors.New("install version cannot be empty")
)

// ManifestName is the per-install manifest file name.
const ManifestName = "release.yaml"

// Install describes one resolved application install.
type Install struct {
	Version string
	Dir     string
	Exe     string
}

// Entry is one installs registry record.
type Entry struct {
	Dir string `toml:"dir"`
	// Exe is the executable path relative to Dir. Optional when the
	// install ships a release manifest.
	Exe string `toml:"exe,omitempty"`
}

// registryFile is the installs.toml document shape.
type registryFile struct {
	Installs map[string]Entry `toml:"installs"`
}

// manifest is the release.yaml document shape.
type manifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Exe     string `yaml:"exe"`
}

// Locator resolves versions through the installs registry.
type Locator struct {
	path string // Immutable after creation
	mu   sync.RWMutex
	// +checklocks:mu
	installs map[string]Entry
}

// New creates a Locator backed by the default installs registry path.
func New() (*Locator, error) {
	path, err := paths.InstallsPath()
	if err != nil {
		return nil, err
	}
	return NewWithPath(path)
}

// NewWithPath creates a Locator backed by a custom registry path.
func NewWithPath(path string) (*Locator, error) {
	l := &Locator{
		path:     path,
		installs: make(map[string]Entry),
	}

	if err := l.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return l, nil
}

// load reads the registry file and populates the locator.
func (l *Locator) load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var file registryFile
	if _, err := toml.DecodeFile(l.path, &file); err != nil {
		return err
	}

	for version, entry := range file.Installs {
		l.installs[version] = entry
	}

	return nil
}

// save writes the current registry state to the registry file.
//
// +checklocks:l.mu
func (l *Locator) save() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file := registryFile{Installs: l.installs}

	f, err := os.Create(l.path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(file)
}

// Resolve returns the install for a version. The executable path is taken
// from the registry entry when present, otherwise from the install's
// release manifest, and must exist on disk.
func (l *Locator) Resolve(version string) (Install, error) {
	l.mu.RLock()
	entry, exists := l.installs[version]
	l.mu.RUnlock()

	if !exists {
		return Install{}, fmt.Errorf("version %q: %w", version, ErrNotFound)
	}

	rel := entry.Exe
	if rel == "" {
		m, err := readManifest(entry.Dir)
		if err != nil {
			return Install{}, fmt.Errorf("version %q: %w: %v", version, ErrNoExecutable, err)
		}
		if m.Exe == "" {
			return Install{}, fmt.Errorf("version %q: %w: manifest has no exe field", version, ErrNoExecutable)
		}
		rel = m.Exe
	}

	exe := filepath.Join(entry.Dir, rel)
	info, err := os.Stat(exe)
	if err != nil || info.IsDir() {
		return Install{}, fmt.Errorf("version %q: %w: %s", version, ErrNoExecutable, exe)
	}

	return Install{Version: version, Dir: entry.Dir, Exe: exe}, nil
}

// Add registers a new install.
func (l *Locator) Add(version, dir, exe string) error {
	if version == "" {
		return ErrEmptyVersion
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.installs[version]; exists {
		return fmt.Errorf("version %q: %w", version, ErrExists)
	}

	l.installs[version] = Entry{Dir: dir, Exe: exe}

	if err := l.save(); err != nil {
		delete(l.installs, version)
		return err
	}

	return nil
}

// Remove unregisters an install by version.
func (l *Locator) Remove(version string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.installs[version]; !exists {
		return fmt.Errorf("version %q: %w", version, ErrNotFound)
	}

	delete(l.installs, version)
	return l.save()
}

// List returns all registered installs sorted by version. The Exe field is
// resolved best-effort and left empty when resolution fails.
func (l *Locator) List() []Install {
	l.mu.RLock()
	versions := make([]string, 0, len(l.installs))
	for v := range l.installs {
		versions = append(versions, v)
	}
	l.mu.RUnlock()

	sort.Strings(versions)

	installs := make([]Install, 0, len(versions))
	for _, v := range versions {
		inst, err := l.Resolve(v)
		if err != nil {
			l.mu.RLock()
			inst = Install{Version: v, Dir: l.installs[v].Dir}
			l.mu.RUnlock()
		}
		installs = append(installs, inst)
	}
	return installs
}

// Count returns the number of registered installs.
func (l *Locator) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.installs)
}

// Path returns the path to the registry file.
func (l *Locator) Path() string {
	return l.path
}

// readManifest reads the release manifest from an install directory.
func readManifest(dir string) (manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return manifest{}, err
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return manifest{}, fmt.Errorf("parse %s: %w", ManifestName, err)
	}
	return m, nil
}

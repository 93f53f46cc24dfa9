// Package statefile persists an advisory record of the last launched
// instance so that later rig commands (status, watch, down) can find it.
// The instance manager only writes this record; reuse decisions are made
// solely from the manager's in-memory reference, never from this file.
package statefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tessro/rig/internal/paths"
)

// Record describes the last launched instance.
type Record struct {
	LaunchID  string    `json:"launch_id"`
	PID       int       `json:"pid"`
	Endpoint  string    `json:"endpoint"`
	Version   string    `json:"version"`
	Exe       string    `json:"exe"`
	LogPath   string    `json:"log_path,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Errors returned by the state store.
var (
	ErrNoInstance = errors.New("no recorded instance")
)

// Store manages the persistent instance record.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a state store using the default path.
func NewStore() (*Store, error) {
	path, err := paths.StatePath()
	if err != nil {
		return nil, fmt.Errorf("get state path: %w", err)
	}
	return &Store{path: path}, nil
}

// NewStoreWithPath creates a state store with a custom path.
// This is useful for testing.
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Path returns the path to the state file.
func (s *Store) Path() string {
	return s.path
}

// Save writes the instance record atomically.
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	// Write to temp file in same directory (for atomic rename)
	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.path); err != nil {
		os.Remove(tmpFile) // Clean up on failure
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Load reads the instance record.
// Returns ErrNoInstance if no record has been saved.
func (s *Store) Load() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoInstance
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrNoInstance
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}

	return &rec, nil
}

// Clear removes the instance record.
// Returns nil if no record exists (idempotent).
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

// Package settings persists the user-managed toolchain settings. The engine
// core never mutates settings; it only takes immutable snapshots per use.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/anvil-ide/anvil/internal/toolchain"
)

// Store holds the current toolchain settings, backed by a YAML file.
type Store struct {
	path string

	mu      sync.RWMutex
	current toolchain.Settings
}

// Open loads the settings file at path. A missing file yields empty settings;
// the file is created on the first Update.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.current); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return s, nil
}

// Snapshot returns a consistent, caller-owned copy of the current settings.
func (s *Store) Snapshot() toolchain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update replaces the settings and rewrites the backing file atomically.
func (s *Store) Update(next toolchain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	s.current = next.Clone()
	return nil
}

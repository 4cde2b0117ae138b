package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// StagingPrefix starts the name of every staging directory and its backups.
const StagingPrefix = ".mdsite-staging"

// Manager handles workspace operations (both staged and in-place).
type Manager struct {
	target  string // final output directory
	dir     string // directory the build writes into
	inPlace bool
}

// NewManager creates a staged workspace manager for target. The staging directory is
// created next to target so Promote is a rename on the same filesystem.
func NewManager(target string) *Manager {
	return &Manager{target: filepath.Clean(target)}
}

// NewInPlaceManager creates a workspace manager that writes directly into target.
func NewInPlaceManager(target string) *Manager {
	target = filepath.Clean(target)
	return &Manager{target: target, dir: target, inPlace: true}
}

// Create creates the workspace directory.
func (m *Manager) Create() error {
	if m.inPlace {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		slog.Debug("Using output directory in place", logfields.Path(m.dir))
		return nil
	}

	parent := filepath.Dir(m.target)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return fmt.Errorf("failed to create output parent directory: %w", err)
	}
	timestamp := time.Now().Format("20060102-150405")
	dir, err := os.MkdirTemp(parent, fmt.Sprintf("%s-%s-", StagingPrefix, timestamp))
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	m.dir = dir
	slog.Debug("Created staging workspace", logfields.Path(dir))
	return nil
}

// GetPath returns the path builds should write into.
func (m *Manager) GetPath() string {
	return m.dir
}

// Target returns the final output directory.
func (m *Manager) Target() string {
	return m.target
}

// Promote replaces the output directory with the staging directory. The previous
// output is moved aside first and removed only after the swap succeeded.
func (m *Manager) Promote() error {
	if m.inPlace {
		return nil
	}
	if m.dir == "" {
		return errors.New("workspace not created")
	}

	backup := ""
	if _, err := os.Stat(m.target); err == nil {
		backup = m.dir + ".previous"
		if err := os.Rename(m.target, backup); err != nil {
			return fmt.Errorf("failed to move previous output aside: %w", err)
		}
	}

	if err := os.Rename(m.dir, m.target); err != nil {
		if backup != "" {
			_ = os.Rename(backup, m.target)
		}
		return fmt.Errorf("failed to promote staging directory: %w", err)
	}

	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			slog.Warn("Failed to remove previous output", logfields.Path(backup), logfields.Error(err))
		}
	}
	slog.Debug("Promoted staging workspace", logfields.Path(m.target))
	m.dir = ""
	return nil
}

// Cleanup removes an unpromoted staging directory.
// For in-place mode: does nothing (the output is the workspace).
func (m *Manager) Cleanup() error {
	if m.dir == "" || m.inPlace {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up staging workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}

// CreateSubdir creates a subdirectory within the workspace.
func (m *Manager) CreateSubdir(name string) (string, error) {
	if m.dir == "" {
		return "", errors.New("workspace not created")
	}

	subdir := filepath.Join(m.dir, name)
	if err := os.MkdirAll(subdir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	return subdir, nil
}

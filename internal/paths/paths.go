// Package paths describes the on-disk layout of the couchsplit data directory.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout resolves every well-known location under a data root.
type Layout struct {
	Root string
}

// New returns the layout rooted at dir.
func New(dir string) Layout {
	return Layout{Root: dir}
}

// Profiles holds one directory per persistent or guest profile.
func (l Layout) Profiles() string { return filepath.Join(l.Root, "profiles") }

// Profile returns the directory of a single profile.
func (l Layout) Profile(name string) string { return filepath.Join(l.Profiles(), name) }

// GameSyms holds the per-game symlink sandbox roots.
func (l Layout) GameSyms() string { return filepath.Join(l.Root, "gamesyms") }

// Handlers holds installed handler descriptors, one directory each.
func (l Layout) Handlers() string { return filepath.Join(l.Root, "handlers") }

// Tmp is scratch space purged at startup.
func (l Layout) Tmp() string { return filepath.Join(l.Root, "tmp") }

// Prefix is the shared Wine prefix used by the compatibility layer.
func (l Layout) Prefix() string { return filepath.Join(l.Root, "pfx") }

// Resources holds bundled helper binaries such as umu-run.
func (l Layout) Resources() string { return filepath.Join(l.Root, "res") }

// Settings is the JSON settings file.
func (l Layout) Settings() string { return filepath.Join(l.Root, "settings.json") }

// GamePaths lists plain executables added by the user.
func (l Layout) GamePaths() string { return filepath.Join(l.Root, "paths.json") }

// Prepare creates the directory skeleton and purges scratch space left over
// from a previous run.
func (l Layout) Prepare() error {
	if err := os.RemoveAll(l.Tmp()); err != nil {
		return fmt.Errorf("failed to purge tmp: %w", err)
	}
	for _, dir := range []string{l.Root, l.Profiles(), l.GameSyms(), l.Handlers(), l.Tmp(), l.Resources()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// ResetDir removes dir and recreates it empty. Used by the "erase prefix"
// and "erase symlink data" maintenance actions.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to erase %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to re-create %s: %w", dir, err)
	}
	return nil
}

// Package profile manages named save profiles and the per-profile save
// sandboxes built for a session.
package profile

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/game"
	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/couchsplit/couchsplit/internal/paths"
	"github.com/couchsplit/couchsplit/internal/sandbox"
	"github.com/otiai10/copy"
)

// GuestLabel is how the guest entry is listed.
const GuestLabel = "Guest"

// Manager owns the profiles directory.
type Manager struct {
	layout   paths.Layout
	isolator sandbox.Isolator
	home     string
	logger   *logging.Logger
}

// NewManager returns a manager isolating saves with isolator.
func NewManager(layout paths.Layout, isolator sandbox.Isolator, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NopLogger()
	}
	home, _ := os.UserHomeDir()
	return &Manager{
		layout:   layout,
		isolator: isolator,
		home:     home,
		logger:   logger.WithComponent("profile"),
	}
}

// ValidateName rejects names that are not a single path element.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.TrimSpace(name) != name {
		return errors.NewValidationError(errors.ErrInvalidProfileName.Error()).WithField("name").WithValue(name)
	}
	return nil
}

// ValidatePersistentName additionally reserves the guest prefix and label.
func ValidatePersistentName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if strings.HasPrefix(name, GuestPrefix) || strings.EqualFold(name, GuestLabel) {
		return errors.NewValidationError("name is reserved for guests").WithField("name").WithValue(name)
	}
	return nil
}

// Create makes the profile directory. Creating an existing profile is a
// no-op.
func (m *Manager) Create(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	dir := m.layout.Profile(name)
	if err := os.MkdirAll(filepath.Join(dir, "saves"), 0755); err != nil {
		return errors.NewSandboxError("failed to create profile", err).WithProfile(name).WithPath(dir)
	}
	return nil
}

// List returns persistent profile names sorted. With includeGuest the guest
// label is prepended, so index 0 means guest.
func (m *Manager) List(includeGuest bool) ([]string, error) {
	var out []string
	if includeGuest {
		out = append(out, GuestLabel)
	}
	entries, err := os.ReadDir(m.layout.Profiles())
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list profiles")
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !IsGuest(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return append(out, names...), nil
}

// Remove deletes a profile with all its saves.
func (m *Manager) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	dir := m.layout.Profile(name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return errors.NewNotFoundError("profile", name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.NewSandboxError("failed to remove profile", err).WithProfile(name).WithPath(dir)
	}
	m.logger.Info("profile removed", "profile", name)
	return nil
}

// RemoveGuests deletes every guest profile. Every guest is attempted; the
// errors of those that could not be removed are joined.
func (m *Manager) RemoveGuests() error {
	entries, err := os.ReadDir(m.layout.Profiles())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to list profiles")
	}

	var errs []error
	removed := 0
	for _, e := range entries {
		if !IsGuest(e.Name()) {
			continue
		}
		dir := m.layout.Profile(e.Name())
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, errors.NewSandboxError("failed to remove guest profile", err).WithProfile(e.Name()).WithPath(dir))
			continue
		}
		removed++
	}
	if removed > 0 {
		m.logger.Info("guest profiles removed", "count", removed)
	}
	return errors.Join(errs...)
}

// Gamesave is the redirection a launch applies for one profile.
type Gamesave struct {
	// Mounts are applied by bubblewrap.
	Mounts []sandbox.Mount
	// Home, when set, replaces HOME for the instance.
	Home string
}

// SaveDir is where a profile keeps save path index i of a game.
func (m *Manager) SaveDir(profile, gameID string, i int) string {
	return filepath.Join(m.layout.Profile(profile), "saves", gameID, strconv.Itoa(i))
}

// HomeDir is the private home used by backends that redirect HOME.
func (m *Manager) HomeDir(profile string) string {
	return filepath.Join(m.layout.Profile(profile), "home")
}

// CreateGamesave builds the profile's private view of each save path of a
// save-isolating game. A fresh save directory is seeded from the game's
// template: Template/<i> when present, else Template itself for index 0.
func (m *Manager) CreateGamesave(profile string, desc game.Descriptor) (Gamesave, error) {
	if !desc.IsolateSaves {
		return Gamesave{}, nil
	}
	if err := ValidateName(profile); err != nil {
		return Gamesave{}, err
	}

	var gs Gamesave
	redirectHome := !sandbox.UsesBubblewrap(m.isolator)
	if redirectHome {
		gs.Home = m.HomeDir(profile)
	}

	for i, shared := range desc.SavePaths {
		private := m.SaveDir(profile, desc.ID, i)
		if redirectHome {
			rel, err := filepath.Rel(m.home, shared)
			if err != nil || m.home == "" || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return Gamesave{}, errors.NewSandboxError("save path must be under the home directory without bubblewrap", err).
					WithProfile(profile).WithPath(shared)
			}
			private = filepath.Join(gs.Home, rel)
		}

		_, statErr := os.Stat(private)
		fresh := os.IsNotExist(statErr)

		if fresh && desc.Template != "" {
			if err := seed(templateFor(desc.Template, i), private); err != nil {
				return Gamesave{}, errors.NewSandboxError("failed to seed save directory", err).WithProfile(profile).WithPath(private)
			}
		}

		mounts, err := m.isolator.Isolate(shared, private)
		if err != nil {
			var serr *errors.SandboxError
			if errors.As(err, &serr) {
				return Gamesave{}, serr.WithProfile(profile)
			}
			return Gamesave{}, errors.NewSandboxError("failed to isolate saves", err).WithProfile(profile).WithPath(shared)
		}
		gs.Mounts = append(gs.Mounts, mounts...)
	}

	m.logger.Debug("gamesave ready", "profile", profile, "game_id", desc.ID, "backend", m.isolator.Name(), "paths", len(desc.SavePaths))
	return gs, nil
}

// CreateSymlinkFolder mirrors the game's install directory under gamesyms
// and returns the mirror root.
func (m *Manager) CreateSymlinkFolder(desc game.Descriptor) (string, error) {
	root := filepath.Join(m.layout.GameSyms(), desc.ID)
	if err := sandbox.Mirror(desc.InstallDir, root); err != nil {
		return "", err
	}
	return root, nil
}

func templateFor(template string, i int) string {
	numbered := filepath.Join(template, strconv.Itoa(i))
	if info, err := os.Stat(numbered); err == nil && info.IsDir() {
		return numbered
	}
	if i == 0 {
		return template
	}
	return ""
}

// seed copies the template tree into dst. A missing template is not an
// error. Links inside the template are copied as their targets so the save
// never points back at shared files.
func seed(src, dst string) error {
	if src == "" {
		return nil
	}
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return copy.Copy(src, dst, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction { return copy.Deep },
	})
}

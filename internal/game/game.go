// Package game describes launchable games. A game is either a plain
// executable the user pointed at, or a handler: a directory with a
// handler.json describing how to run and sandbox an installed game.
package game

import (
	"os"
	"path/filepath"
	"strings"
)

// Descriptor is the read-only metadata the orchestrator needs.
type Descriptor struct {
	ID   string
	Name string
	// AppID is an optional store identifier, used for artwork and GAMEID.
	AppID string
	// Windows games run through the compatibility layer.
	Windows bool
	// IsolateSaves gives each player a private copy of SavePaths.
	IsolateSaves bool
	// SymlinkDir runs instances from a symlink mirror of InstallDir.
	SymlinkDir bool
	InstallDir string
	SavePaths  []string
	// Template seeds a profile's save directory on first use. Optional.
	Template string
}

// Target is a resolved invocation.
type Target struct {
	Dir     string
	Program string
	Args    []string
	Env     map[string]string
}

// Game is a launchable game.
type Game interface {
	Descriptor() Descriptor
	// Target resolves the invocation when the install is reachable at root.
	// root is InstallDir itself or a symlink mirror of it.
	Target(root string) Target
}

// Executable is a plain binary added by path.
type Executable struct {
	Path string
}

func (e Executable) Descriptor() Descriptor {
	return Descriptor{
		ID:         executableID(e.Path),
		Name:       strings.TrimSuffix(filepath.Base(e.Path), filepath.Ext(e.Path)),
		Windows:    strings.EqualFold(filepath.Ext(e.Path), ".exe"),
		InstallDir: filepath.Dir(e.Path),
	}
}

func (e Executable) Target(root string) Target {
	return Target{
		Dir:     root,
		Program: filepath.Join(root, filepath.Base(e.Path)),
	}
}

// executableID derives a stable id from the file name.
func executableID(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.ToLower(strings.TrimSpace(base))
	return strings.Join(strings.Fields(base), "-")
}

// Handler is a game described by handlers/<id>/handler.json.
type Handler struct {
	Dir  string
	Desc Descriptor
	Exec string
	Args []string
	Env  map[string]string
}

func (h Handler) Descriptor() Descriptor {
	return h.Desc
}

func (h Handler) Target(root string) Target {
	program := filepath.Join(root, h.Exec)
	env := make(map[string]string, len(h.Env))
	for k, v := range h.Env {
		env[k] = v
	}
	return Target{
		Dir:     filepath.Dir(program),
		Program: program,
		Args:    append([]string(nil), h.Args...),
		Env:     env,
	}
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

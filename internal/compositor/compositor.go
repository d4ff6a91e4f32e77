// Package compositor loads the KWin tiling script that places instance
// windows in the same regions the launch plan sized them for.
package compositor

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/logging"
)

// ScriptName is the name the script is registered under.
const ScriptName = "splitscreen"

//go:embed scripts/*.js
var scripts embed.FS

// Script file names, by two-player orientation.
const (
	VerticalScript   = "splitscreen_kwin.js"
	HorizontalScript = "splitscreen_kwin_horizontal.js"
)

// ScriptFor returns the script matching the orientation preference.
func ScriptFor(vertical bool) string {
	if vertical {
		return VerticalScript
	}
	return HorizontalScript
}

// Coordinator brackets a session with load and unload of the tiling script.
// It is not safe for concurrent use.
type Coordinator struct {
	scripting Scripting
	dir       string
	logger    *logging.Logger
	loaded    bool
}

// NewCoordinator writes scripts into dir before loading them.
func NewCoordinator(s Scripting, dir string, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Coordinator{scripting: s, dir: dir, logger: logger.WithComponent("compositor")}
}

// Install writes the script for the orientation into the scratch directory
// and returns its path.
func (c *Coordinator) Install(vertical bool) (string, error) {
	name := ScriptFor(vertical)
	data, err := scripts.ReadFile("scripts/" + name)
	if err != nil {
		return "", errors.NewCompositorError("missing embedded script", err).WithScript(name)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", errors.NewCompositorError("failed to create script directory", err).WithScript(name)
	}
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.NewCompositorError("failed to write script", err).WithScript(name)
	}
	return path, nil
}

// Load installs, loads and starts the tiling script. Any failure is fatal
// to the launch.
func (c *Coordinator) Load(vertical bool) error {
	path, err := c.Install(vertical)
	if err != nil {
		return err
	}
	return c.LoadPath(path)
}

// LoadPath loads and starts a script file.
func (c *Coordinator) LoadPath(path string) error {
	c.logger.Info("loading tiling script", "path", path)
	if _, err := os.Stat(path); err != nil {
		return errors.NewCompositorError("cannot load script", errors.ErrScriptMissing).WithScript(path)
	}
	id, err := c.scripting.LoadScript(path, ScriptName)
	if err != nil {
		return errors.NewCompositorError("failed to load script", err).WithScript(path)
	}
	// KWin answers -1 when it refuses the file.
	if id < 0 {
		return errors.NewCompositorError("failed to load script", errors.ErrScriptRejected).WithScript(path)
	}
	// Unload must be attempted even if start fails half way.
	c.loaded = true
	if err := c.scripting.Start(); err != nil {
		return errors.NewCompositorError("failed to start script", err).WithScript(path)
	}
	c.logger.Info("tiling script started")
	return nil
}

// Loaded reports whether Unload is still owed.
func (c *Coordinator) Loaded() bool {
	return c.loaded
}

// Unload removes the script. It is attempted once per Load; errors are
// returned as non-fatal so cleanup can continue.
func (c *Coordinator) Unload() error {
	if !c.loaded {
		return errors.NewCompositorError("cannot unload", errors.ErrScriptNotLoaded).WithScript(ScriptName).WithFatal(false)
	}
	c.loaded = false
	c.logger.Info("unloading tiling script")
	if _, err := c.scripting.UnloadScript(ScriptName); err != nil {
		return errors.NewCompositorError("failed to unload script", err).WithScript(ScriptName).WithFatal(false)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/couchsplit/couchsplit/internal/compositor"
	"github.com/couchsplit/couchsplit/internal/config"
	"github.com/couchsplit/couchsplit/internal/game"
	"github.com/couchsplit/couchsplit/internal/gamepad"
	"github.com/couchsplit/couchsplit/internal/launch"
	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/couchsplit/couchsplit/internal/paths"
	"github.com/couchsplit/couchsplit/internal/profile"
	"github.com/couchsplit/couchsplit/internal/sandbox"
	"github.com/couchsplit/couchsplit/internal/screen"
	"github.com/couchsplit/couchsplit/internal/session"
)

// env is the wired application shared by commands.
type env struct {
	cfg      *config.Config
	cfgPath  string
	layout   paths.Layout
	logger   *logging.Logger
	library  *game.Library
	isolator sandbox.Isolator
	profiles *profile.Manager
	// busy is set when another live session holds the lock.
	busy *session.Lock
}

// setup loads settings, prepares the data directory and removes guest
// profiles left behind by a crashed session. Both steps are skipped while
// another session is running so its files stay intact.
func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	layout := paths.New(dataDir())
	busy, locked := session.IsLocked(layout.Root)
	if !locked {
		if err := layout.Prepare(); err != nil {
			return nil, err
		}
	}

	logger, err := logging.NewLogger(layout.Root, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	isolator := sandbox.ForPlatform()
	logger.Debug("save isolation selected", "backend", isolator.Name())

	e := &env{
		cfg:      cfg,
		cfgPath:  layout.Settings(),
		layout:   layout,
		logger:   logger,
		library:  game.NewLibrary(layout, logger),
		isolator: isolator,
		profiles: profile.NewManager(layout, isolator, logger),
	}
	if locked {
		e.busy = busy
		logger.Warn("another session is running, skipping startup cleanup", "pid", busy.PID, "session_id", busy.SessionID)
		return e, nil
	}
	if err := e.profiles.RemoveGuests(); err != nil {
		logger.Error("failed to remove stale guest profiles", "error", err)
	}
	return e, nil
}

func (e *env) close() {
	_ = e.logger.Close()
}

// scanPads opens the current controllers.
func (e *env) scanPads() []*gamepad.Gamepad {
	return gamepad.Scan(gamepad.Evdev, gamepad.Options{ExcludeVirtual: e.cfg.DisableSteamInput}, e.logger)
}

// orchestrator wires a session orchestrator around runner. The returned
// func releases the D-Bus connection.
func (e *env) orchestrator(runner session.Runner) (*session.Orchestrator, func()) {
	scripting := compositor.NewDBusScripting()
	orch := session.New(session.Options{
		Config:      e.cfg,
		ConfigPath:  e.cfgPath,
		Layout:      e.layout,
		Profiles:    e.profiles,
		Builder:     launch.NewBuilder(e.cfg, e.layout, e.logger).WithIsolator(e.isolator),
		Coordinator: compositor.NewCoordinator(scripting, e.layout.Tmp(), e.logger),
		Runner:      runner,
		Screen: func() (int, int) {
			return screen.Resolution(screen.X11, e.logger)
		},
		Logger: e.logger,
	})
	return orch, func() { _ = scripting.Close() }
}

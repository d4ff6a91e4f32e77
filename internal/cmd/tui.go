package cmd

import (
	"fmt"
	"os"

	"github.com/couchsplit/couchsplit/internal/gamepad"
	"github.com/couchsplit/couchsplit/internal/session"
	"github.com/couchsplit/couchsplit/internal/task"
	"github.com/couchsplit/couchsplit/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the launcher needs an interactive terminal; run 'couchsplit --help' for scriptable commands")
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	pool := task.NewPool(2, e.logger)
	defer pool.Close()

	var rescan <-chan struct{}
	watcher, err := gamepad.NewWatcher(gamepad.DefaultInputDir, e.logger)
	if err != nil {
		e.logger.Warn("controller hotplug disabled", "error", err)
	} else {
		defer watcher.Close()
		rescan = watcher.Changes()
	}

	runner := &session.ShellRunner{}
	orch, release := e.orchestrator(runner)
	defer release()

	app := tui.New(tui.Deps{
		Config:     e.cfg,
		ConfigPath: e.cfgPath,
		Library:    e.library,
		Profiles:   e.profiles,
		Launcher:   orch,
		Streams:    runner,
		Executor:   pool,
		ScanPads: func() []tui.Pad {
			pads := e.scanPads()
			out := make([]tui.Pad, len(pads))
			for i, p := range pads {
				out[i] = p
			}
			return out
		},
		Rescan: rescan,
		Logger: e.logger,
	})
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

package cmd

import (
	"fmt"
	"slices"

	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/gamepad"
	"github.com/couchsplit/couchsplit/internal/layout"
	"github.com/couchsplit/couchsplit/internal/players"
	"github.com/couchsplit/couchsplit/internal/session"
	"github.com/spf13/cobra"
)

var launchCmd = &cobra.Command{
	Use:   "launch <game-id>",
	Short: "Launch a game without the interactive launcher",
	Long: `Launch a game for the first N connected controllers, in the order shown
by 'couchsplit pads'. Players are guests unless --profile names them.

Examples:
  # Everyone plugged in plays as a guest
  couchsplit launch celeste

  # Two players, the first with a saved profile
  couchsplit launch celeste -p 2 --profile alice`,
	Args: cobra.ExactArgs(1),
	RunE: runLaunch,
}

var (
	launchPlayers  int
	launchProfiles []string
)

func init() {
	rootCmd.AddCommand(launchCmd)

	launchCmd.Flags().IntVarP(&launchPlayers, "players", "p", 0, "number of players (default: every controller, up to 4)")
	launchCmd.Flags().StringSliceVar(&launchProfiles, "profile", nil, "profile for each player in order; 'guest' or empty for a guest")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	g, err := e.library.Find(args[0])
	if err != nil {
		return err
	}

	pads := e.scanPads()
	paths := gamepad.Paths(pads)
	gamepad.CloseAll(pads)

	count := launchPlayers
	if count <= 0 {
		count = min(len(paths), layout.MaxPlayers)
	}
	if count == 0 {
		return errors.ErrNoDevices
	}
	if count > len(paths) {
		return fmt.Errorf("%d players requested but %d controllers connected", count, len(paths))
	}

	profiles, err := e.profiles.List(true)
	if err != nil {
		return err
	}
	slots, err := headlessSlots(count, launchProfiles, profiles)
	if err != nil {
		return err
	}

	orch, release := e.orchestrator(&session.ShellRunner{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	defer release()

	res, err := orch.Launch(session.Request{
		Game:     g,
		Pads:     paths,
		Slots:    slots,
		Profiles: profiles,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Session %s finished\n", res.ID)
	return nil
}

// headlessSlots binds pad i to player i and resolves the named profiles
// against the selectable list, whose entry 0 is the guest.
func headlessSlots(count int, names, profiles []string) ([]players.Slot, error) {
	if len(names) > count {
		return nil, fmt.Errorf("%d profiles given for %d players", len(names), count)
	}
	slots := make([]players.Slot, count)
	for i := range slots {
		slots[i].Pad = i
		if i >= len(names) || names[i] == "" || names[i] == "guest" || names[i] == players.GuestLabel {
			continue
		}
		idx := slices.Index(profiles, names[i])
		if idx <= 0 {
			return nil, errors.NewNotFoundError("profile", names[i])
		}
		if slices.ContainsFunc(slots[:i], func(s players.Slot) bool { return s.Profile == idx }) {
			return nil, fmt.Errorf("profile %s is assigned to more than one player", names[i])
		}
		slots[i].Profile = idx
	}
	return slots, nil
}

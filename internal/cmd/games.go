package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "Manage the game library",
	Long: `Manage the game library. A game is either a handler directory under
{data}/handlers with a handler.json, or a plain executable added with
'couchsplit games add'.`,
	RunE: runGamesList,
}

var gamesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List games",
	Args:  cobra.NoArgs,
	RunE:  runGamesList,
}

var gamesAddCmd = &cobra.Command{
	Use:   "add <executable>",
	Short: "Add a plain executable; .exe files run through Proton",
	Args:  cobra.ExactArgs(1),
	RunE:  runGamesAdd,
}

var gamesRemoveCmd = &cobra.Command{
	Use:     "remove <game-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a game from the library",
	Args:    cobra.ExactArgs(1),
	RunE:    runGamesRemove,
}

func init() {
	rootCmd.AddCommand(gamesCmd)
	gamesCmd.AddCommand(gamesListCmd)
	gamesCmd.AddCommand(gamesAddCmd)
	gamesCmd.AddCommand(gamesRemoveCmd)
}

func runGamesList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	games, err := e.library.Scan()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(games) == 0 {
		fmt.Fprintln(out, "No games.")
		return nil
	}
	for _, g := range games {
		d := g.Descriptor()
		kind := "native"
		if d.Windows {
			kind = "proton"
		}
		fmt.Fprintf(out, "%-24s %-7s %s\n", d.ID, kind, d.Name)
	}
	return nil
}

func runGamesAdd(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.library.AddExecutable(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", path)
	return nil
}

func runGamesRemove(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.library.Remove(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}

package cmd

import (
	"fmt"

	"github.com/couchsplit/couchsplit/internal/paths"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Erase generated data",
	Long: `Erase data couchsplit regenerates on demand. Refuses to run while a
session is in progress.`,
}

var cleanPrefixCmd = &cobra.Command{
	Use:   "prefix",
	Short: "Erase the shared Proton prefix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean(cmd, "Proton prefix", func(e *env) string { return e.layout.Prefix() })
	},
}

var cleanSymlinksCmd = &cobra.Command{
	Use:   "gamesyms",
	Short: "Erase the per-game symlink trees",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean(cmd, "symlink data", func(e *env) string { return e.layout.GameSyms() })
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.AddCommand(cleanPrefixCmd)
	cleanCmd.AddCommand(cleanSymlinksCmd)
}

func runClean(cmd *cobra.Command, what string, dir func(*env) string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if e.busy != nil {
		return fmt.Errorf("a session is running (pid %d); try again after it ends", e.busy.PID)
	}
	target := dir(e)
	if err := paths.ResetDir(target); err != nil {
		return err
	}
	e.logger.Info("erased", "what", what, "path", target)
	fmt.Fprintf(cmd.OutOrStdout(), "Erased %s (%s)\n", what, target)
	return nil
}

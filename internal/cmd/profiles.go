package cmd

import (
	"fmt"

	"github.com/couchsplit/couchsplit/internal/profile"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage player profiles",
	Long: `Manage persistent player profiles. Each profile keeps its own save data
for every game. Players without a profile join as guests whose saves are
discarded when the session ends.`,
	RunE: runProfilesList,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfilesList,
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesCreate,
}

var profilesRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile and all of its saves",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfilesRemove,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesCreateCmd)
	profilesCmd.AddCommand(profilesRemoveCmd)
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	names, err := e.profiles.List(false)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "No profiles.")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

func runProfilesCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := profile.ValidatePersistentName(name); err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.profiles.Create(name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s\n", name)
	return nil
}

func runProfilesRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := profile.ValidatePersistentName(name); err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.profiles.Remove(name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %s\n", name)
	return nil
}

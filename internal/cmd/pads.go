package cmd

import (
	"fmt"

	"github.com/couchsplit/couchsplit/internal/gamepad"
	"github.com/spf13/cobra"
)

var padsCmd = &cobra.Command{
	Use:   "pads",
	Short: "List connected controllers",
	Long: `List the controllers couchsplit would offer to players, in the order
used by 'couchsplit launch'. Steam Input virtual pads are hidden unless
disable_steam_input is off.`,
	Args: cobra.NoArgs,
	RunE: runPads,
}

func init() {
	rootCmd.AddCommand(padsCmd)
}

func runPads(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	pads := e.scanPads()
	defer gamepad.CloseAll(pads)

	out := cmd.OutOrStdout()
	if len(pads) == 0 {
		fmt.Fprintln(out, "No controllers found.")
		return nil
	}
	for i, p := range pads {
		battery := "-"
		if pct, ok := p.Battery(); ok {
			battery = fmt.Sprintf("%d%%", pct)
		}
		fmt.Fprintf(out, "%d  %-20s %-12s %-5s %04x:%04x  %s\n",
			i, p.Path(), p.Kind(), battery, p.ID().Vendor, p.ID().Product, p.Name())
	}
	return nil
}

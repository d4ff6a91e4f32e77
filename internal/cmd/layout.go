package cmd

import (
	"fmt"
	"strconv"

	"github.com/couchsplit/couchsplit/internal/config"
	"github.com/couchsplit/couchsplit/internal/layout"
	"github.com/couchsplit/couchsplit/internal/screen"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <players>",
	Short: "Print the screen partition for a player count",
	Long: `Print the viewport each player gets, as WIDTHxHEIGHT+X+Y. Without
--width and --height the detected screen resolution is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

var (
	layoutWidth    int
	layoutHeight   int
	layoutVertical string
)

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().IntVar(&layoutWidth, "width", 0, "screen width in pixels")
	layoutCmd.Flags().IntVar(&layoutHeight, "height", 0, "screen height in pixels")
	layoutCmd.Flags().StringVar(&layoutVertical, "vertical", "", "stack two players vertically (true/false, default from settings)")
}

func runLayout(cmd *cobra.Command, args []string) error {
	count, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid player count %q", args[0])
	}

	vertical := config.Get().VerticalTwoPlayer
	if layoutVertical != "" {
		vertical, err = strconv.ParseBool(layoutVertical)
		if err != nil {
			return fmt.Errorf("invalid --vertical value %q", layoutVertical)
		}
	}

	width, height := layoutWidth, layoutHeight
	if width <= 0 || height <= 0 {
		width, height = screen.Resolution(screen.X11, nil)
	}

	views, err := layout.All(count, width, height, vertical)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, v := range views {
		fmt.Fprintf(out, "player %d  %s\n", i+1, v)
	}
	return nil
}

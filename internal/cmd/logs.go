package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the couchsplit log",
	Long: `View and filter couchsplit.log.

Examples:
  # Last 50 lines
  couchsplit logs

  # Everything from one session (a prefix of the id is enough)
  couchsplit logs -s 3f2a -n 0

  # Warnings and errors from the last hour
  couchsplit logs --level warn --since 1h`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail    int
	logsSession string
	logsGame    string
	logsLevel   string
	logsSince   string
	logsGrep    string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "number of lines to show (0 for all)")
	logsCmd.Flags().StringVarP(&logsSession, "session", "s", "", "only this session id (prefix match)")
	logsCmd.Flags().StringVar(&logsGame, "game", "", "only this game id")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "only entries newer than this duration (e.g. 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "only lines matching this regular expression")
}

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

func levelColor(level string) string {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return colorGray
	case logging.LevelInfo:
		return colorBlue
	case logging.LevelWarn:
		return colorYellow
	case logging.LevelError:
		return colorRed
	default:
		return colorReset
	}
}

func runLogs(cmd *cobra.Command, args []string) error {
	filter := logging.Filter{
		MinLevel:  logsLevel,
		SessionID: logsSession,
		Game:      logsGame,
	}
	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		filter.Since = time.Now().Add(-d)
	}
	if logsGrep != "" {
		re, err := regexp.Compile(logsGrep)
		if err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
		filter.Pattern = re
	}

	path := filepath.Join(dataDir(), logging.FileName)
	entries, err := logging.ReadFile(path, filter, logsTail)
	if os.IsNotExist(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "No log yet at %s\n", path)
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := isTerminal(out)
	for _, e := range entries {
		printEntry(out, e, color)
	}
	return nil
}

func printEntry(w io.Writer, e logging.Entry, color bool) {
	var sb strings.Builder
	ts := e.Time.Format("15:04:05")
	level := fmt.Sprintf("%-5s", strings.ToUpper(e.Level))
	if color {
		sb.WriteString(colorGray + ts + colorReset + " " + levelColor(e.Level) + level + colorReset)
	} else {
		sb.WriteString(ts + " " + level)
	}
	sb.WriteString(" " + e.Message)
	for _, a := range e.Attrs {
		sb.WriteString(" " + a.Key + "=" + a.Value)
	}
	fmt.Fprintln(w, sb.String())
}

package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchsplit/couchsplit/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify couchsplit settings",
	Long: `View or modify couchsplit settings.

Without arguments, displays the current settings. Values can also be
overridden per run with COUCHSPLIT_<KEY> environment variables, e.g.
COUCHSPLIT_RENDER_SCALE=75.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long: `Set a setting in settings.json.

Valid keys:
  force_sdl              - Load the bundled SDL2 in native games (true/false)
  render_scale           - Percent of the screen resolution to render at (35-200)
  gamescope_sdl_backend  - Run gamescope with --backend sdl (true/false)
  proton_version         - Proton name or path for Windows games
  vertical_two_player    - Stack two players top/bottom (true/false)
  disable_steam_input    - Hide Steam Input virtual pads (true/false)
  log_level              - debug, info, warn or error`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the settings file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func settingsPath() string {
	return filepath.Join(dataDir(), config.FileName)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" && fileExists(used) {
		fmt.Fprintf(out, "# %s\n", used)
	} else {
		fmt.Fprintln(out, "# defaults (no settings file)")
	}
	_, err = out.Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	if err := applySetting(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Check(); err != nil {
		return err
	}

	path := settingsPath()
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), settingsPath())
	return nil
}

// applySetting parses value for key into cfg.
func applySetting(cfg *config.Config, key, value string) error {
	parseBool := func(dst *bool) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		*dst = b
		return nil
	}

	switch key {
	case config.KeyForceSDL:
		return parseBool(&cfg.ForceSDL)
	case config.KeyGamescopeSDLBackend:
		return parseBool(&cfg.GamescopeSDLBackend)
	case config.KeyVerticalTwoPlayer:
		return parseBool(&cfg.VerticalTwoPlayer)
	case config.KeyDisableSteamInput:
		return parseBool(&cfg.DisableSteamInput)
	case config.KeyRenderScale:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		cfg.RenderScale = n
	case config.KeyProtonVersion:
		cfg.ProtonVersion = strings.TrimSpace(value)
	case config.KeyLogLevel:
		cfg.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown setting: %s\nValid keys: %s", key, strings.Join(config.Keys(), ", "))
	}
	return nil
}

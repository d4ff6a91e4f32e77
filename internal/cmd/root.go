package cmd

import (
	"path/filepath"

	"github.com/couchsplit/couchsplit/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "couchsplit",
	Short: "Local splitscreen launcher for games without splitscreen",
	Long: `couchsplit runs one game instance per player, each in its own nested
compositor window sized to a share of the screen, each player with their
own controller and their own save data.

Without a subcommand it opens the interactive launcher.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var dataDirFlag string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default is $XDG_DATA_HOME/couchsplit)")
}

// dataDir is the effective data root.
func dataDir() string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	return config.DataDir()
}

func initConfig() {
	viper.Reset()
	config.SetDefaults()

	viper.SetConfigFile(filepath.Join(dataDir(), config.FileName))
	viper.SetConfigType("json")
	viper.SetEnvPrefix("COUCHSPLIT")
	viper.AutomaticEnv()

	// A missing settings file means defaults.
	_ = viper.ReadInConfig()
}

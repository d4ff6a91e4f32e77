package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/tidwall/sjson"
)

// Config represents the persisted couchsplit settings. The on-disk format is
// a flat JSON object in {data}/settings.json.
type Config struct {
	// ForceSDL makes native games load the Steam Runtime's SDL2 through
	// SDL_DYNAMIC_API. Fixes some controller mappings, breaks others.
	ForceSDL bool `mapstructure:"force_sdl" json:"force_sdl" yaml:"force_sdl"`
	// RenderScale is a percentage applied to the detected screen resolution
	// before it is partitioned across instances (35-200).
	RenderScale int `mapstructure:"render_scale" json:"render_scale" yaml:"render_scale"`
	// GamescopeSDLBackend runs each gamescope with --backend sdl.
	GamescopeSDLBackend bool `mapstructure:"gamescope_sdl_backend" json:"gamescope_sdl_backend" yaml:"gamescope_sdl_backend"`
	// ProtonVersion is a Proton name or path handed to umu-run. Empty means GE-Proton.
	ProtonVersion string `mapstructure:"proton_version" json:"proton_version" yaml:"proton_version"`
	// VerticalTwoPlayer stacks two players top/bottom instead of side by side.
	VerticalTwoPlayer bool `mapstructure:"vertical_two_player" json:"vertical_two_player" yaml:"vertical_two_player"`
	// DisableSteamInput ignores Steam Input virtual pads so a physical pad is not counted twice.
	DisableSteamInput bool `mapstructure:"disable_steam_input" json:"disable_steam_input" yaml:"disable_steam_input"`
	// LogLevel is the minimum level written to couchsplit.log.
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
}

// Settings keys as they appear in settings.json.
const (
	KeyForceSDL            = "force_sdl"
	KeyRenderScale         = "render_scale"
	KeyGamescopeSDLBackend = "gamescope_sdl_backend"
	KeyProtonVersion       = "proton_version"
	KeyVerticalTwoPlayer   = "vertical_two_player"
	KeyDisableSteamInput   = "disable_steam_input"
	KeyLogLevel            = "log_level"
)

// Render scale bounds in percent.
const (
	MinRenderScale = 35
	MaxRenderScale = 200
)

// DefaultProton is used when ProtonVersion is empty.
const DefaultProton = "GE-Proton"

// FileName is the settings file name inside the data directory.
const FileName = "settings.json"

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		ForceSDL:            false,
		RenderScale:         100,
		GamescopeSDLBackend: true,
		ProtonVersion:       "",
		VerticalTwoPlayer:   true,
		DisableSteamInput:   true,
		LogLevel:            "info",
	}
}

// Proton returns the effective Proton version.
func (c *Config) Proton() string {
	if c.ProtonVersion == "" {
		return DefaultProton
	}
	return c.ProtonVersion
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault(KeyForceSDL, defaults.ForceSDL)
	viper.SetDefault(KeyRenderScale, defaults.RenderScale)
	viper.SetDefault(KeyGamescopeSDLBackend, defaults.GamescopeSDLBackend)
	viper.SetDefault(KeyProtonVersion, defaults.ProtonVersion)
	viper.SetDefault(KeyVerticalTwoPlayer, defaults.VerticalTwoPlayer)
	viper.SetDefault(KeyDisableSteamInput, defaults.DisableSteamInput)
	viper.SetDefault(KeyLogLevel, defaults.LogLevel)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Check(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// Save writes the settings to path. Keys this version does not know about
// are left untouched so a settings file shared with other tools survives.
func Save(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read settings: %w", err)
		}
		data = []byte("{}")
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyForceSDL, cfg.ForceSDL},
		{KeyRenderScale, cfg.RenderScale},
		{KeyGamescopeSDLBackend, cfg.GamescopeSDLBackend},
		{KeyProtonVersion, cfg.ProtonVersion},
		{KeyVerticalTwoPlayer, cfg.VerticalTwoPlayer},
		{KeyDisableSteamInput, cfg.DisableSteamInput},
		{KeyLogLevel, cfg.LogLevel},
	}
	opts := &sjson.Options{Optimistic: true}
	for _, v := range values {
		data, err = sjson.SetBytesOptions(data, v.key, v.value, opts)
		if err != nil {
			return fmt.Errorf("failed to set %s: %w", v.key, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return os.Rename(tmp, path)
}

// DataDir returns the per-user application data root.
func DataDir() string {
	if dir := os.Getenv("COUCHSPLIT_DATA_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "couchsplit")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".couchsplit"
	}
	return filepath.Join(home, ".local", "share", "couchsplit")
}

// ConfigFile returns the path to the settings file
func ConfigFile() string {
	return filepath.Join(DataDir(), FileName)
}

// Keys returns the recognized settings keys in display order.
func Keys() []string {
	return []string{
		KeyForceSDL,
		KeyRenderScale,
		KeyGamescopeSDLBackend,
		KeyProtonVersion,
		KeyVerticalTwoPlayer,
		KeyDisableSteamInput,
		KeyLogLevel,
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RenderScale != 100 {
		t.Errorf("RenderScale = %d, want 100", cfg.RenderScale)
	}
	if !cfg.GamescopeSDLBackend {
		t.Error("GamescopeSDLBackend should be true by default")
	}
	if !cfg.VerticalTwoPlayer {
		t.Error("VerticalTwoPlayer should be true by default")
	}
	if !cfg.DisableSteamInput {
		t.Error("DisableSteamInput should be true by default")
	}
	if cfg.ForceSDL {
		t.Error("ForceSDL should be false by default")
	}
	if cfg.Proton() != DefaultProton {
		t.Errorf("Proton() = %q, want %q", cfg.Proton(), DefaultProton)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("defaults should validate, got %v", errs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"scale too low", func(c *Config) { c.RenderScale = 34 }, "render_scale"},
		{"scale too high", func(c *Config) { c.RenderScale = 201 }, "render_scale"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"multiline proton", func(c *Config) { c.ProtonVersion = "a\nb" }, "proton_version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.field)
			}
		})
	}

	t.Run("bounds are inclusive", func(t *testing.T) {
		for _, scale := range []int{MinRenderScale, MaxRenderScale} {
			cfg := Default()
			cfg.RenderScale = scale
			if errs := cfg.Validate(); len(errs) != 0 {
				t.Errorf("scale %d: unexpected errors %v", scale, errs)
			}
		}
	})
}

func TestCheck(t *testing.T) {
	cfg := Default()
	if err := cfg.Check(); err != nil {
		t.Fatalf("Check() = %v", err)
	}
	cfg.RenderScale = 1
	cfg.LogLevel = "x"
	err := cfg.Check()
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("Check() = %v, want invalid input", err)
	}
	for _, want := range []string{"render_scale", "log_level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Check() = %q, missing %s", err.Error(), want)
		}
	}
}

func TestLoad(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(`{"render_scale": 150, "vertical_two_player": false}`), 0644); err != nil {
		t.Fatal(err)
	}

	SetDefaults()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RenderScale != 150 {
		t.Errorf("RenderScale = %d, want 150", cfg.RenderScale)
	}
	if cfg.VerticalTwoPlayer {
		t.Error("VerticalTwoPlayer should come from the file")
	}
	if !cfg.DisableSteamInput {
		t.Error("DisableSteamInput should keep its default")
	}
}

func TestGet_FallsBackOnInvalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()
	viper.Set("render_scale", 5)

	cfg := Get()
	if cfg.RenderScale != 100 {
		t.Errorf("RenderScale = %d, want default 100", cfg.RenderScale)
	}
}

func TestSave(t *testing.T) {
	t.Run("creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", FileName)
		cfg := Default()
		cfg.RenderScale = 120

		if err := Save(cfg, path); err != nil {
			t.Fatalf("Save: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := gjson.GetBytes(data, "render_scale").Int(); got != 120 {
			t.Errorf("render_scale = %d, want 120", got)
		}
	})

	t.Run("preserves unknown keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		if err := os.WriteFile(path, []byte(`{"window_theme":"dark","force_sdl":false}`), 0644); err != nil {
			t.Fatal(err)
		}
		cfg := Default()
		cfg.ForceSDL = true

		if err := Save(cfg, path); err != nil {
			t.Fatalf("Save: %v", err)
		}
		data, _ := os.ReadFile(path)
		if gjson.GetBytes(data, "window_theme").String() != "dark" {
			t.Errorf("unknown key lost: %s", data)
		}
		if !gjson.GetBytes(data, "force_sdl").Bool() {
			t.Errorf("force_sdl not updated: %s", data)
		}
	})
}

func TestDataDir(t *testing.T) {
	t.Setenv("COUCHSPLIT_DATA_DIR", "")
	t.Setenv("XDG_DATA_HOME", "/xdg")
	if got := DataDir(); got != filepath.Join("/xdg", "couchsplit") {
		t.Errorf("DataDir() = %q", got)
	}

	t.Setenv("COUCHSPLIT_DATA_DIR", "/override")
	if got := DataDir(); got != "/override" {
		t.Errorf("DataDir() = %q", got)
	}
	if got := ConfigFile(); got != filepath.Join("/override", FileName) {
		t.Errorf("ConfigFile() = %q", got)
	}
}

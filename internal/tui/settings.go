package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchsplit/couchsplit/internal/config"
)

// settingItem is one editable field on the settings page.
type settingItem struct {
	Key         string
	Label       string
	Description string
	Type        string // "bool", "int", "string"
	get         func(*config.Config) any
	set         func(*config.Config, string) error
}

func boolItem(key, label, desc string, field func(*config.Config) *bool) settingItem {
	return settingItem{
		Key: key, Label: label, Description: desc, Type: "bool",
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: not a boolean", key)
			}
			*field(c) = b
			return nil
		},
	}
}

func settingItems() []settingItem {
	return []settingItem{
		boolItem(config.KeyVerticalTwoPlayer, "Vertical two player",
			"Stack two players top/bottom instead of side by side",
			func(c *config.Config) *bool { return &c.VerticalTwoPlayer }),
		{
			Key: config.KeyRenderScale, Label: "Render scale (%)", Type: "int",
			Description: "Resolution percentage each instance renders at (35-200)",
			get:         func(c *config.Config) any { return c.RenderScale },
			set: func(c *config.Config, v string) error {
				n, err := strconv.Atoi(strings.TrimSpace(v))
				if err != nil {
					return fmt.Errorf("render scale must be a number")
				}
				if n < config.MinRenderScale || n > config.MaxRenderScale {
					return fmt.Errorf("render scale must be between %d and %d", config.MinRenderScale, config.MaxRenderScale)
				}
				c.RenderScale = n
				return nil
			},
		},
		boolItem(config.KeyGamescopeSDLBackend, "Gamescope SDL backend",
			"Run gamescope with --backend sdl",
			func(c *config.Config) *bool { return &c.GamescopeSDLBackend }),
		boolItem(config.KeyForceSDL, "Force SDL",
			"Load the bundled SDL2 in native games; fixes some controller mappings",
			func(c *config.Config) *bool { return &c.ForceSDL }),
		boolItem(config.KeyDisableSteamInput, "Ignore Steam Input pads",
			"Hide Steam's virtual controllers so physical pads are not counted twice",
			func(c *config.Config) *bool { return &c.DisableSteamInput }),
		{
			Key: config.KeyProtonVersion, Label: "Proton version", Type: "string",
			Description: "Proton name or path for Windows games; empty uses " + config.DefaultProton,
			get:         func(c *config.Config) any { return c.ProtonVersion },
			set: func(c *config.Config, v string) error {
				if strings.ContainsAny(v, "\r\n") {
					return fmt.Errorf("proton version must be a single line")
				}
				c.ProtonVersion = strings.TrimSpace(v)
				return nil
			},
		},
	}
}

// display renders the item's current value.
func (it settingItem) display(c *config.Config) string {
	v := it.get(c)
	switch val := v.(type) {
	case bool:
		if val {
			return "on"
		}
		return "off"
	case string:
		if val == "" {
			return "(default)"
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

// toggle flips a bool or steps an int by delta.
func (it settingItem) toggle(c *config.Config, delta int) error {
	switch it.Type {
	case "bool":
		return it.set(c, strconv.FormatBool(!it.get(c).(bool)))
	case "int":
		return it.set(c, strconv.Itoa(it.get(c).(int)+delta))
	}
	return nil
}

// raw is the editable text form of the current value.
func (it settingItem) raw(c *config.Config) string {
	return fmt.Sprint(it.get(c))
}

// Package launch turns a set of players into the single composite shell
// command that runs one game instance per player.
package launch

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/couchsplit/couchsplit/internal/config"
	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/game"
	"github.com/couchsplit/couchsplit/internal/layout"
	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/couchsplit/couchsplit/internal/paths"
	"github.com/couchsplit/couchsplit/internal/profile"
	"github.com/couchsplit/couchsplit/internal/sandbox"
)

// Runner binaries. UmuRun is looked up in the resources directory.
const (
	Gamescope  = "gamescope"
	Bubblewrap = "bwrap"
	Env        = "env"
	UmuRun     = "umu-run"
	SDLLibrary = "libSDL2-2.0.so.0"
)

// Player is one joined player with a resolved profile.
type Player struct {
	// Pad indexes Request.Pads.
	Pad      int
	Profile  string
	Gamesave profile.Gamesave
}

// Request is everything needed to plan a session.
type Request struct {
	Game game.Game
	// Root is where the install is reachable: InstallDir or its symlink mirror.
	Root    string
	Pads    []string
	Players []Player
	// Screen is the detected physical resolution.
	ScreenWidth  int
	ScreenHeight int
}

// InstancePlan is the resolved configuration of one instance.
type InstancePlan struct {
	Index    int
	Profile  string
	Pad      string
	Viewport layout.Viewport
	// Render is the internal resolution after render scaling.
	Render layout.Viewport
	Mounts []sandbox.Mount
	Home   string
}

// Plan is a built session launch.
type Plan struct {
	Instances []InstancePlan
	Fragments []string
}

// Command joins the fragments into one shell command that starts every
// instance in the background and waits for all of them.
func (p *Plan) Command() string {
	if len(p.Fragments) == 0 {
		return ""
	}
	return strings.Join(p.Fragments, " & ") + " & wait"
}

// Builder builds plans from user settings.
type Builder struct {
	cfg    *config.Config
	layout paths.Layout
	logger *logging.Logger
	bwrap  bool
}

// NewBuilder returns a builder for the given settings and data layout.
func NewBuilder(cfg *config.Config, l paths.Layout, logger *logging.Logger) *Builder {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Builder{cfg: cfg, layout: l, logger: logger.WithComponent("launch"), bwrap: true}
}

// WithIsolator matches the instance wrapper to the save backend: bubblewrap
// for bind mounts, plain env for backends that redirect HOME.
func (b *Builder) WithIsolator(iso sandbox.Isolator) *Builder {
	b.bwrap = sandbox.UsesBubblewrap(iso)
	return b
}

// Build resolves every instance and its command fragment.
func (b *Builder) Build(req Request) (*Plan, error) {
	n := len(req.Players)
	if n == 0 {
		return nil, errors.ErrNoPlayers
	}
	if n > layout.MaxPlayers {
		return nil, errors.NewValidationError("too many players").WithField("players").WithValue(n)
	}
	if req.Game == nil {
		return nil, errors.NewValidationError("no game selected").WithField("game")
	}

	vertical := b.cfg.VerticalTwoPlayer
	scaledW, scaledH := layout.Scale(req.ScreenWidth, req.ScreenHeight, b.cfg.RenderScale)
	target := req.Game.Target(req.Root)
	desc := req.Game.Descriptor()

	if !b.bwrap && n > 1 {
		b.logger.Warn("bubblewrap unavailable, every instance sees every pad", "players", n)
	}

	plan := &Plan{}
	for i, p := range req.Players {
		if p.Pad < 0 || p.Pad >= len(req.Pads) {
			return nil, errors.NewValidationError("pad index out of range").WithField("pad").WithValue(p.Pad)
		}
		view, err := layout.Partition(n, i, req.ScreenWidth, req.ScreenHeight, vertical)
		if err != nil {
			return nil, err
		}
		render, err := layout.Partition(n, i, scaledW, scaledH, vertical)
		if err != nil {
			return nil, err
		}

		inst := InstancePlan{
			Index:    i,
			Profile:  p.Profile,
			Pad:      req.Pads[p.Pad],
			Viewport: view,
			Render:   render,
			Mounts:   p.Gamesave.Mounts,
			Home:     p.Gamesave.Home,
		}
		plan.Instances = append(plan.Instances, inst)
		plan.Fragments = append(plan.Fragments, shellescape.QuoteCommand(b.argv(inst, req.Pads, desc, target)))

		b.logger.Info("instance planned",
			"instance", fmt.Sprintf("%d/%d", i+1, n),
			"profile", inst.Profile,
			"pad", inst.Pad,
			"viewport", view.String(),
			"render", render.String(),
		)
	}
	return plan, nil
}

// argv assembles gamescope -> bwrap or env -> runner for one instance.
func (b *Builder) argv(inst InstancePlan, pads []string, desc game.Descriptor, target game.Target) []string {
	args := []string{
		Gamescope,
		"-W", strconv.Itoa(inst.Viewport.Width),
		"-H", strconv.Itoa(inst.Viewport.Height),
		"-w", strconv.Itoa(inst.Render.Width),
		"-h", strconv.Itoa(inst.Render.Height),
	}
	if b.cfg.GamescopeSDLBackend {
		args = append(args, "--backend", "sdl")
	}
	args = append(args, "--")

	env := b.env(inst, desc, target)
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if b.bwrap {
		args = append(args, Bubblewrap, "--dev-bind", "/", "/")
		// Every other pad is hidden so the instance only sees its own.
		for _, pad := range pads {
			if pad != inst.Pad {
				args = append(args, "--bind", "/dev/null", pad)
			}
		}
		for _, m := range inst.Mounts {
			args = append(args, m.Args()...)
		}
		for _, k := range keys {
			args = append(args, "--setenv", k, env[k])
		}
		if target.Dir != "" {
			args = append(args, "--chdir", target.Dir)
		}
	} else {
		args = append(args, Env)
		if target.Dir != "" {
			args = append(args, "-C", target.Dir)
		}
		for _, k := range keys {
			args = append(args, k+"="+env[k])
		}
	}

	if desc.Windows {
		args = append(args, filepath.Join(b.layout.Resources(), UmuRun))
	}
	args = append(args, target.Program)
	return append(args, target.Args...)
}

func (b *Builder) env(inst InstancePlan, desc game.Descriptor, target game.Target) map[string]string {
	env := make(map[string]string, len(target.Env)+4)
	for k, v := range target.Env {
		env[k] = v
	}
	if inst.Home != "" {
		env["HOME"] = inst.Home
	}
	if desc.Windows {
		gameID := "0"
		if desc.AppID != "" {
			gameID = desc.AppID
		}
		env["PROTONPATH"] = b.cfg.Proton()
		env["WINEPREFIX"] = b.layout.Prefix()
		env["GAMEID"] = "umu-" + gameID
	} else if b.cfg.ForceSDL {
		env["SDL_DYNAMIC_API"] = filepath.Join(b.layout.Resources(), SDLLibrary)
	}
	return env
}

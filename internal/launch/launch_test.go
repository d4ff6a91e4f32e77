package launch

import (
	"strings"
	"testing"

	"github.com/couchsplit/couchsplit/internal/config"
	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/game"
	"github.com/couchsplit/couchsplit/internal/layout"
	"github.com/couchsplit/couchsplit/internal/paths"
	"github.com/couchsplit/couchsplit/internal/profile"
	"github.com/couchsplit/couchsplit/internal/sandbox"
)

var testLayout = paths.New("/data")

func nativeGame() game.Game {
	return game.Executable{Path: "/games/tux/supertux2"}
}

func windowsGame() game.Game {
	return game.Handler{
		Desc: game.Descriptor{ID: "celeste", Name: "Celeste", AppID: "504230", Windows: true, IsolateSaves: true},
		Exec: "Celeste.exe",
		Args: []string{"--windowed"},
	}
}

func TestBuild_TwoPlayersSideBySide(t *testing.T) {
	cfg := config.Default()
	cfg.VerticalTwoPlayer = false
	cfg.GamescopeSDLBackend = false

	plan, err := NewBuilder(cfg, testLayout, nil).Build(Request{
		Game:         nativeGame(),
		Root:         "/games/tux",
		Pads:         []string{"/dev/input/event5", "/dev/input/event6"},
		Players:      []Player{{Pad: 1, Profile: ".Inky"}, {Pad: 0, Profile: "alice"}},
		ScreenWidth:  1920,
		ScreenHeight: 1080,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(plan.Instances) != 2 {
		t.Fatalf("instances = %d", len(plan.Instances))
	}
	want := []layout.Viewport{{X: 0, Y: 0, Width: 960, Height: 1080}, {X: 960, Y: 0, Width: 960, Height: 1080}}
	for i, inst := range plan.Instances {
		if inst.Viewport != want[i] {
			t.Errorf("instance %d viewport = %v, want %v", i, inst.Viewport, want[i])
		}
		if inst.Index != i {
			t.Errorf("instance %d index = %d", i, inst.Index)
		}
	}
	if plan.Instances[0].Pad != "/dev/input/event6" || plan.Instances[0].Profile != ".Inky" {
		t.Errorf("instance 0 = %+v", plan.Instances[0])
	}

	wantFrag := "gamescope -W 960 -H 1080 -w 960 -h 1080 -- bwrap --dev-bind / / " +
		"--bind /dev/null /dev/input/event5 --chdir /games/tux /games/tux/supertux2"
	if plan.Fragments[0] != wantFrag {
		t.Errorf("fragment 0 =\n%s\nwant\n%s", plan.Fragments[0], wantFrag)
	}

	cmd := plan.Command()
	if strings.Count(cmd, "gamescope") != 2 || !strings.HasSuffix(cmd, " & wait") {
		t.Errorf("Command() = %q", cmd)
	}
	if !strings.Contains(cmd, "supertux2 & gamescope") {
		t.Errorf("fragments should be joined with ' & ': %q", cmd)
	}
}

func TestBuild_WindowsRunner(t *testing.T) {
	cfg := config.Default()
	cfg.RenderScale = 50

	gs := profile.Gamesave{Mounts: []sandbox.Mount{{Source: "/data/profiles/alice/saves/celeste/0", Target: "/home/u/.celeste"}}}
	plan, err := NewBuilder(cfg, testLayout, nil).Build(Request{
		Game:         windowsGame(),
		Root:         "/data/gamesyms/celeste",
		Pads:         []string{"/dev/input/event5"},
		Players:      []Player{{Pad: 0, Profile: "alice", Gamesave: gs}},
		ScreenWidth:  1920,
		ScreenHeight: 1080,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	frag := plan.Fragments[0]
	for _, want := range []string{
		"-W 1920 -H 1080 -w 960 -h 540 --backend sdl",
		"--bind /data/profiles/alice/saves/celeste/0 /home/u/.celeste",
		"--setenv GAMEID umu-504230",
		"--setenv PROTONPATH GE-Proton",
		"--setenv WINEPREFIX /data/pfx",
		"/data/res/umu-run /data/gamesyms/celeste/Celeste.exe --windowed",
	} {
		if !strings.Contains(frag, want) {
			t.Errorf("fragment missing %q:\n%s", want, frag)
		}
	}
	if strings.Contains(frag, "/dev/null") {
		t.Error("a single player hides no pads")
	}
	if strings.Contains(frag, "SDL_DYNAMIC_API") {
		t.Error("force_sdl is off by default")
	}
}

func TestBuild_ForceSDLAndHome(t *testing.T) {
	cfg := config.Default()
	cfg.ForceSDL = true
	cfg.ProtonVersion = "unused"

	plan, err := NewBuilder(cfg, testLayout, nil).Build(Request{
		Game:         nativeGame(),
		Root:         "/games/tux",
		Pads:         []string{"/dev/input/event5"},
		Players:      []Player{{Pad: 0, Profile: ".Inky", Gamesave: profile.Gamesave{Home: "/data/profiles/.Inky/home"}}},
		ScreenWidth:  1280,
		ScreenHeight: 800,
	})
	if err != nil {
		t.Fatal(err)
	}
	frag := plan.Fragments[0]
	if !strings.Contains(frag, "--setenv HOME /data/profiles/.Inky/home --setenv SDL_DYNAMIC_API /data/res/libSDL2-2.0.so.0") {
		t.Errorf("fragment = %s", frag)
	}
	if strings.Contains(frag, "PROTONPATH") || strings.Contains(frag, "umu-run") {
		t.Error("native games do not use the compatibility layer")
	}
}

func TestBuild_WithoutBubblewrap(t *testing.T) {
	cfg := config.Default()
	cfg.VerticalTwoPlayer = false
	cfg.GamescopeSDLBackend = false

	plan, err := NewBuilder(cfg, testLayout, nil).WithIsolator(sandbox.HomeIsolator{}).Build(Request{
		Game: nativeGame(),
		Root: "/games/tux",
		Pads: []string{"/dev/input/event5", "/dev/input/event6"},
		Players: []Player{
			{Pad: 0, Profile: ".Inky", Gamesave: profile.Gamesave{Home: "/data/profiles/.Inky/home"}},
			{Pad: 1, Profile: "alice", Gamesave: profile.Gamesave{Home: "/data/profiles/alice/home"}},
		},
		ScreenWidth:  1920,
		ScreenHeight: 1080,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantFrag := "gamescope -W 960 -H 1080 -w 960 -h 1080 -- env -C /games/tux " +
		"HOME=/data/profiles/.Inky/home /games/tux/supertux2"
	if plan.Fragments[0] != wantFrag {
		t.Errorf("fragment 0 =\n%s\nwant\n%s", plan.Fragments[0], wantFrag)
	}
	cmd := plan.Command()
	if strings.Contains(cmd, Bubblewrap) || strings.Contains(cmd, "--bind") {
		t.Errorf("command must not need bubblewrap: %s", cmd)
	}
	if !strings.Contains(plan.Fragments[1], "HOME=/data/profiles/alice/home") {
		t.Errorf("fragment 1 = %s", plan.Fragments[1])
	}

	withBind := NewBuilder(cfg, testLayout, nil).WithIsolator(sandbox.BindIsolator{})
	if !withBind.bwrap {
		t.Error("bind backend must keep bubblewrap")
	}
}

func TestBuild_ThreePlayers(t *testing.T) {
	plan, err := NewBuilder(nil, testLayout, nil).Build(Request{
		Game:         nativeGame(),
		Root:         "/games/tux",
		Pads:         []string{"a", "b", "c"},
		Players:      []Player{{Pad: 0}, {Pad: 1}, {Pad: 2}},
		ScreenWidth:  1920,
		ScreenHeight: 1080,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []layout.Viewport{
		{X: 0, Y: 0, Width: 1920, Height: 540},
		{X: 0, Y: 540, Width: 960, Height: 540},
		{X: 960, Y: 540, Width: 960, Height: 540},
	}
	for i, inst := range plan.Instances {
		if inst.Viewport != want[i] {
			t.Errorf("instance %d = %v, want %v", i, inst.Viewport, want[i])
		}
	}
	if !strings.Contains(plan.Fragments[0], "--bind /dev/null b --bind /dev/null c") {
		t.Errorf("fragment 0 should hide pads b and c: %s", plan.Fragments[0])
	}
}

func TestBuild_QuotesPaths(t *testing.T) {
	plan, err := NewBuilder(nil, testLayout, nil).Build(Request{
		Game:         game.Executable{Path: "/games/Stardew Valley/Stardew Valley"},
		Root:         "/games/Stardew Valley",
		Pads:         []string{"p"},
		Players:      []Player{{Pad: 0}},
		ScreenWidth:  1920,
		ScreenHeight: 1080,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(plan.Fragments[0], "'/games/Stardew Valley/Stardew Valley'") {
		t.Errorf("program path not quoted: %s", plan.Fragments[0])
	}
}

func TestBuild_Invalid(t *testing.T) {
	b := NewBuilder(nil, testLayout, nil)
	base := Request{Game: nativeGame(), Pads: []string{"p"}, ScreenWidth: 1920, ScreenHeight: 1080}

	if _, err := b.Build(base); !errors.Is(err, errors.ErrNoPlayers) {
		t.Errorf("no players = %v", err)
	}

	tooMany := base
	tooMany.Pads = []string{"a", "b", "c", "d", "e"}
	tooMany.Players = []Player{{Pad: 0}, {Pad: 1}, {Pad: 2}, {Pad: 3}, {Pad: 4}}
	if _, err := b.Build(tooMany); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("five players = %v", err)
	}

	badPad := base
	badPad.Players = []Player{{Pad: 3}}
	if _, err := b.Build(badPad); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("pad out of range = %v", err)
	}

	noGame := base
	noGame.Game = nil
	noGame.Players = []Player{{Pad: 0}}
	if _, err := b.Build(noGame); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("no game = %v", err)
	}
}

func TestPlanCommand_Empty(t *testing.T) {
	if (&Plan{}).Command() != "" {
		t.Error("empty plan has no command")
	}
}

// Package session runs one splitscreen session: profiles and sandboxes are
// prepared for every player, the launch plan is built, the tiling script
// brackets the blocking game run, and guest profiles are removed on every
// exit path.
package session

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/couchsplit/couchsplit/internal/compositor"
	"github.com/couchsplit/couchsplit/internal/config"
	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/game"
	"github.com/couchsplit/couchsplit/internal/launch"
	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/couchsplit/couchsplit/internal/paths"
	"github.com/couchsplit/couchsplit/internal/players"
	"github.com/couchsplit/couchsplit/internal/profile"
	"github.com/google/uuid"
)

// Request describes a session to launch.
type Request struct {
	Game game.Game
	// Pads are the device paths slot pad indices refer to.
	Pads  []string
	Slots []players.Slot
	// Profiles is the selectable list slots index into; entry 0 is the guest.
	Profiles []string
}

// Result describes a finished session.
type Result struct {
	ID string
	// Slots carry the resolved profile names.
	Slots []players.Slot
	Plan  *launch.Plan
}

// Options wires an Orchestrator.
type Options struct {
	Config *config.Config
	// ConfigPath is where settings are saved before launch. Empty skips it.
	ConfigPath  string
	Layout      paths.Layout
	Profiles    *profile.Manager
	Builder     *launch.Builder
	Coordinator *compositor.Coordinator
	Runner      Runner
	// Screen returns the physical resolution.
	Screen func() (int, int)
	// Rand drives guest draws. Nil uses the global source.
	Rand   *rand.Rand
	Logger *logging.Logger
}

// Orchestrator launches sessions one at a time.
type Orchestrator struct {
	opts    Options
	logger  *logging.Logger
	running atomic.Bool
}

// New returns an orchestrator. Config, Runner and Screen get defaults when
// unset.
func New(opts Options) *Orchestrator {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Runner == nil {
		opts.Runner = &ShellRunner{}
	}
	if opts.Screen == nil {
		opts.Screen = func() (int, int) { return 1920, 1080 }
	}
	return &Orchestrator{opts: opts, logger: opts.Logger.WithComponent("session")}
}

// Running reports whether a session is in progress.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// Launch runs a session to completion. It blocks until the game exits;
// there is no cancellation. Guest profiles are removed before it returns
// whatever happened, and a tiling script that was loaded is unloaded
// exactly once after the game exits.
func (o *Orchestrator) Launch(req Request) (res *Result, err error) {
	if len(req.Slots) == 0 {
		return nil, errors.ErrNoPlayers
	}
	if req.Game == nil {
		return nil, errors.NewValidationError("no game selected").WithField("game")
	}
	if !o.running.CompareAndSwap(false, true) {
		return nil, errors.ErrLaunchInProgress
	}
	defer o.running.Store(false)

	desc := req.Game.Descriptor()
	id := uuid.NewString()
	logger := o.logger.WithSession(id).WithGame(desc.ID)
	wrap := func(e error) error {
		if e == nil {
			return nil
		}
		var serr *errors.SessionError
		if errors.As(e, &serr) {
			return e
		}
		return errors.NewSessionError("launch failed", e).WithSessionID(id).WithGame(desc.ID)
	}

	lock, err := AcquireLock(o.opts.Layout.Root, id, desc.ID, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			logger.Warn("failed to release session lock", "error", rerr)
		}
	}()

	// Guests go away on every path out of Launch, including panics.
	defer func() {
		if cerr := o.opts.Profiles.RemoveGuests(); cerr != nil {
			logger.Error("failed to remove guest profiles", "error", cerr)
			if err == nil {
				err = wrap(cerr)
			}
		}
	}()

	if o.opts.ConfigPath != "" {
		if serr := config.Save(o.opts.Config, o.opts.ConfigPath); serr != nil {
			logger.Error("failed to save settings", "error", serr)
		}
	}

	logger.Info("starting session", "players", len(req.Slots), "game_name", desc.Name)

	slots, err := o.resolveProfiles(req)
	if err != nil {
		return nil, wrap(err)
	}

	lplayers := make([]launch.Player, len(slots))
	for i, s := range slots {
		if err := o.opts.Profiles.Create(s.ProfileName); err != nil {
			return nil, wrap(err)
		}
		gs, err := o.opts.Profiles.CreateGamesave(s.ProfileName, desc)
		if err != nil {
			return nil, wrap(err)
		}
		lplayers[i] = launch.Player{Pad: s.Pad, Profile: s.ProfileName, Gamesave: gs}
		logger.WithPlayer(i).Info("profile ready", "profile", s.ProfileName, "pad_index", s.Pad, "mounts", len(gs.Mounts))
	}

	root := desc.InstallDir
	if desc.SymlinkDir {
		if root, err = o.opts.Profiles.CreateSymlinkFolder(desc); err != nil {
			return nil, wrap(err)
		}
	}

	w, h := o.opts.Screen()
	plan, err := o.opts.Builder.Build(launch.Request{
		Game:         req.Game,
		Root:         root,
		Pads:         req.Pads,
		Players:      lplayers,
		ScreenWidth:  w,
		ScreenHeight: h,
	})
	if err != nil {
		return nil, wrap(err)
	}
	res = &Result{ID: id, Slots: slots, Plan: plan}

	coord := o.opts.Coordinator
	if err := coord.Load(o.opts.Config.VerticalTwoPlayer); err != nil {
		if coord.Loaded() {
			o.unload(logger)
		}
		return res, wrap(err)
	}

	logger.Info("running game", "command", plan.Command())
	runErr := o.opts.Runner.Run(plan.Command())
	o.unload(logger)

	if runErr != nil {
		logger.Error("game exited with error", "error", runErr)
		return res, wrap(runErr)
	}
	logger.Info("game finished")
	return res, nil
}

func (o *Orchestrator) unload(logger *logging.Logger) {
	if err := o.opts.Coordinator.Unload(); err != nil {
		logger.Error("failed to unload tiling script", "error", err)
	}
}

// resolveProfiles fills in ProfileName: guests draw from a fresh pool,
// everyone else uses their selection.
func (o *Orchestrator) resolveProfiles(req Request) ([]players.Slot, error) {
	pool := profile.NewGuestPool(o.opts.Rand)
	taken := make(map[int]int, len(req.Slots))
	slots := make([]players.Slot, len(req.Slots))
	for i, s := range req.Slots {
		if s.Guest() {
			name, err := pool.Draw()
			if err != nil {
				return nil, err
			}
			s.ProfileName = name
		} else {
			if s.Profile >= len(req.Profiles) {
				return nil, errors.NewValidationError("profile selection out of range").WithField("profile").WithValue(s.Profile)
			}
			// Two instances on one save directory would overwrite each other.
			if other, dup := taken[s.Profile]; dup {
				return nil, errors.NewValidationError(fmt.Sprintf("profile already chosen by player %d", other+1)).
					WithField("profile").WithValue(req.Profiles[s.Profile])
			}
			taken[s.Profile] = i
			s.ProfileName = req.Profiles[s.Profile]
		}
		slots[i] = s
	}
	return slots, nil
}

// Package players maps controllers to ordered player slots.
//
// An Assignment is driven once per input tick by Tick. It is owned by the
// polling goroutine and does no locking.
package players

import (
	"slices"

	"github.com/couchsplit/couchsplit/internal/gamepad"
	"github.com/couchsplit/couchsplit/internal/logging"
)

// MaxSlots is the maximum number of players in one session.
const MaxSlots = 4

// GuestLabel is the display name of profile selection 0.
const GuestLabel = "Guest"

// Pad is the part of a controller the assignment needs.
type Pad interface {
	Poll() gamepad.Button
	Path() string
}

// State summarizes how many players have joined. It is not the launch
// gate: Start is accepted in StatePopulating and StateFull alike, and
// CanStart is the check that also accounts for a launch in flight.
type State int

const (
	// StateIdle has no players.
	StateIdle State = iota
	// StatePopulating has at least one player and room for more.
	StatePopulating
	// StateFull has every slot filled; further joins are ignored.
	StateFull
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePopulating:
		return "populating"
	case StateFull:
		return "full"
	default:
		return "unknown"
	}
}

// Action is what the caller must do after a tick.
type Action int

const (
	ActionNone Action = iota
	// ActionBack returns to the page that preceded assignment.
	ActionBack
	// ActionLaunch starts a session with the current slots.
	ActionLaunch
)

// Slot binds one pad to a player.
type Slot struct {
	// Pad indexes the pad list passed to Tick.
	Pad int
	// Profile indexes Profiles(); 0 is the guest.
	Profile int
	// ProfileName is resolved at launch time.
	ProfileName string
}

// Guest reports whether the slot plays as an ephemeral guest.
func (s Slot) Guest() bool {
	return s.Profile == 0
}

// Assignment is the player assignment state machine.
type Assignment struct {
	slots     []Slot
	profiles  []string
	launching bool
	logger    *logging.Logger
}

// New returns an empty assignment.
func New(logger *logging.Logger) *Assignment {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Assignment{
		profiles: []string{GuestLabel},
		logger:   logger.WithComponent("players"),
	}
}

// Enter refreshes the persistent profile list. Call it when the page is
// shown. Slot selections beyond the new list fall back to guest.
func (a *Assignment) Enter(profiles []string) {
	a.profiles = append([]string{GuestLabel}, profiles...)
	for i := range a.slots {
		if a.slots[i].Profile >= len(a.profiles) {
			a.slots[i].Profile = 0
		}
	}
}

// Profiles returns the selectable profiles, guest first.
func (a *Assignment) Profiles() []string {
	return slices.Clone(a.profiles)
}

// Slots returns a copy of the current slots in join order.
func (a *Assignment) Slots() []Slot {
	return slices.Clone(a.slots)
}

// Len is the number of joined players.
func (a *Assignment) Len() int {
	return len(a.slots)
}

// State derives the state from the slot count.
func (a *Assignment) State() State {
	switch n := len(a.slots); {
	case n == 0:
		return StateIdle
	case n < MaxSlots:
		return StatePopulating
	default:
		return StateFull
	}
}

// CanStart reports whether a launch may be triggered.
func (a *Assignment) CanStart() bool {
	return len(a.slots) > 0 && !a.launching
}

// SetLaunching marks a launch as in progress. Start presses are ignored
// until it is cleared.
func (a *Assignment) SetLaunching(v bool) {
	a.launching = v
}

// Launching reports whether a launch is in progress.
func (a *Assignment) Launching() bool {
	return a.launching
}

// ProfileLabel is the display name of slot i's selected profile.
func (a *Assignment) ProfileLabel(i int) string {
	if i < 0 || i >= len(a.slots) {
		return ""
	}
	return a.profiles[a.slots[i].Profile]
}

// Reset drops every slot.
func (a *Assignment) Reset() {
	a.slots = nil
	a.launching = false
}

// Bound reports whether pad index i belongs to a slot.
func (a *Assignment) Bound(pad int) bool {
	return a.slotOf(pad) >= 0
}

func (a *Assignment) slotOf(pad int) int {
	for i, s := range a.slots {
		if s.Pad == pad {
			return i
		}
	}
	return -1
}

// Tick polls every pad once and applies the resulting edges. Unbound pads
// are polled first so a pad never joins and acts in the same tick.
func (a *Assignment) Tick(pads []Pad) Action {
	action := ActionNone

	for i, p := range pads {
		if a.Bound(i) {
			continue
		}
		switch p.Poll() {
		case gamepad.ButtonA:
			if len(a.slots) < MaxSlots {
				a.slots = append(a.slots, Slot{Pad: i})
				a.logger.Info("player joined", "player", len(a.slots), "pad", p.Path())
			}
		case gamepad.ButtonB:
			if len(a.slots) == 0 {
				action = ActionBack
			}
		}
	}

	for i := 0; i < len(a.slots); {
		s := &a.slots[i]
		if s.Pad >= len(pads) {
			i++
			continue
		}
		switch pads[s.Pad].Poll() {
		case gamepad.ButtonB:
			a.logger.Info("player left", "player", i+1, "pad", pads[s.Pad].Path())
			a.slots = slices.Delete(a.slots, i, i+1)
			if len(a.slots) == 0 {
				action = ActionBack
			}
			continue
		case gamepad.ButtonStart:
			if !a.launching {
				action = ActionLaunch
			}
		case gamepad.ButtonLeft:
			s.Profile = a.cycle(i, -1)
		case gamepad.ButtonRight:
			s.Profile = a.cycle(i, 1)
		}
		i++
	}

	return action
}

// cycle steps slot i's selection by delta, skipping persistent profiles
// another slot holds. Guest is never held.
func (a *Assignment) cycle(i, delta int) int {
	n := len(a.profiles)
	next := a.slots[i].Profile
	for range n {
		next = ((next+delta)%n + n) % n
		if next == 0 || !a.held(next, i) {
			return next
		}
	}
	return a.slots[i].Profile
}

func (a *Assignment) held(profile, except int) bool {
	for j, s := range a.slots {
		if j != except && s.Profile == profile {
			return true
		}
	}
	return false
}

// Rebind remaps slots after a device rescan. oldPaths and newPaths are the
// device paths of the pad lists before and after. A slot whose device is
// still present keeps its position with the new index; a slot whose device
// vanished is dropped.
func (a *Assignment) Rebind(oldPaths, newPaths []string) {
	index := make(map[string]int, len(newPaths))
	for i, p := range newPaths {
		index[p] = i
	}

	kept := a.slots[:0]
	for _, s := range a.slots {
		if s.Pad < 0 || s.Pad >= len(oldPaths) {
			continue
		}
		j, ok := index[oldPaths[s.Pad]]
		if !ok {
			a.logger.Warn("player pad disconnected", "pad", oldPaths[s.Pad])
			continue
		}
		s.Pad = j
		kept = append(kept, s)
	}
	a.slots = kept
}

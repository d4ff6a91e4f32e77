package players

import (
	"math/rand"
	"testing"

	"github.com/couchsplit/couchsplit/internal/gamepad"
)

type fakePad struct {
	path    string
	pending gamepad.Button
}

func (p *fakePad) Poll() gamepad.Button {
	b := p.pending
	p.pending = gamepad.ButtonNone
	return b
}

func (p *fakePad) Path() string { return p.path }

func newPads(paths ...string) ([]*fakePad, []Pad) {
	fakes := make([]*fakePad, len(paths))
	pads := make([]Pad, len(paths))
	for i, path := range paths {
		fakes[i] = &fakePad{path: path}
		pads[i] = fakes[i]
	}
	return fakes, pads
}

func TestTick_JoinAndLeave(t *testing.T) {
	fakes, pads := newPads("/dev/input/event1", "/dev/input/event2")
	a := New(nil)

	fakes[1].pending = gamepad.ButtonA
	if got := a.Tick(pads); got != ActionNone {
		t.Fatalf("Tick() = %v, want none", got)
	}
	fakes[0].pending = gamepad.ButtonA
	a.Tick(pads)

	slots := a.Slots()
	if len(slots) != 2 || slots[0].Pad != 1 || slots[1].Pad != 0 {
		t.Fatalf("Slots() = %+v, want pads [1 0] in join order", slots)
	}
	if !slots[0].Guest() {
		t.Error("new slots default to guest")
	}
	if a.State() != StatePopulating {
		t.Errorf("State() = %v, want populating", a.State())
	}

	fakes[1].pending = gamepad.ButtonB
	if got := a.Tick(pads); got != ActionNone {
		t.Errorf("Tick() = %v, removing one of two should not go back", got)
	}
	if a.Len() != 1 || a.Slots()[0].Pad != 0 {
		t.Fatalf("Slots() = %+v", a.Slots())
	}

	fakes[0].pending = gamepad.ButtonB
	if got := a.Tick(pads); got != ActionBack {
		t.Errorf("Tick() = %v, emptying the list should go back", got)
	}
	if a.State() != StateIdle {
		t.Errorf("State() = %v, want idle", a.State())
	}
}

func TestTick_BackWithNoPlayers(t *testing.T) {
	fakes, pads := newPads("/dev/input/event1")
	a := New(nil)
	fakes[0].pending = gamepad.ButtonB
	if got := a.Tick(pads); got != ActionBack {
		t.Errorf("Tick() = %v, want back", got)
	}
}

func TestTick_CapAtMax(t *testing.T) {
	fakes, pads := newPads("e0", "e1", "e2", "e3", "e4")
	a := New(nil)
	for _, f := range fakes {
		f.pending = gamepad.ButtonA
	}
	a.Tick(pads)
	if a.Len() != MaxSlots {
		t.Fatalf("Len() = %d, want %d", a.Len(), MaxSlots)
	}
	if a.State() != StateFull {
		t.Errorf("State() = %v, want full", a.State())
	}
	if a.Bound(4) {
		t.Error("fifth pad must not be bound")
	}
}

func TestTick_Launch(t *testing.T) {
	fakes, pads := newPads("e0", "e1")
	a := New(nil)

	fakes[0].pending = gamepad.ButtonStart
	if got := a.Tick(pads); got != ActionNone {
		t.Errorf("Start on an unbound pad = %v, want none", got)
	}

	fakes[0].pending = gamepad.ButtonA
	a.Tick(pads)
	fakes[0].pending = gamepad.ButtonStart
	if got := a.Tick(pads); got != ActionLaunch {
		t.Errorf("Tick() = %v, want launch", got)
	}

	a.SetLaunching(true)
	if a.CanStart() {
		t.Error("CanStart() should be false while launching")
	}
	fakes[0].pending = gamepad.ButtonStart
	if got := a.Tick(pads); got != ActionNone {
		t.Errorf("Tick() = %v, launch in progress should be ignored", got)
	}
}

func TestTick_ProfileCycling(t *testing.T) {
	fakes, pads := newPads("e0")
	a := New(nil)
	a.Enter([]string{"alice", "bob"})

	fakes[0].pending = gamepad.ButtonA
	a.Tick(pads)

	steps := []struct {
		btn  gamepad.Button
		want string
	}{
		{gamepad.ButtonRight, "alice"},
		{gamepad.ButtonRight, "bob"},
		{gamepad.ButtonRight, GuestLabel},
		{gamepad.ButtonLeft, "bob"},
	}
	for _, s := range steps {
		fakes[0].pending = s.btn
		a.Tick(pads)
		if got := a.ProfileLabel(0); got != s.want {
			t.Fatalf("after %v ProfileLabel(0) = %q, want %q", s.btn, got, s.want)
		}
	}

	a.Enter([]string{"alice"})
	if got := a.ProfileLabel(0); got != GuestLabel {
		t.Errorf("stale selection should reset to guest, got %q", got)
	}
}

func TestTick_ProfileCyclingSkipsHeld(t *testing.T) {
	fakes, pads := newPads("e0", "e1")
	a := New(nil)
	a.Enter([]string{"alice", "bob"})

	fakes[0].pending = gamepad.ButtonA
	fakes[1].pending = gamepad.ButtonA
	a.Tick(pads)

	fakes[0].pending = gamepad.ButtonRight
	a.Tick(pads)
	if got := a.ProfileLabel(0); got != "alice" {
		t.Fatalf("player 1 = %q, want alice", got)
	}

	fakes[1].pending = gamepad.ButtonRight
	a.Tick(pads)
	if got := a.ProfileLabel(1); got != "bob" {
		t.Errorf("player 2 Right = %q, want alice skipped", got)
	}
	fakes[1].pending = gamepad.ButtonRight
	a.Tick(pads)
	if got := a.ProfileLabel(1); got != GuestLabel {
		t.Errorf("player 2 Right = %q, want guest", got)
	}
	fakes[1].pending = gamepad.ButtonLeft
	a.Tick(pads)
	if got := a.ProfileLabel(1); got != "bob" {
		t.Errorf("player 2 Left = %q, want bob", got)
	}

	// Both take a persistent profile; the only other choice left is guest.
	fakes[0].pending = gamepad.ButtonRight
	a.Tick(pads)
	if got := a.ProfileLabel(0); got != GuestLabel {
		t.Errorf("player 1 Right = %q, want bob skipped", got)
	}
}

func TestInvariants_RandomEdges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	buttons := []gamepad.Button{gamepad.ButtonNone, gamepad.ButtonA, gamepad.ButtonB, gamepad.ButtonStart, gamepad.ButtonLeft, gamepad.ButtonRight}
	fakes, pads := newPads("e0", "e1", "e2", "e3", "e4", "e5")
	a := New(nil)
	a.Enter([]string{"alice", "bob"})

	for step := 0; step < 5000; step++ {
		for _, f := range fakes {
			f.pending = buttons[rng.Intn(len(buttons))]
		}
		a.Tick(pads)

		slots := a.Slots()
		if len(slots) > MaxSlots {
			t.Fatalf("step %d: %d slots", step, len(slots))
		}
		seen := map[int]bool{}
		chosen := map[int]bool{}
		for _, s := range slots {
			if seen[s.Pad] {
				t.Fatalf("step %d: pad %d bound twice: %+v", step, s.Pad, slots)
			}
			seen[s.Pad] = true
			if !s.Guest() && chosen[s.Profile] {
				t.Fatalf("step %d: profile %d chosen twice: %+v", step, s.Profile, slots)
			}
			chosen[s.Profile] = true
		}
	}
}

func TestRebind(t *testing.T) {
	fakes, pads := newPads("/dev/input/event3", "/dev/input/event5", "/dev/input/event7")
	a := New(nil)
	fakes[2].pending = gamepad.ButtonA
	fakes[0].pending = gamepad.ButtonA
	a.Tick(pads)
	oldPaths := []string{"/dev/input/event3", "/dev/input/event5", "/dev/input/event7"}

	t.Run("both devices still present", func(t *testing.T) {
		b := *a
		b.slots = a.Slots()
		newPaths := []string{"/dev/input/event7", "/dev/input/event3", "/dev/input/event9"}
		b.Rebind(oldPaths, newPaths)

		slots := b.Slots()
		if len(slots) != 2 {
			t.Fatalf("Slots() = %+v, want both kept", slots)
		}
		if slots[0].Pad != 1 || slots[1].Pad != 0 {
			t.Errorf("Slots() = %+v, want pads remapped to [1 0]", slots)
		}
	})

	t.Run("vanished device dropped", func(t *testing.T) {
		b := *a
		b.slots = a.Slots()
		b.Rebind(oldPaths, []string{"/dev/input/event7"})

		slots := b.Slots()
		if len(slots) != 1 || slots[0].Pad != 0 {
			t.Errorf("Slots() = %+v, want only event7 at index 0", slots)
		}
	})
}

func TestStateString(t *testing.T) {
	if StateFull.String() != "full" || State(9).String() != "unknown" {
		t.Error("unexpected state names")
	}
}

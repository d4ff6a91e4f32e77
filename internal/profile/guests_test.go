package profile

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/couchsplit/couchsplit/internal/errors"
)

func TestGuestPool_Distinct(t *testing.T) {
	pool := NewGuestPool(rand.New(rand.NewPCG(1, 2)))
	seen := map[string]bool{}

	for i := 0; i < len(GuestNames); i++ {
		name, err := pool.Draw()
		if err != nil {
			t.Fatalf("Draw %d: %v", i, err)
		}
		if !strings.HasPrefix(name, GuestPrefix) || !IsGuest(name) {
			t.Errorf("Draw() = %q, want guest prefix", name)
		}
		if seen[name] {
			t.Fatalf("Draw() returned %q twice", name)
		}
		seen[name] = true
	}

	if pool.Remaining() != 0 {
		t.Errorf("Remaining() = %d", pool.Remaining())
	}
	if _, err := pool.Draw(); !errors.Is(err, errors.ErrGuestPoolExhausted) {
		t.Errorf("Draw() on empty pool = %v", err)
	}
}

func TestGuestPool_IndependentSessions(t *testing.T) {
	a := NewGuestPool(nil)
	b := NewGuestPool(nil)
	for i := 0; i < 5; i++ {
		if _, err := a.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	if b.Remaining() != len(GuestNames) {
		t.Errorf("pools must not share state: %d", b.Remaining())
	}
}

func TestIsGuest(t *testing.T) {
	for name, want := range map[string]bool{".Inky": true, "Inky": false, ".": false, "": false} {
		if got := IsGuest(name); got != want {
			t.Errorf("IsGuest(%q) = %v, want %v", name, got, want)
		}
	}
}

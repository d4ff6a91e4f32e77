package profile

import (
	"math/rand/v2"
	"slices"

	"github.com/couchsplit/couchsplit/internal/errors"
)

// GuestPrefix marks a profile as ephemeral.
const GuestPrefix = "."

// GuestNames is the fixed pool guest profiles are named from.
var GuestNames = []string{
	"Blinky", "Pinky", "Inky", "Clyde", "Beatrice", "Battler", "Ellie", "Joel", "Leon", "Ada",
	"Madeline", "Theo", "Yokatta", "Wyrm", "Brodiee", "Supreme", "Conk", "Gort", "Lich", "Smores",
	"Canary",
}

// GuestPool draws guest names without replacement. Each session owns its
// own pool, so names never repeat within a session.
type GuestPool struct {
	names []string
	intn  func(n int) int
}

// NewGuestPool returns a full pool. A nil rng uses the global source.
func NewGuestPool(rng *rand.Rand) *GuestPool {
	intn := rand.IntN
	if rng != nil {
		intn = rng.IntN
	}
	return &GuestPool{names: slices.Clone(GuestNames), intn: intn}
}

// Draw removes a random name from the pool and returns it with GuestPrefix.
func (p *GuestPool) Draw() (string, error) {
	if len(p.names) == 0 {
		return "", errors.ErrGuestPoolExhausted
	}
	i := p.intn(len(p.names))
	name := p.names[i]
	p.names[i] = p.names[len(p.names)-1]
	p.names = p.names[:len(p.names)-1]
	return GuestPrefix + name, nil
}

// Remaining is the number of names left.
func (p *GuestPool) Remaining() int {
	return len(p.names)
}

// IsGuest reports whether name is an ephemeral profile.
func IsGuest(name string) bool {
	return len(name) > 1 && name[:1] == GuestPrefix
}

// Package layout partitions the screen across concurrent game instances.
//
// Partition is a pure function of its inputs. The launch plan sizes each
// instance with it and the tiling script places windows with the same policy,
// so the two agree on geometry without sharing state.
package layout

import (
	"fmt"

	"github.com/couchsplit/couchsplit/internal/errors"
)

// MaxPlayers is the largest supported instance count.
const MaxPlayers = 4

var (
	// ErrUnsupportedCount is returned for player counts outside 1..MaxPlayers.
	ErrUnsupportedCount = errors.New("unsupported player count")
	// ErrIndexOutOfRange is returned when index is not below count.
	ErrIndexOutOfRange = errors.New("instance index out of range")
)

// Viewport is the rectangle one instance occupies, in pixels.
type Viewport struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Area returns Width*Height.
func (v Viewport) Area() int { return v.Width * v.Height }

// Overlaps reports whether v and o share any pixel.
func (v Viewport) Overlaps(o Viewport) bool {
	return v.X < o.X+o.Width && o.X < v.X+v.Width &&
		v.Y < o.Y+o.Height && o.Y < v.Y+v.Height
}

// String renders the viewport as WxH+X+Y.
func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", v.Width, v.Height, v.X, v.Y)
}

// Partition returns the viewport for instance index of count on a
// width x height base. vertical only matters for two players: true stacks
// them top and bottom, false puts them side by side.
//
//	1: full screen
//	2: halves, orientation from vertical
//	3: a full-width top strip, then two bottom halves
//	4: quarter grid, row-major
func Partition(count, index, width, height int, vertical bool) (Viewport, error) {
	if count < 1 || count > MaxPlayers {
		return Viewport{}, fmt.Errorf("%w: %d", ErrUnsupportedCount, count)
	}
	if index < 0 || index >= count {
		return Viewport{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, count)
	}

	halfW, halfH := width/2, height/2

	switch count {
	case 1:
		return Viewport{Width: width, Height: height}, nil
	case 2:
		if vertical {
			return Viewport{Y: index * halfH, Width: width, Height: halfH}, nil
		}
		return Viewport{X: index * halfW, Width: halfW, Height: height}, nil
	case 3:
		if index == 0 {
			return Viewport{Width: width, Height: halfH}, nil
		}
		return Viewport{X: (index - 1) * halfW, Y: halfH, Width: halfW, Height: halfH}, nil
	default:
		return Viewport{X: (index % 2) * halfW, Y: (index / 2) * halfH, Width: halfW, Height: halfH}, nil
	}
}

// MustPartition is Partition for callers that have already bounded count,
// such as test harnesses. It panics on invalid input.
func MustPartition(count, index, width, height int, vertical bool) Viewport {
	v, err := Partition(count, index, width, height, vertical)
	if err != nil {
		panic(err)
	}
	return v
}

// All returns the viewports of every instance for count players.
func All(count, width, height int, vertical bool) ([]Viewport, error) {
	out := make([]Viewport, 0, count)
	for i := 0; i < count; i++ {
		v, err := Partition(count, i, width, height, vertical)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Scale applies a render scale percentage to a resolution.
func Scale(width, height, percent int) (int, int) {
	if percent <= 0 {
		percent = 100
	}
	return width * percent / 100, height * percent / 100
}

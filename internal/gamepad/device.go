package gamepad

import (
	"errors"

	"github.com/holoplot/go-evdev"
)

// ErrNoEvent is returned by Device.ReadEvent when no event is pending.
var ErrNoEvent = errors.New("no pending event")

// ID is the vendor/product identity of a device.
type ID struct {
	Vendor  uint16
	Product uint16
}

// Event is one raw input event.
type Event struct {
	Type  evdev.EvType
	Code  evdev.EvCode
	Value int32
}

// Device is an opened input device node.
type Device interface {
	Path() string
	Name() string
	ID() ID
	// HasKey reports whether the device advertises the key code.
	HasKey(code evdev.EvCode) bool
	SetNonBlocking() error
	// ReadEvent returns the next pending event or ErrNoEvent.
	ReadEvent() (Event, error)
	Close() error
}

// Enumerator opens every input device node it can find. Nodes that cannot be
// opened are skipped; an error is returned only when enumeration itself fails.
type Enumerator func() ([]Device, error)

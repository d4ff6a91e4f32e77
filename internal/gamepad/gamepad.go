// Package gamepad discovers controllers and turns their raw input events into
// discrete button presses.
//
// Devices are opened non-blocking, so Poll is cheap and returns ButtonNone
// when nothing happened. A Gamepad is owned by the single goroutine that
// polls it; it is not safe for concurrent use.
package gamepad

import (
	"path/filepath"
	"strings"

	"github.com/holoplot/go-evdev"
)

// Button is a press edge synthesized from raw device events.
type Button int

const (
	ButtonNone Button = iota
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB
	ButtonX
	ButtonY
	ButtonStart
	ButtonSelect
)

var buttonNames = map[Button]string{
	ButtonNone:   "none",
	ButtonUp:     "up",
	ButtonDown:   "down",
	ButtonLeft:   "left",
	ButtonRight:  "right",
	ButtonA:      "a",
	ButtonB:      "b",
	ButtonX:      "x",
	ButtonY:      "y",
	ButtonStart:  "start",
	ButtonSelect: "select",
}

func (b Button) String() string {
	if s, ok := buttonNames[b]; ok {
		return s
	}
	return "unknown"
}

// Kind is the controller family, derived from the USB vendor id.
type Kind int

const (
	KindUnknown Kind = iota
	KindXbox
	KindPlayStation
	KindNintendo
)

// Known vendor ids.
const (
	VendorMicrosoft uint16 = 0x045e
	VendorSony      uint16 = 0x054c
	VendorNintendo  uint16 = 0x057e
	VendorValve     uint16 = 0x28de
)

func (k Kind) String() string {
	switch k {
	case KindXbox:
		return "xbox"
	case KindPlayStation:
		return "playstation"
	case KindNintendo:
		return "nintendo"
	default:
		return "unknown"
	}
}

// maxDrain bounds the number of events consumed by one Poll.
const maxDrain = 512

// Gamepad is an opened, qualifying input device.
type Gamepad struct {
	dev  Device
	path string
	name string
	id   ID

	// powerSupply is the sysfs power_supply class directory consulted by Battery.
	powerSupply string
}

func newGamepad(dev Device) *Gamepad {
	return &Gamepad{
		dev:         dev,
		path:        dev.Path(),
		name:        dev.Name(),
		id:          dev.ID(),
		powerSupply: defaultPowerSupplyDir,
	}
}

// Path is the device node, e.g. /dev/input/event7. It identifies the pad
// across rescans.
func (g *Gamepad) Path() string { return g.path }

// Name is the name the kernel reports for the device.
func (g *Gamepad) Name() string { return g.name }

// ID is the vendor/product identity.
func (g *Gamepad) ID() ID { return g.id }

// Kind classifies the pad by vendor.
func (g *Gamepad) Kind() Kind {
	switch g.id.Vendor {
	case VendorMicrosoft:
		return KindXbox
	case VendorSony:
		return KindPlayStation
	case VendorNintendo:
		return KindNintendo
	default:
		return KindUnknown
	}
}

// DisplayName is a short human name for menus.
func (g *Gamepad) DisplayName() string {
	switch g.Kind() {
	case KindXbox:
		return "Xbox Controller"
	case KindPlayStation:
		return "PS Controller"
	case KindNintendo:
		return "NT Pro Controller"
	default:
		return g.name
	}
}

// EventID is the numeric suffix of the event node ("7" for event7).
func (g *Gamepad) EventID() string {
	base := filepath.Base(g.path)
	if _, id, ok := strings.Cut(base, "event"); ok {
		return id
	}
	return ""
}

// Poll drains every pending event and returns the last recognized press
// edge, or ButtonNone. Releases and unmapped events are ignored.
func (g *Gamepad) Poll() Button {
	btn := ButtonNone
	for i := 0; i < maxDrain; i++ {
		ev, err := g.dev.ReadEvent()
		if err != nil {
			break
		}
		if b, ok := translate(ev); ok {
			btn = b
		}
	}
	return btn
}

// Close releases the device node.
func (g *Gamepad) Close() error {
	return g.dev.Close()
}

// translate maps one raw event to a press edge.
func translate(ev Event) (Button, bool) {
	switch ev.Type {
	case evdev.EV_KEY:
		if ev.Value != 1 {
			return ButtonNone, false
		}
		switch ev.Code {
		case evdev.BTN_SOUTH:
			return ButtonA, true
		case evdev.BTN_EAST:
			return ButtonB, true
		case evdev.BTN_NORTH:
			return ButtonX, true
		case evdev.BTN_WEST:
			return ButtonY, true
		case evdev.BTN_START:
			return ButtonStart, true
		case evdev.BTN_SELECT:
			return ButtonSelect, true
		}
	case evdev.EV_ABS:
		switch {
		case ev.Code == evdev.ABS_HAT0X && ev.Value == -1:
			return ButtonLeft, true
		case ev.Code == evdev.ABS_HAT0X && ev.Value == 1:
			return ButtonRight, true
		case ev.Code == evdev.ABS_HAT0Y && ev.Value == -1:
			return ButtonUp, true
		case ev.Code == evdev.ABS_HAT0Y && ev.Value == 1:
			return ButtonDown, true
		}
	}
	return ButtonNone, false
}

// CloseAll closes every pad, ignoring errors.
func CloseAll(pads []*Gamepad) {
	for _, p := range pads {
		_ = p.Close()
	}
}

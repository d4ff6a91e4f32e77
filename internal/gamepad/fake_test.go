package gamepad

import (
	"errors"

	"github.com/holoplot/go-evdev"
)

// fakeDevice is an in-memory Device for tests.
type fakeDevice struct {
	path        string
	name        string
	id          ID
	keys        []evdev.EvCode
	events      []Event
	nonBlockErr error
	closed      bool
}

func (d *fakeDevice) Path() string { return d.path }
func (d *fakeDevice) Name() string { return d.name }
func (d *fakeDevice) ID() ID       { return d.id }

func (d *fakeDevice) HasKey(code evdev.EvCode) bool {
	for _, k := range d.keys {
		if k == code {
			return true
		}
	}
	return false
}

func (d *fakeDevice) SetNonBlocking() error { return d.nonBlockErr }

func (d *fakeDevice) ReadEvent() (Event, error) {
	if len(d.events) == 0 {
		return Event{}, ErrNoEvent
	}
	ev := d.events[0]
	d.events = d.events[1:]
	return ev, nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func enumerateFakes(devs ...*fakeDevice) Enumerator {
	return func() ([]Device, error) {
		out := make([]Device, len(devs))
		for i, d := range devs {
			out[i] = d
		}
		return out, nil
	}
}

func pad(path string, vendor uint16) *fakeDevice {
	return &fakeDevice{path: path, name: "Generic Pad", id: ID{Vendor: vendor}, keys: []evdev.EvCode{evdev.BTN_SOUTH}}
}

func press(code evdev.EvCode) Event {
	return Event{Type: evdev.EV_KEY, Code: code, Value: 1}
}

func release(code evdev.EvCode) Event {
	return Event{Type: evdev.EV_KEY, Code: code, Value: 0}
}

func hat(code evdev.EvCode, v int32) Event {
	return Event{Type: evdev.EV_ABS, Code: code, Value: v}
}

var errBroken = errors.New("broken")

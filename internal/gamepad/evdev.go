package gamepad

import (
	"errors"
	"io"
	"os"
	"slices"

	"github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// evdevDevice adapts a go-evdev InputDevice to Device.
type evdevDevice struct {
	path string
	name string
	id   ID
	keys []evdev.EvCode
	dev  *evdev.InputDevice
}

// Evdev enumerates /dev/input/event* through the kernel evdev interface.
func Evdev() ([]Device, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(paths))
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		d := &evdevDevice{
			path: p.Path,
			name: p.Name,
			keys: dev.CapableEvents(evdev.EV_KEY),
			dev:  dev,
		}
		if name, err := dev.Name(); err == nil {
			d.name = name
		}
		if id, err := dev.InputID(); err == nil {
			d.id = ID{Vendor: id.Vendor, Product: id.Product}
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func (d *evdevDevice) Path() string { return d.path }
func (d *evdevDevice) Name() string { return d.name }
func (d *evdevDevice) ID() ID       { return d.id }

func (d *evdevDevice) HasKey(code evdev.EvCode) bool {
	return slices.Contains(d.keys, code)
}

func (d *evdevDevice) SetNonBlocking() error {
	return d.dev.NonBlock()
}

func (d *evdevDevice) ReadEvent() (Event, error) {
	ev, err := d.dev.ReadOne()
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.EOF) {
			return Event{}, ErrNoEvent
		}
		return Event{}, err
	}
	return Event{Type: ev.Type, Code: ev.Code, Value: ev.Value}, nil
}

func (d *evdevDevice) Close() error {
	return d.dev.Close()
}

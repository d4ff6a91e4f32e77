package gamepad

import (
	"slices"
	"strings"

	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/gobwas/glob"
	"github.com/holoplot/go-evdev"
)

// VirtualFilter recognizes controllers re-exposed by an input remapping
// layer such as Steam Input, so a physical pad is not counted twice.
type VirtualFilter struct {
	vendors []uint16
	names   []glob.Glob
}

// DefaultVirtualVendors and DefaultVirtualNames describe Steam Input's
// virtual pads.
var (
	DefaultVirtualVendors = []uint16{VendorValve}
	DefaultVirtualNames   = []string{"*Steam Virtual Gamepad*"}
)

// NewVirtualFilter compiles name patterns (glob syntax, case-insensitive).
func NewVirtualFilter(vendors []uint16, namePatterns []string) (*VirtualFilter, error) {
	f := &VirtualFilter{vendors: slices.Clone(vendors)}
	for _, p := range namePatterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid virtual pad pattern %q", p)
		}
		f.names = append(f.names, g)
	}
	return f, nil
}

// DefaultVirtualFilter returns the Steam Input filter.
func DefaultVirtualFilter() *VirtualFilter {
	f, err := NewVirtualFilter(DefaultVirtualVendors, DefaultVirtualNames)
	if err != nil {
		panic(err)
	}
	return f
}

// Matches reports whether the device looks virtual.
func (f *VirtualFilter) Matches(id ID, name string) bool {
	if f == nil {
		return false
	}
	if slices.Contains(f.vendors, id.Vendor) {
		return true
	}
	lower := strings.ToLower(name)
	for _, g := range f.names {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// Options control which devices Scan keeps.
type Options struct {
	// ExcludeVirtual drops devices matched by Virtual.
	ExcludeVirtual bool
	// Virtual defaults to DefaultVirtualFilter when nil.
	Virtual *VirtualFilter
}

// Scan enumerates devices and keeps those that expose a primary action
// button, switched to non-blocking mode. Devices that fail any step are
// closed and logged; Scan never fails because of a single device.
func Scan(enumerate Enumerator, opts Options, logger *logging.Logger) []*Gamepad {
	if logger == nil {
		logger = logging.NopLogger()
	}
	devices, err := enumerate()
	if err != nil {
		logger.Error("failed to enumerate input devices", "error", err)
		return nil
	}

	filter := opts.Virtual
	if filter == nil {
		filter = DefaultVirtualFilter()
	}

	var pads []*Gamepad
	for _, dev := range devices {
		if opts.ExcludeVirtual && filter.Matches(dev.ID(), dev.Name()) {
			logger.Debug("skipping virtual pad", "path", dev.Path(), "name", dev.Name())
			_ = dev.Close()
			continue
		}
		if !dev.HasKey(evdev.BTN_SOUTH) {
			_ = dev.Close()
			continue
		}
		if err := dev.SetNonBlocking(); err != nil {
			derr := errors.NewDeviceError("failed to set non-blocking mode", errors.Join(errors.ErrNonBlocking, err)).WithPath(dev.Path())
			logger.Warn("skipping gamepad", "error", derr)
			_ = dev.Close()
			continue
		}
		pads = append(pads, newGamepad(dev))
	}

	logger.Info("scanned gamepads", "count", len(pads))
	return pads
}

// Paths returns the device paths of pads in order.
func Paths(pads []*Gamepad) []string {
	out := make([]string, len(pads))
	for i, p := range pads {
		out[i] = p.Path()
	}
	return out
}

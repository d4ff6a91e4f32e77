//go:build hidbattery

package gamepad

import (
	"github.com/sstallion/go-hid"
)

// dualShockBatteryOffset is the battery byte in feature report 0x02.
const dualShockBatteryOffset = 53

// batteryFromHID queries feature report 0x02 on the matching raw HID device.
// The controller reports 0-10; the result is scaled to a percentage.
func batteryFromHID(id ID) (int, bool) {
	if err := hid.Init(); err != nil {
		return 0, false
	}
	defer func() { _ = hid.Exit() }()

	var paths []string
	_ = hid.Enumerate(id.Vendor, id.Product, func(info *hid.DeviceInfo) error {
		paths = append(paths, info.Path)
		return nil
	})

	for _, path := range paths {
		dev, err := hid.OpenPath(path)
		if err != nil {
			continue
		}
		buf := make([]byte, 64)
		buf[0] = 0x02
		_, err = dev.GetFeatureReport(buf)
		_ = dev.Close()
		if err != nil {
			continue
		}
		if level := int(buf[dualShockBatteryOffset]); level <= 10 {
			return level * 10, true
		}
	}
	return 0, false
}

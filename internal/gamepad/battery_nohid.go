//go:build !hidbattery

package gamepad

// batteryFromHID is only available when built with the hidbattery tag.
func batteryFromHID(ID) (int, bool) {
	return 0, false
}

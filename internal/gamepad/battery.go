package gamepad

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultPowerSupplyDir = "/sys/class/power_supply"

// Battery returns the charge percentage, or false when neither the kernel
// power_supply class nor the HID fallback knows it.
func (g *Gamepad) Battery() (int, bool) {
	if pct, ok := batteryFromSysfs(g.powerSupply, filepath.Base(g.path)); ok {
		return pct, true
	}
	if g.id.Vendor == VendorSony {
		return batteryFromHID(g.id)
	}
	return 0, false
}

// batteryFromSysfs finds the power_supply entry whose uevent mentions the
// device node name and reads its capacity attribute.
func batteryFromSysfs(root, nodeName string) (int, bool) {
	if nodeName == "" || nodeName == "." {
		return 0, false
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, false
	}
	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())
		uevent, err := os.ReadFile(filepath.Join(dir, "uevent"))
		if err != nil || !strings.Contains(string(uevent), nodeName) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, "capacity"))
		if err != nil {
			continue
		}
		pct, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil || pct < 0 || pct > 100 {
			continue
		}
		return pct, true
	}
	return 0, false
}

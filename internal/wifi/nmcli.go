package wifi

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/config"
)

// NMCLIRadio drives the station through NetworkManager's nmcli. Go has no
// library for WPA association, so the boundary is a thin exec bridge; all
// join policy lives above it in Manager.
type NMCLIRadio struct {
	// Iface is the wireless interface name, e.g. "wlan0".
	Iface string
}

func (r *NMCLIRadio) Connected() bool {
	out, err := exec.Command("nmcli", "-t", "-f", "GENERAL.STATE", "device", "show", r.Iface).Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "(connected)")
}

func (r *NMCLIRadio) Connect(ctx context.Context, n config.WifiNetwork) error {
	args := []string{"device", "wifi", "connect", n.SSID, "ifname", r.Iface}
	if n.PSK != "" {
		args = append(args, "password", n.PSK)
	}
	if out, err := exec.CommandContext(ctx, "nmcli", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli connect %s: %v (%s)", n.SSID, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (r *NMCLIRadio) Active() (string, string, bool) {
	out, err := exec.Command("nmcli", "-t", "-f", "GENERAL.CONNECTION,IP4.ADDRESS", "device", "show", r.Iface).Output()
	if err != nil {
		return "", "", false
	}
	var ssid, ip string
	for _, line := range strings.Split(string(out), "\n") {
		if v, ok := strings.CutPrefix(line, "GENERAL.CONNECTION:"); ok {
			ssid = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "IP4.ADDRESS[1]:"); ok {
			ip = strings.TrimSpace(v)
		}
	}
	if ssid == "" {
		return "", "", false
	}
	return ssid, ip, true
}

func (r *NMCLIRadio) Disconnect() error {
	if out, err := exec.Command("nmcli", "device", "disconnect", r.Iface).CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli disconnect: %v (%s)", err, strings.TrimSpace(string(out)))
	}
	if out, err := exec.Command("nmcli", "radio", "wifi", "off").CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli radio off: %v (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

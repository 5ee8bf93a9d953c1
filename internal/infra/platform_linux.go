//go:build linux

package infra

import (
	"fmt"
	"os/exec"
	"strings"
)

// activateProcess raises the named app's window via wmctrl (EWMH).
func activateProcess(identifier string) error {
	if out, err := exec.Command("wmctrl", "-x", "-a", identifier).CombinedOutput(); err != nil {
		return fmt.Errorf("activate %s: %s: %w", identifier, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// foregroundProcess resolves the active window's WM_CLASS via xprop.
func foregroundProcess() (string, string, error) {
	out, err := exec.Command("xprop", "-root", "_NET_ACTIVE_WINDOW").Output()
	if err != nil {
		return "", "", fmt.Errorf("xprop failed (no X11?): %w", err)
	}

	fields := strings.Fields(string(out))
	if len(fields) < 5 {
		return "", "", fmt.Errorf("unexpected xprop output: %q", string(out))
	}
	windowID := fields[4]

	out, err = exec.Command("xprop", "-id", windowID, "WM_CLASS").Output()
	if err != nil {
		return "", "", fmt.Errorf("WM_CLASS query failed: %w", err)
	}

	// WM_CLASS(STRING) = "navigator", "Firefox"
	parts := strings.Split(string(out), `"`)
	if len(parts) < 4 {
		return "", "", fmt.Errorf("unexpected WM_CLASS output: %q", string(out))
	}
	instance, class := parts[1], parts[3]
	return instance, class, nil
}

// foregroundFullscreen checks the active window's _NET_WM_STATE for the
// fullscreen atom. Maximized-but-not-fullscreen windows read as false.
func foregroundFullscreen() (bool, error) {
	out, err := exec.Command("xprop", "-root", "_NET_ACTIVE_WINDOW").Output()
	if err != nil {
		return false, fmt.Errorf("xprop failed (no X11?): %w", err)
	}
	fields := strings.Fields(string(out))
	if len(fields) < 5 {
		return false, fmt.Errorf("unexpected xprop output: %q", string(out))
	}
	windowID := fields[4]

	out, err = exec.Command("xprop", "-id", windowID, "_NET_WM_STATE").Output()
	if err != nil {
		return false, fmt.Errorf("_NET_WM_STATE query failed: %w", err)
	}
	return strings.Contains(string(out), "_NET_WM_STATE_FULLSCREEN"), nil
}

// currentDesktop returns the active virtual desktop index.
func currentDesktop() (string, error) {
	out, err := exec.Command("xprop", "-root", "_NET_CURRENT_DESKTOP").Output()
	if err != nil {
		return "", fmt.Errorf("desktop query failed: %w", err)
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", fmt.Errorf("unexpected desktop output: %q", string(out))
	}
	return fields[len(fields)-1], nil
}

// notify shows a transient desktop notification (~2.5s).
func notify(title, message string) error {
	return exec.Command("notify-send", "-t", "2500", title, message).Run()
}

//go:build darwin

package infra

import (
	"fmt"
	"os/exec"
	"strings"
)

// activateProcess brings the named app to the foreground via AppleScript.
func activateProcess(identifier string) error {
	script := fmt.Sprintf(`tell application %q to activate`, identifier)
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("activate %s: %s: %w", identifier, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// foregroundProcess returns the identity and display name of the frontmost
// app.
func foregroundProcess() (string, string, error) {
	script := `tell application "System Events" to get name of first application process whose frontmost is true`
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return "", "", fmt.Errorf("frontmost query failed: %w", err)
	}
	name := strings.TrimSpace(string(out))
	if name == "" {
		return "", "", fmt.Errorf("frontmost query returned empty name")
	}
	return name, name, nil
}

// foregroundFullscreen reports whether the frontmost window covers the whole
// display. Geometry heuristic: a maximized-but-not-native-fullscreen window
// can read as false.
func foregroundFullscreen() (bool, error) {
	script := `tell application "System Events"
	set frontApp to first application process whose frontmost is true
	set winBounds to size of front window of frontApp
end tell
tell application "Finder" to set screenBounds to bounds of window of desktop
return (item 1 of winBounds as integer) & "," & (item 2 of winBounds as integer) & "," & (item 3 of screenBounds as integer) & "," & (item 4 of screenBounds as integer)`
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return false, fmt.Errorf("window bounds query failed: %w", err)
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) != 4 {
		return false, fmt.Errorf("unexpected bounds output: %q", string(out))
	}
	var w, h, sw, sh int
	if _, err := fmt.Sscanf(strings.Join(fields, " "), "%d %d %d %d", &w, &h, &sw, &sh); err != nil {
		return false, fmt.Errorf("parse bounds: %w", err)
	}
	return w >= sw && h >= sh, nil
}

// currentDesktop is unsupported on macOS without private APIs; Space
// switches surface as foreground changes instead.
func currentDesktop() (string, error) {
	return "", fmt.Errorf("desktop query not available on darwin")
}

// notify shows a transient user notification.
func notify(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

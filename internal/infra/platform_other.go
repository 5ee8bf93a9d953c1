//go:build !darwin && !linux

package infra

import (
	"fmt"
	"runtime"
)

// Null implementations for unsupported platforms: enforcement degrades to
// sweep-only (no focus events, no refocus, no bypass, no toasts).

func activateProcess(identifier string) error {
	return fmt.Errorf("window activation not supported on %s", runtime.GOOS)
}

func foregroundProcess() (string, string, error) {
	return "", "", fmt.Errorf("foreground query not supported on %s", runtime.GOOS)
}

func foregroundFullscreen() (bool, error) {
	return false, fmt.Errorf("fullscreen query not supported on %s", runtime.GOOS)
}

func currentDesktop() (string, error) {
	return "", fmt.Errorf("desktop query not supported on %s", runtime.GOOS)
}

func notify(title, message string) error {
	return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
}

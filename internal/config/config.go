// Package config loads the focusgate configuration file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds daemon configuration. All fields have working defaults; a
// missing config file is not an error.
type Config struct {
	DataDir      string        `yaml:"data_dir"`
	LogFile      string        `yaml:"log_file"`
	PollInterval time.Duration `yaml:"poll_interval"`

	// FullscreenBypass suspends enforcement while the foreground window is
	// already fullscreen.
	FullscreenBypass bool `yaml:"fullscreen_bypass"`

	ToastEnabled bool `yaml:"toast_enabled"`

	// ProtectedIdentifiers are merged with the platform defaults; these
	// processes are never terminated regardless of session mode.
	ProtectedIdentifiers []string `yaml:"protected_identifiers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:      "~/.focusgate",
		LogFile:      "~/.focusgate/focusgate.log",
		PollInterval: 500 * time.Millisecond,
		ToastEnabled: true,
	}
}

// Load reads the config file at path, applying defaults for anything not
// set. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	return cfg, nil
}

// ProtectedSet returns the platform defaults unioned with the configured
// identifiers.
func (c *Config) ProtectedSet() map[string]bool {
	set := make(map[string]bool)
	for _, id := range defaultProtected() {
		set[id] = true
	}
	for _, id := range c.ProtectedIdentifiers {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = true
		}
	}
	return set
}

// defaultProtected lists the OS shell components that must never be
// terminated on this platform.
func defaultProtected() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"Finder", "Dock", "SystemUIServer", "WindowServer", "loginwindow"}
	case "linux":
		return []string{"gnome-shell", "plasmashell", "Xorg", "Xwayland", "systemd"}
	case "windows":
		return []string{"explorer.exe", "dwm.exe", "winlogon.exe", "csrss.exe"}
	default:
		return nil
	}
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

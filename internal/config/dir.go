// Package config provides configuration loading for gitsync.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the gitsync configuration directory.
//
// Resolution:
//   - $GITSYNC_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/gitsync if set (respects XDG on any platform)
//   - %AppData%/gitsync on Windows
//   - ~/.config/gitsync on macOS and Linux
func Dir() string {
	if dir := os.Getenv("GITSYNC_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gitsync")
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "gitsync")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gitsync")
}

// GlobalFile returns the path of the user-wide config file, or "" when no
// config directory can be determined.
func GlobalFile() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

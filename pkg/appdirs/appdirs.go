// Package appdirs resolves per-platform user data directories.
//
// Priority order: HOTRELOAD_DATA_DIR env override > the platform convention.
// Conventions: %APPDATA% on Windows, ~/Library/Application Support on Apple
// platforms, $XDG_DATA_HOME (defaulting to ~/.local/share) elsewhere.
package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvOverride names the environment variable that bypasses platform
// resolution entirely.
const EnvOverride = "HOTRELOAD_DATA_DIR"

// UserDataDir returns the directory where app keeps per-user data on this
// host.
func UserDataDir(app string) (string, error) {
	return Resolve(runtime.GOOS, os.Getenv, app)
}

// Resolve computes the user data directory for an OS family. getenv
// supplies environment lookups, which keeps Resolve free of host state.
func Resolve(goos string, getenv func(string) string, app string) (string, error) {
	if app == "" {
		return "", fmt.Errorf("appdirs: empty app name")
	}
	if dir := getenv(EnvOverride); dir != "" {
		return filepath.Join(dir, app), nil
	}

	switch goos {
	case "windows":
		if dir := getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, app), nil
		}
		profile := getenv("USERPROFILE")
		if profile == "" {
			return "", fmt.Errorf("appdirs: neither %%APPDATA%% nor %%USERPROFILE%% is set")
		}
		return filepath.Join(profile, "AppData", "Roaming", app), nil
	case "darwin", "ios":
		home := getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("appdirs: $HOME is not set")
		}
		return filepath.Join(home, "Library", "Application Support", app), nil
	default:
		if dir := getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, app), nil
		}
		home := getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("appdirs: $HOME is not set")
		}
		return filepath.Join(home, ".local", "share", app), nil
	}
}

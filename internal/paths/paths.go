// Package paths resolves where sheetsdb keeps its configuration and data.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDir names the per-user directory under the platform config root.
const appDir = "sheetsdb"

// Working-directory-relative names.
const (
	DefaultConfigDirName = ".sheetsdb"
	DefaultDataDirName   = ".sheetsdb-db"
)

// Environment overrides.
const (
	EnvConfigDir = "SHEETSDB_CONFIG_DIR"
	EnvDataDir   = "SHEETSDB_DATA_DIR"
)

// platformDir is swapped out by tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/sheetsdb or ~/.config/sheetsdb on Linux, and
// os.UserConfigDir()/sheetsdb elsewhere.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDir), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDir), nil
}

// ResolveConfigDir picks the configuration directory: flag, then
// SHEETSDB_CONFIG_DIR, then DefaultConfigDir. Overrides are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstSet(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory: flag, then the data_dir value
// from config.yaml, then SHEETSDB_DATA_DIR, then .sheetsdb-db in the
// working directory.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstSet(flag, configValue, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return filepath.Abs(DefaultDataDirName)
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

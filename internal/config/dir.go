// Package config provides the rigup configuration and state directories.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// ManifestName is the machine manifest file inside the config directory.
const ManifestName = "machine.yaml"

// Dir returns the rigup configuration directory.
//
// Resolution:
//   - $RIGUP_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/rigup via the xdg library (~/.config/rigup by default)
func Dir() string {
	// Explicit override
	if dir := os.Getenv("RIGUP_CONFIG_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, "rigup")
}

// StateDir returns the rigup state directory, home of the log file.
//
// Resolution:
//   - $RIGUP_STATE_HOME if set (explicit override)
//   - $XDG_STATE_HOME/rigup via the xdg library (~/.local/state/rigup by default)
func StateDir() string {
	if dir := os.Getenv("RIGUP_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(xdg.StateHome, "rigup")
}

// ManifestPath returns the default machine manifest location.
func ManifestPath() string {
	return filepath.Join(Dir(), ManifestName)
}

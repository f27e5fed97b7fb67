package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the teachtree home directory
const HomeEnv = "TEACHTREE_HOME"

// GetHome returns the teachtree home directory
// Priority order:
//  1. TEACHTREE_HOME environment variable (if set)
//  2. <cwd>/.teachtree (fallback)
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, ".teachtree")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create teachtree home directory: %w", err)
	}
	return home, nil
}

// ResolveStatePath returns an absolute state path. Relative paths are
// resolved against baseDir; when TEACHTREE_HOME is set, the default
// state path is moved under it.
func (c *Config) ResolveStatePath(baseDir string) string {
	path := c.State.Path
	if home := os.Getenv(HomeEnv); home != "" && path == DefaultConfig().State.Path {
		return filepath.Join(home, "state")
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResolveLogDir returns the absolute run-log directory, or "" when file
// logging is off. Relative paths are resolved against baseDir.
func (c *Config) ResolveLogDir(baseDir string) string {
	if c.LogDir == "" || filepath.IsAbs(c.LogDir) {
		return c.LogDir
	}
	return filepath.Join(baseDir, c.LogDir)
}

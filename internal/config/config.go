// Package config loads photosweep settings from a YAML file, applying
// defaults for anything left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the user-tunable configuration.
type Config struct {
	// DeleteThreshold is the signed drag offset at which an ended gesture
	// deletes the current asset. Must be negative.
	DeleteThreshold float64 `yaml:"delete_threshold"`
	// AdvanceThreshold is the offset at which an ended gesture advances.
	// Must be positive.
	AdvanceThreshold float64 `yaml:"advance_threshold"`
	// DragStep is how far one key press moves the drag offset in the TUI.
	DragStep float64 `yaml:"drag_step"`
	// Library is the default photos directory opened when no argument is
	// given on the command line.
	Library string `yaml:"library"`
	// Watch enables the folder watcher after an import.
	Watch bool `yaml:"watch"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DeleteThreshold:  -100,
		AdvanceThreshold: 100,
		DragStep:         40,
	}
}

// DefaultPath is the conventional config location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "photosweep", "config.yaml")
}

// Load reads the config at path. A missing file is not an error; the
// defaults are returned. Explicit zero values in the file fall back to
// defaults too, since a zero threshold would make every gesture commit.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if file.DeleteThreshold < 0 {
		cfg.DeleteThreshold = file.DeleteThreshold
	}
	if file.AdvanceThreshold > 0 {
		cfg.AdvanceThreshold = file.AdvanceThreshold
	}
	if file.DragStep > 0 {
		cfg.DragStep = file.DragStep
	}
	if file.Library != "" {
		cfg.Library = file.Library
	}
	cfg.Watch = file.Watch
	return cfg, nil
}

package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/floorplan/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.floorplan/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".floorplan")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig validates config and writes it to path as indented JSON.
// The file is replaced through a temporary sibling so a failed write never
// leaves a truncated config behind.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadAppConfig reads the config at path over DefaultAppConfig, so keys the
// file omits keep their defaults. A missing file yields the defaults. The
// merged result must pass AppConfig.Validate.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("%w: %s: %v", model.ErrInvalidConfig, path, err)
	}
	if err := config.Validate(); err != nil {
		return model.AppConfig{}, fmt.Errorf("%s: %w", path, err)
	}

	if config.ResultsPath == "" {
		config.ResultsPath = model.DefaultAppConfig().ResultsPath
	}
	if config.RecentRuns == nil {
		config.RecentRuns = []string{}
	}
	return config, nil
}

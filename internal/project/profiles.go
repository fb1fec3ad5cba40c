package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/floorplan/internal/model"
)

// DefaultProfilesPath returns the default file path for custom profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.SettingsProfile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.SettingsProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.SettingsProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.SettingsProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}

	// Ensure loaded profiles are not marked as built-in
	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// AllProfiles returns the built-in profiles followed by the custom profiles
// stored at path.
func AllProfiles(path string) ([]model.SettingsProfile, error) {
	custom, err := LoadCustomProfiles(path)
	if err != nil {
		return nil, err
	}
	return append(model.BuiltInProfiles(), custom...), nil
}

// UpsertCustomProfile stores profile in the custom profiles file at path,
// replacing any custom profile of the same name. Built-in names are reserved.
func UpsertCustomProfile(path string, profile model.SettingsProfile) error {
	if profile.Name == "" {
		return fmt.Errorf("%w: profile has no name", model.ErrInvalidConfig)
	}
	if _, ok := model.FindProfile(model.BuiltInProfiles(), profile.Name); ok {
		return fmt.Errorf("%w: %q is a built-in profile", model.ErrInvalidConfig, profile.Name)
	}
	if err := profile.Settings.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", profile.Name, err)
	}

	profiles, err := LoadCustomProfiles(path)
	if err != nil {
		return err
	}
	profile.IsBuiltIn = false
	replaced := false
	for i, p := range profiles {
		if strings.EqualFold(p.Name, profile.Name) {
			profiles[i] = profile
			replaced = true
		}
	}
	if !replaced {
		profiles = append(profiles, profile)
	}
	return SaveCustomProfiles(path, profiles)
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile model.SettingsProfile) error {
	profile.IsBuiltIn = false
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportProfile imports a single profile from a JSON file. The profile's
// settings must pass validation.
func ImportProfile(path string) (model.SettingsProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SettingsProfile{}, err
	}

	var profile model.SettingsProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.SettingsProfile{}, err
	}

	profile.IsBuiltIn = false
	if profile.Name == "" {
		return model.SettingsProfile{}, errors.New("imported profile has no name")
	}
	if err := profile.Settings.Validate(); err != nil {
		return model.SettingsProfile{}, fmt.Errorf("profile %q: %w", profile.Name, err)
	}
	return profile, nil
}

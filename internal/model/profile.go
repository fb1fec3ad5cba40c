package model

import (
	"strings"
	"time"
)

// SettingsProfile is a named set of optimizer settings.
type SettingsProfile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsBuiltIn   bool     `json:"is_built_in"`
	Settings    Settings `json:"settings"`
}

// BuiltInProfiles returns the presets shipped with the tool.
func BuiltInProfiles() []SettingsProfile {
	quick := DefaultSettings()
	quick.InitialTemperature = 1000
	quick.CoolingRate = 0.02
	quick.MaxIterations = 20000
	quick.TimeLimit = 10 * time.Second

	thorough := DefaultSettings()
	thorough.CoolingRate = 0.0005
	thorough.StopTemperature = 1
	thorough.MaxIterations = 2000000
	thorough.TimeLimit = 10 * time.Minute

	dense := DefaultSettings()
	dense.Placer = PlacerGuillotine
	dense.SwapProbability = 0.3

	return []SettingsProfile{
		{Name: "Default", Description: "Balanced schedule", IsBuiltIn: true, Settings: DefaultSettings()},
		{Name: "Quick", Description: "Short run for previews", IsBuiltIn: true, Settings: quick},
		{Name: "Thorough", Description: "Slow cooling, long time limit", IsBuiltIn: true, Settings: thorough},
		{Name: "Dense", Description: "Guillotine start, relocation heavy", IsBuiltIn: true, Settings: dense},
	}
}

// FindProfile returns the profile whose name matches case-insensitively.
func FindProfile(profiles []SettingsProfile, name string) (SettingsProfile, bool) {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return SettingsProfile{}, false
}

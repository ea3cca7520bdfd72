package util

import (
	"encoding/json"
	"fmt"
	"os"

	"profile-server/models"
)

// ReadProfileFromJSON loads a Profile (a JSON array of samples) from disk.
func ReadProfileFromJSON(filePath string) (models.Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Profile: %w", err)
	}
	return profile, nil
}

// WriteProfileToJSON saves profile in the format ReadProfileFromJSON reads.
func WriteProfileToJSON(filePath string, profile models.Profile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal Profile: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %q: %w", filePath, err)
	}
	return nil
}

// PrintProfilePartially prints key fields of a Profile.
func PrintProfilePartially(profile models.Profile) {
	fmt.Printf("Samples: %d\n", len(profile))
	if len(profile) == 0 {
		return
	}
	first, last := profile[0], profile[len(profile)-1]
	fmt.Printf("First sample: %.2fm at (%.6f, %.6f)\n", first.Elevation, first.Location.Lat, first.Location.Lng)
	fmt.Printf("Last sample: %.2fm at (%.6f, %.6f)\n", last.Elevation, last.Location.Lat, last.Location.Lng)
	if max, ok := profile.MaxElevation(); ok {
		fmt.Printf("Max elevation: %.2fm\n", max)
	}
}

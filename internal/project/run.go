package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/floorplan/internal/model"
)

// SaveRun writes a RunRecord as indented JSON, creating parent directories.
// A record without a version is stamped with the current one.
func SaveRun(path string, rec model.RunRecord) error {
	if rec.Version == "" {
		rec.Version = model.RunRecordVersion
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}
	return nil
}

// LoadRun reads a RunRecord saved by SaveRun. Records written by a newer
// major version are rejected.
func LoadRun(path string) (model.RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RunRecord{}, fmt.Errorf("failed to read run file: %w", err)
	}
	var rec model.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.RunRecord{}, fmt.Errorf("failed to parse run file: %w", err)
	}
	if rec.Version == "" {
		return model.RunRecord{}, fmt.Errorf("invalid run file: missing version field")
	}
	if major(rec.Version) != major(model.RunRecordVersion) {
		return model.RunRecord{}, fmt.Errorf("unsupported run file version %s (want %s)", rec.Version, model.RunRecordVersion)
	}
	return rec, nil
}

// major returns the leading component of a dotted version string.
func major(version string) string {
	v, _, _ := strings.Cut(version, ".")
	return v
}

package vcs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MarkerFile names which backend module owns a base path and which
// serializer format its payloads use. Reading the marker and dispatching to
// the matching provider is the bootstrap used by restore and migration.
const MarkerFile = ".gridlab-repo"

type Marker struct {
	Backend    string `json:"backend"`
	Serializer string `json:"serializer"`
}

func WriteMarker(basePath string, m Marker) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(basePath, MarkerFile), data, 0o644)
}

func ReadMarker(basePath string) (Marker, error) {
	data, err := os.ReadFile(filepath.Join(basePath, MarkerFile))
	if err != nil {
		return Marker{}, fmt.Errorf("reading repository marker at %s: %w", basePath, err)
	}
	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return Marker{}, fmt.Errorf("parsing repository marker at %s: %w", basePath, err)
	}
	return m, nil
}

// HasMarker reports whether basePath already hosts a repository.
func HasMarker(basePath string) bool {
	_, err := os.Stat(filepath.Join(basePath, MarkerFile))
	return err == nil
}

// Package contest wires the pure catalog, progression, and scoring
// packages to the bucket, the progress store, and the event stream. It
// owns all I/O and sequencing; the core packages stay side-effect free.
package contest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultAnswerColumn is stripped from legacy combined artifacts before
// the input is handed to the user, unless the manifest names another.
const DefaultAnswerColumn = "output"

// Manifest is the YAML structure describing the contests a deployment
// serves and where their artifacts live in the bucket.
type Manifest struct {
	Contests []Definition `yaml:"contests"`
}

// Definition is one contest entry in the manifest.
type Definition struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Prefix       string `yaml:"prefix"`
	AnswerColumn string `yaml:"answer_column"`
}

// LoadManifest reads and validates a contest manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest file: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest file: %w", err)
	}

	if len(m.Contests) == 0 {
		return nil, fmt.Errorf("manifest %s defines no contests", path)
	}

	seen := make(map[string]bool, len(m.Contests))
	for i := range m.Contests {
		def := &m.Contests[i]
		if def.ID == "" {
			return nil, fmt.Errorf("manifest contest %d has no id", i)
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("duplicate contest id %s", def.ID)
		}
		seen[def.ID] = true

		if def.Name == "" {
			def.Name = def.ID
		}
		if def.AnswerColumn == "" {
			def.AnswerColumn = DefaultAnswerColumn
		}
	}

	return &m, nil
}

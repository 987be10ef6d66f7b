package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CurrentFileVersion is the taxonomy file format version.
const CurrentFileVersion = 1

// File is the on-disk layout of a taxonomy file.
type File struct {
	Version int     `yaml:"version"`
	Skills  []Entry `yaml:"skills"`
}

// Load reads and validates a YAML taxonomy file.
// A missing file is an error: the taxonomy is required at startup.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}
	if f.Version != CurrentFileVersion {
		return nil, fmt.Errorf("unsupported taxonomy version %d (want %d)", f.Version, CurrentFileVersion)
	}

	t, err := New(f.Skills)
	if err != nil {
		return nil, fmt.Errorf("validating taxonomy: %w", err)
	}
	return t, nil
}

// Package role maps professional roles to the skills they require.
package role

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrentFileVersion is the roles file format version.
const CurrentFileVersion = 1

// Errors returned by the role catalog.
var (
	ErrUnknownRole       = errors.New("unknown role")
	ErrEmptyRole         = errors.New("role name is required")
	ErrNoRequirements    = errors.New("role has no required skills")
	ErrInvalidImportance = errors.New("importance must be between 0 and 1")
)

// Requirement is a skill a role needs, weighted by how much it matters.
type Requirement struct {
	Skill      string  `json:"skill"`
	Importance float64 `json:"importance"`
}

// File is the on-disk layout of a roles file.
type File struct {
	Version int                           `yaml:"version"`
	Roles   map[string]map[string]float64 `yaml:"roles"`
}

// Catalog is an immutable set of roles keyed case-insensitively.
type Catalog struct {
	roles map[string][]Requirement
	names map[string]string // lowercased -> display name
}

// New validates role definitions and builds a Catalog.
func New(roles map[string]map[string]float64) (*Catalog, error) {
	c := &Catalog{
		roles: make(map[string][]Requirement, len(roles)),
		names: make(map[string]string, len(roles)),
	}
	for name, skills := range roles {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrEmptyRole
		}
		if len(skills) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoRequirements, name)
		}
		key := strings.ToLower(name)
		if _, dup := c.names[key]; dup {
			return nil, fmt.Errorf("duplicate role %q", name)
		}

		reqs := make([]Requirement, 0, len(skills))
		for s, w := range skills {
			if w < 0 || w > 1 {
				return nil, fmt.Errorf("%w: %s/%s = %v", ErrInvalidImportance, name, s, w)
			}
			reqs = append(reqs, Requirement{Skill: strings.TrimSpace(s), Importance: w})
		}
		sort.Slice(reqs, func(i, j int) bool {
			if reqs[i].Importance != reqs[j].Importance {
				return reqs[i].Importance > reqs[j].Importance
			}
			return reqs[i].Skill < reqs[j].Skill
		})

		c.names[key] = name
		c.roles[name] = reqs
	}
	return c, nil
}

// Load reads a YAML roles file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roles: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing roles: %w", err)
	}
	if f.Version != CurrentFileVersion {
		return nil, fmt.Errorf("unsupported roles version %d (want %d)", f.Version, CurrentFileVersion)
	}

	c, err := New(f.Roles)
	if err != nil {
		return nil, fmt.Errorf("validating roles: %w", err)
	}
	return c, nil
}

// Required returns a role's requirements, most important first and ties by
// skill name. The role name is matched ignoring case.
func (c *Catalog) Required(role string) ([]Requirement, error) {
	name, ok := c.names[strings.ToLower(strings.TrimSpace(role))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return append([]Requirement(nil), c.roles[name]...), nil
}

// Names returns the role names sorted alphabetically.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.roles))
	for name := range c.roles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of roles.
func (c *Catalog) Len() int {
	return len(c.roles)
}

package skill

import (
	"errors"
	"fmt"
	"strings"
)

// Proficiency is an ordered skill level.
type Proficiency int

// Proficiency levels, lowest first.
const (
	None Proficiency = iota
	Beginner
	Intermediate
	Advanced
	Expert
)

// ErrInvalidProficiency is returned when a proficiency name is not recognized.
var ErrInvalidProficiency = errors.New("invalid proficiency")

var proficiencyNames = []string{"none", "beginner", "intermediate", "advanced", "expert"}

// String returns the lowercase level name.
func (p Proficiency) String() string {
	if p < None || p > Expert {
		return fmt.Sprintf("proficiency(%d)", int(p))
	}
	return proficiencyNames[p]
}

// Rank returns the level's position in the ordering.
func (p Proficiency) Rank() int {
	return int(p)
}

// Valid reports whether p is a known level.
func (p Proficiency) Valid() bool {
	return p >= None && p <= Expert
}

// ParseProficiency parses a level name, ignoring case.
func ParseProficiency(s string) (Proficiency, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range proficiencyNames {
		if key == name {
			return Proficiency(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidProficiency, s, strings.Join(proficiencyNames, ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (p Proficiency) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidProficiency, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Proficiency) UnmarshalText(text []byte) error {
	parsed, err := ParseProficiency(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

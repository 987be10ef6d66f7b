// Package gap compares a learner's skills against a role's requirements.
package gap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/skillpath/internal/skill"
)

// Type classifies a skill gap.
type Type int

// Gap types, in urgency order.
const (
	Missing Type = iota
	ProficiencyLow
)

var typeNames = [...]string{
	Missing:        "MISSING",
	ProficiencyLow: "PROFICIENCY_LOW",
}

// ErrInvalidType is returned when parsing an unknown gap type.
var ErrInvalidType = errors.New("invalid gap type")

// String returns the wire name of the gap type.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType parses a gap type wire name.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return Missing, fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(typeNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, int(t))
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SkillGap is one target skill the learner lacks or holds at too low a level.
// Gaps are values produced fresh by every analysis.
type SkillGap struct {
	Skill        string            `json:"skill"`
	Type         Type              `json:"gap_type"`
	Similarity   float32           `json:"similarity"`
	MatchedSkill string            `json:"matched_skill,omitempty"`
	Current      skill.Proficiency `json:"current_proficiency"`
	Target       skill.Proficiency `json:"target_proficiency"`
	Importance   float64           `json:"importance,omitempty"`
	Reason       string            `json:"reason"`
}

// Report is a gap analysis as printed by the gaps command.
type Report struct {
	UserID string     `json:"user_id,omitempty"`
	Role   string     `json:"role,omitempty"`
	Gaps   []SkillGap `json:"gaps"`
}

// ErrEmptySkill is returned when a decoded gap names no skill.
var ErrEmptySkill = errors.New("gap has no skill")

// ReadReport decodes the output of the gaps command, or a bare JSON array of
// gaps.
func ReadReport(data []byte) (*Report, error) {
	data = bytes.TrimSpace(data)
	r := &Report{}
	var err error
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &r.Gaps)
	} else {
		err = json.Unmarshal(data, r)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing gaps: %w", err)
	}
	for i, g := range r.Gaps {
		if strings.TrimSpace(g.Skill) == "" {
			return nil, fmt.Errorf("gap %d: %w", i+1, ErrEmptySkill)
		}
	}
	return r, nil
}

// Package skill defines skills, proficiency levels, and learner profiles.
package skill

import (
	"errors"
	"fmt"
	"strings"
)

// Skill is a named ability held at some proficiency.
type Skill struct {
	Name        string      `json:"name" yaml:"name"`
	Proficiency Proficiency `json:"proficiency" yaml:"proficiency"`
	Verified    bool        `json:"verified" yaml:"verified"`
	Confidence  float64     `json:"confidence" yaml:"confidence"` // In [0, 1]
}

// Validation errors.
var (
	ErrEmptyName         = errors.New("skill name is required")
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
	ErrDuplicateSkill    = errors.New("skill already in profile")
	ErrSkillNotFound     = errors.New("skill not in profile")
)

// New creates a validated Skill with a trimmed name.
func New(name string, level Proficiency, verified bool, confidence float64) (Skill, error) {
	s := Skill{
		Name:        strings.TrimSpace(name),
		Proficiency: level,
		Verified:    verified,
		Confidence:  confidence,
	}
	if err := s.Validate(); err != nil {
		return Skill{}, err
	}
	return s, nil
}

// Validate checks the skill's fields.
func (s *Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.Proficiency.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidProficiency, int(s.Proficiency))
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidConfidence, s.Confidence)
	}
	return nil
}

// Names returns the names of skills in order.
func Names(skills []Skill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}

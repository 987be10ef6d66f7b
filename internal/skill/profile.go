package skill

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// CareerGoal describes where the learner wants to end up.
type CareerGoal struct {
	TargetRole    string   `json:"target_role" yaml:"target_role"`
	TargetSkills  []string `json:"target_skills,omitempty" yaml:"target_skills,omitempty"`
	TimelineWeeks int      `json:"timeline_weeks,omitempty" yaml:"timeline_weeks,omitempty"`
}

// UserProfile owns a learner's skills, keyed by unique name, and their goal.
type UserProfile struct {
	UserID string
	Goal   CareerGoal

	skills map[string]Skill
}

// NewUserProfile creates an empty profile.
func NewUserProfile(userID string, goal CareerGoal) *UserProfile {
	return &UserProfile{
		UserID: userID,
		Goal:   goal,
		skills: make(map[string]Skill),
	}
}

// Add validates and stores a skill. Names must be unique within the profile.
func (p *UserProfile) Add(s Skill) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, exists := p.skills[s.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSkill, s.Name)
	}
	p.skills[s.Name] = s
	return nil
}

// Get returns the skill with the given name.
func (p *UserProfile) Get(name string) (Skill, bool) {
	s, ok := p.skills[name]
	return s, ok
}

// SetProficiency updates the level of an existing skill.
func (p *UserProfile) SetProficiency(name string, level Proficiency) error {
	s, ok := p.skills[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSkillNotFound, name)
	}
	if !level.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidProficiency, int(level))
	}
	s.Proficiency = level
	p.skills[name] = s
	return nil
}

// Len returns the number of skills.
func (p *UserProfile) Len() int {
	return len(p.skills)
}

// Skills returns a copy of the skills sorted by name.
func (p *UserProfile) Skills() []Skill {
	out := make([]Skill, 0, len(p.skills))
	for _, s := range p.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// profileFile is the YAML layout of a profile.
type profileFile struct {
	UserID string     `yaml:"user_id"`
	Skills []Skill    `yaml:"skills"`
	Goal   CareerGoal `yaml:"goal"`
}

// LoadProfile reads a YAML learner profile.
func LoadProfile(path string) (*UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	p := NewUserProfile(f.UserID, f.Goal)
	for i, s := range f.Skills {
		if err := p.Add(s); err != nil {
			return nil, fmt.Errorf("skill %d: %w", i, err)
		}
	}
	return p, nil
}

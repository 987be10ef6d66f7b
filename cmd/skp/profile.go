package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/skillpath/internal/skill"
)

// parseSkills parses "Python:advanced,SQL" into skills. Entries without a
// level get def.
func parseSkills(list string, def skill.Proficiency) ([]skill.Skill, error) {
	var out []skill.Skill
	seen := make(map[string]bool)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, level := part, def
		if i := strings.LastIndex(part, ":"); i >= 0 {
			p, err := skill.ParseProficiency(part[i+1:])
			if err != nil {
				return nil, fmt.Errorf("skill %q: %w", part, err)
			}
			name, level = part[:i], p
		}

		s, err := skill.New(name, level, false, 1)
		if err != nil {
			return nil, fmt.Errorf("skill %q: %w", part, err)
		}
		key := strings.ToLower(s.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", skill.ErrDuplicateSkill, s.Name)
		}
		seen[key] = true
		out = append(out, s)
	}
	return out, nil
}

// learnerInput is the learner described by --profile or --skills and --role.
type learnerInput struct {
	UserID string
	Role   string
	Skills []skill.Skill
}

// loadLearner resolves the learner from a profile file and flag overrides.
// Flags win over the profile.
func loadLearner(profilePath, skillsFlag, roleFlag, userFlag string, def skill.Proficiency) (*learnerInput, error) {
	in := &learnerInput{UserID: userFlag, Role: roleFlag}

	if profilePath != "" {
		p, err := skill.LoadProfile(profilePath)
		if err != nil {
			return nil, err
		}
		in.Skills = p.Skills()
		if in.UserID == "" {
			in.UserID = p.UserID
		}
		if in.Role == "" {
			in.Role = p.Goal.TargetRole
		}
	}

	if skillsFlag != "" {
		skills, err := parseSkills(skillsFlag, def)
		if err != nil {
			return nil, err
		}
		in.Skills = skills
	}

	if strings.TrimSpace(in.Role) == "" {
		return nil, errors.New("a target role is required (--role or goal.target_role in the profile)")
	}
	if in.UserID == "" {
		in.UserID = "anonymous"
	}
	return in, nil
}

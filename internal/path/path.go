// Package path turns ranked skill gaps into a scheduled learning path.
package path

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matsen/skillpath/internal/catalog"
	"github.com/matsen/skillpath/internal/gap"
)

// Status is a module's progress state. Generation only sets LOCKED and
// UNLOCKED; later transitions belong to the caller.
type Status int

// Module states.
const (
	Locked Status = iota
	Unlocked
	InProgress
	Done
)

var statusNames = [...]string{
	Locked:     "LOCKED",
	Unlocked:   "UNLOCKED",
	InProgress: "IN_PROGRESS",
	Done:       "DONE",
}

// ErrInvalidStatus is returned when parsing an unknown status.
var ErrInvalidStatus = errors.New("invalid module status")

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, text)
}

// Module is one scheduled unit of study, normally covering one skill.
type Module struct {
	ID             int              `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	EstimatedHours float64          `json:"estimated_hours"`
	Topics         []string         `json:"topics"`
	Resources      []catalog.Scored `json:"resources"`
	Status         Status           `json:"status"`
	Week           int              `json:"week"`
	SpanWeeks      int              `json:"span_weeks"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	Explanation    string           `json:"explanation"`
	GapType        gap.Type         `json:"gap_type"`
}

// LearningPath is an ordered sequence of modules for one learner and role.
type LearningPath struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	HoursPerWeek float64   `json:"hours_per_week"`
	GeneratedAt  time.Time `json:"generated_at"`
	Degraded     bool      `json:"degraded"`
	Modules      []Module  `json:"modules"`
}

// TotalHours sums the estimated hours of every module.
func (p *LearningPath) TotalHours() float64 {
	var total float64
	for _, m := range p.Modules {
		total += m.EstimatedHours
	}
	return total
}

// TotalWeeks is the last week any module occupies, or 0 for an empty path.
func (p *LearningPath) TotalWeeks() int {
	total := 0
	for _, m := range p.Modules {
		if last := m.Week + m.SpanWeeks - 1; last > total {
			total = last
		}
	}
	return total
}

// MarshalJSON includes the derived totals.
func (p LearningPath) MarshalJSON() ([]byte, error) {
	type plain LearningPath
	return json.Marshal(struct {
		plain
		TotalHours float64 `json:"total_hours"`
		TotalWeeks int     `json:"total_weeks"`
	}{plain(p), p.TotalHours(), p.TotalWeeks()})
}

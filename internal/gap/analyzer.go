package gap

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/skillpath/internal/embedding"
	"github.com/matsen/skillpath/internal/skill"
)

// DefaultThreshold is the similarity at or above which a user skill counts as
// covering a target skill.
const DefaultThreshold float32 = 0.7

// Target is a required skill with its role importance weight.
type Target struct {
	Name       string
	Importance float64
}

// Analyzer computes skill gaps using embedding similarity between skill names.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	provider  embedding.Provider
	threshold float32
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithThreshold sets the match threshold.
func WithThreshold(threshold float32) Option {
	return func(a *Analyzer) {
		a.threshold = threshold
	}
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(provider embedding.Provider, opts ...Option) *Analyzer {
	a := &Analyzer{
		provider:  provider,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Threshold returns the match threshold in use.
func (a *Analyzer) Threshold() float32 {
	return a.threshold
}

// Analyze returns the gaps between userSkills and targets at min proficiency.
func (a *Analyzer) Analyze(ctx context.Context, userSkills []skill.Skill, targets []string, min skill.Proficiency) ([]SkillGap, error) {
	ts := make([]Target, len(targets))
	for i, name := range targets {
		ts[i] = Target{Name: name}
	}
	return a.AnalyzeTargets(ctx, userSkills, ts, min)
}

// AnalyzeTargets is Analyze with importance weights carried onto the gaps.
// MISSING gaps sort before PROFICIENCY_LOW, then by similarity ascending;
// equal gaps keep target order.
func (a *Analyzer) AnalyzeTargets(ctx context.Context, userSkills []skill.Skill, targets []Target, min skill.Proficiency) ([]SkillGap, error) {
	targets = dedupe(targets)
	gaps := make([]SkillGap, 0, len(targets))

	if len(userSkills) == 0 {
		for _, t := range targets {
			gaps = append(gaps, SkillGap{
				Skill:      t.Name,
				Type:       Missing,
				Current:    skill.None,
				Target:     min,
				Importance: t.Importance,
				Reason:     fmt.Sprintf("%s is not in your current skills", t.Name),
			})
		}
		return gaps, nil
	}
	if len(targets) == 0 {
		return gaps, nil
	}

	targetNames := make([]string, len(targets))
	for i, t := range targets {
		targetNames[i] = t.Name
	}
	targetEmbs, err := a.provider.EmbedBatch(ctx, targetNames)
	if err != nil {
		return nil, fmt.Errorf("embedding target skills: %w", err)
	}
	userEmbs, err := a.provider.EmbedBatch(ctx, skill.Names(userSkills))
	if err != nil {
		return nil, fmt.Errorf("embedding user skills: %w", err)
	}

	matrix := similarityMatrix(targetEmbs, userEmbs)
	for i, t := range targets {
		best, sim := argmax(matrix[i])
		matched := userSkills[best]

		g := SkillGap{
			Skill:      t.Name,
			Similarity: sim,
			Current:    matched.Proficiency,
			Target:     min,
			Importance: t.Importance,
		}
		switch {
		case sim < a.threshold:
			g.Type = Missing
			g.Current = skill.None
			g.Reason = fmt.Sprintf("%s is not in your current skills (closest: %s, similarity %.2f)", t.Name, matched.Name, sim)
		case matched.Proficiency.Rank() < min.Rank():
			g.Type = ProficiencyLow
			g.MatchedSkill = matched.Name
			g.Reason = fmt.Sprintf("%s is at %s, %s required", matched.Name, matched.Proficiency, min)
		default:
			continue
		}
		gaps = append(gaps, g)
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Type != gaps[j].Type {
			return gaps[i].Type < gaps[j].Type
		}
		return gaps[i].Similarity < gaps[j].Similarity
	})
	return gaps, nil
}

// similarityMatrix returns cosine similarity for every (row, col) pair.
func similarityMatrix(rows, cols []embedding.Embedding) [][]float32 {
	m := make([][]float32, len(rows))
	for i, r := range rows {
		m[i] = make([]float32, len(cols))
		for j, c := range cols {
			m[i][j] = r.Similarity(c)
		}
	}
	return m
}

// argmax returns the first index holding the largest value.
func argmax(row []float32) (int, float32) {
	best := 0
	for j := 1; j < len(row); j++ {
		if row[j] > row[best] {
			best = j
		}
	}
	return best, row[best]
}

func dedupe(targets []Target) []Target {
	seen := make(map[string]bool, len(targets))
	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		t.Name = strings.TrimSpace(t.Name)
		key := strings.ToLower(t.Name)
		if t.Name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

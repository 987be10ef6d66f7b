package path

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/skillpath/internal/catalog"
	"github.com/matsen/skillpath/internal/embedding"
	"github.com/matsen/skillpath/internal/gap"
	"github.com/matsen/skillpath/internal/logger"
)

// ErrInvalidBudget is returned when hours per week is not a positive finite
// number.
var ErrInvalidBudget = errors.New("hours per week must be positive and finite")

// FallbackSource marks placeholder resources used when retrieval finds nothing.
const FallbackSource = "fallback"

// Defaults for resource retrieval per module.
const (
	DefaultTopK                = 3
	DefaultMinScore    float32 = 0.3
	DefaultConcurrency         = 4
)

// Orderer orders skills by prerequisites.
type Orderer interface {
	SortSkills(requested []string) []string
	Prerequisites(skill string) []string
}

// Recommender finds resources for a skill.
type Recommender interface {
	Recommend(ctx context.Context, query string, topK int, minScore float32) ([]catalog.Scored, error)
}

// Generator builds learning paths. It is safe for concurrent use.
type Generator struct {
	graph       Orderer
	recommender Recommender
	topK        int
	minScore    float32
	concurrency int
	now         func() time.Time
	log         *logger.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTopK sets how many resources each module gets.
func WithTopK(k int) Option {
	return func(g *Generator) {
		if k > 0 {
			g.topK = k
		}
	}
}

// WithMinScore sets the resource similarity floor.
func WithMinScore(score float32) Option {
	return func(g *Generator) {
		g.minScore = score
	}
}

// WithConcurrency bounds concurrent resource lookups.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithClock sets the time source used for GeneratedAt and module dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// NewGenerator creates a Generator.
func NewGenerator(graph Orderer, recommender Recommender, opts ...Option) *Generator {
	g := &Generator{
		graph:       graph,
		recommender: recommender,
		topK:        DefaultTopK,
		minScore:    DefaultMinScore,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With("component", "path")
	return g
}

// lookup is the retrieval outcome for one skill.
type lookup struct {
	resources   []catalog.Scored
	unavailable bool
}

// GeneratePath orders the gaps by prerequisite, attaches resources, and packs
// the modules into weeks of hoursPerWeek. No gaps yields an empty path.
// If the embedding model is down, affected modules get fallback resources and
// the path is marked Degraded.
func (g *Generator) GeneratePath(ctx context.Context, userID, role string, gaps []gap.SkillGap, hoursPerWeek float64) (*LearningPath, error) {
	if hoursPerWeek <= 0 || math.IsNaN(hoursPerWeek) || math.IsInf(hoursPerWeek, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBudget, hoursPerWeek)
	}

	now := g.now()
	p := &LearningPath{
		ID:           uuid.NewString(),
		UserID:       userID,
		Role:         role,
		HoursPerWeek: hoursPerWeek,
		GeneratedAt:  now,
		Modules:      []Module{},
	}
	if len(gaps) == 0 {
		g.log.Info("no gaps, empty path", "user_id", userID, "role", role)
		return p, nil
	}

	byName := make(map[string]gap.SkillGap, len(gaps))
	names := make([]string, 0, len(gaps))
	for _, sg := range gaps {
		if _, dup := byName[sg.Skill]; dup {
			continue
		}
		byName[sg.Skill] = sg
		names = append(names, sg.Skill)
	}
	ordered := g.graph.SortSkills(names)

	found, err := g.fetchResources(ctx, ordered)
	if err != nil {
		return nil, err
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sched := newSchedule()
	placed := make(map[string]bool, len(ordered))

	for i, name := range ordered {
		sg := byName[name]
		hours := MissingHours
		if sg.Type == gap.ProficiencyLow {
			hours = ProficiencyLowHours
		}

		var week int
		week, sched = sched.place(hours, hoursPerWeek)
		span := spanWeeks(hours, hoursPerWeek)
		start := day.AddDate(0, 0, 7*(week-1))

		resources := found[i].resources
		fallback := len(resources) == 0
		if fallback {
			resources = fallbackResources(name)
		}
		if found[i].unavailable {
			p.Degraded = true
		}

		var earlier []string
		for _, pre := range g.graph.Prerequisites(name) {
			if placed[pre] {
				earlier = append(earlier, pre)
			}
		}
		placed[name] = true

		status := Locked
		if i == 0 {
			status = Unlocked
		}

		p.Modules = append(p.Modules, Module{
			ID:             i + 1,
			Title:          moduleTitle(sg),
			Description:    sg.Reason,
			EstimatedHours: hours,
			Topics:         []string{name},
			Resources:      resources,
			Status:         status,
			Week:           week,
			SpanWeeks:      span,
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, 7*span-1),
			Explanation:    explain(name, sg, resources, fallback, earlier),
			GapType:        sg.Type,
		})
	}

	g.log.Info("generated learning path",
		"user_id", userID,
		"role", role,
		"modules", len(p.Modules),
		"total_weeks", p.TotalWeeks(),
		"degraded", p.Degraded)
	return p, nil
}

// fetchResources looks up resources for every skill concurrently; results are
// returned in skill order.
func (g *Generator) fetchResources(ctx context.Context, skills []string) ([]lookup, error) {
	results := make([]lookup, len(skills))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for i, name := range skills {
		eg.Go(func() error {
			res, err := g.recommender.Recommend(egCtx, name, g.topK, g.minScore)
			if errors.Is(err, embedding.ErrModelUnavailable) {
				g.log.Warn("recommender unavailable, using fallback resources", "skill", name, "error", err)
				results[i].unavailable = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("recommending resources for %s: %w", name, err)
			}
			results[i].resources = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func moduleTitle(sg gap.SkillGap) string {
	if sg.Type == gap.ProficiencyLow {
		return fmt.Sprintf("Level up %s", sg.Skill)
	}
	return fmt.Sprintf("Learn %s", sg.Skill)
}

// fallbackResources are search links used when no catalog resource matches.
func fallbackResources(skill string) []catalog.Scored {
	return []catalog.Scored{
		{Resource: catalog.Resource{
			Title:  skill + " official documentation",
			URL:    "https://duckduckgo.com/?q=" + url.QueryEscape(skill+" official documentation"),
			Type:   catalog.TypeDocumentation,
			Source: FallbackSource,
			Topic:  skill,
		}},
		{Resource: catalog.Resource{
			Title:  skill + " tutorial for beginners",
			URL:    "https://www.youtube.com/results?search_query=" + url.QueryEscape(skill+" tutorial for beginners"),
			Type:   catalog.TypeTutorial,
			Source: FallbackSource,
			Topic:  skill,
		}},
	}
}

func explain(skill string, sg gap.SkillGap, resources []catalog.Scored, fallback bool, earlier []string) string {
	var b strings.Builder
	if fallback {
		fmt.Fprintf(&b, "No catalog resources matched %s; start with the official documentation and a beginner tutorial.", skill)
	} else {
		top := resources[0]
		fmt.Fprintf(&b, "Start with %q (%s, similarity %.2f).", top.Title, top.Source, top.Similarity)
	}
	if sg.Reason != "" {
		b.WriteString(" ")
		b.WriteString(sg.Reason)
		if !strings.HasSuffix(sg.Reason, ".") {
			b.WriteString(".")
		}
	}
	if len(earlier) > 0 {
		fmt.Fprintf(&b, " Builds on %s, covered earlier in this path.", strings.Join(earlier, " and "))
	}
	return b.String()
}

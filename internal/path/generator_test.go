package path

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matsen/skillpath/internal/catalog"
	"github.com/matsen/skillpath/internal/depgraph"
	"github.com/matsen/skillpath/internal/embedding"
	"github.com/matsen/skillpath/internal/gap"
)

type fakeRecommender struct {
	results map[string][]catalog.Scored
	errs    map[string]error
}

func (f *fakeRecommender) Recommend(_ context.Context, query string, topK int, _ float32) ([]catalog.Scored, error) {
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	res := f.results[query]
	if len(res) > topK {
		res = res[:topK]
	}
	return res, nil
}

func scored(skill string, sim float32) catalog.Scored {
	return catalog.Scored{
		Resource: catalog.Resource{
			Title:  skill + " course",
			URL:    "https://example.org/" + strings.ToLower(skill),
			Type:   catalog.TypeCourse,
			Source: "example",
			Topic:  skill,
		},
		Similarity: sim,
	}
}

func mustGraph(t *testing.T, edges ...depgraph.Edge) *depgraph.Graph {
	t.Helper()
	g, err := depgraph.New(edges)
	if err != nil {
		t.Fatalf("depgraph.New() error = %v", err)
	}
	return g
}

var fixedNow = time.Date(2026, time.January, 5, 15, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func TestGeneratePath_GreedyPacking(t *testing.T) {
	rec := &fakeRecommender{results: map[string][]catalog.Scored{
		"Alpha": {scored("Alpha", 0.9)},
		"Beta":  {scored("Beta", 0.7)},
	}}
	g := NewGenerator(mustGraph(t), rec, WithClock(fixedClock))

	gaps := []gap.SkillGap{
		{Skill: "Alpha", Type: gap.Missing, Reason: "Alpha is not in your current skills"},
		{Skill: "Beta", Type: gap.ProficiencyLow, Reason: "Beta is at beginner, intermediate required"},
	}
	p, err := g.GeneratePath(context.Background(), "u1", "Engineer", gaps, 10)
	if err != nil {
		t.Fatalf("GeneratePath() error = %v", err)
	}

	if len(p.Modules) != 2 {
		t.Fatalf("len(Modules) = %d, want 2", len(p.Modules))
	}
	a, b := p.Modules[0], p.Modules[1]

	if a.EstimatedHours != 15 || a.Week != 1 || a.SpanWeeks != 2 {
		t.Errorf("module 1 = %vh week %d span %d, want 15h week 1 span 2", a.EstimatedHours, a.Week, a.SpanWeeks)
	}
	if b.EstimatedHours != 8 || b.Week != 2 || b.SpanWeeks != 1 {
		t.Errorf("module 2 = %vh week %d span %d, want 8h week 2 span 1", b.EstimatedHours, b.Week, b.SpanWeeks)
	}
	if p.TotalWeeks() != 2 {
		t.Errorf("TotalWeeks() = %d, want 2", p.TotalWeeks())
	}
	if p.TotalHours() != 23 {
		t.Errorf("TotalHours() = %v, want 23", p.TotalHours())
	}

	if !a.StartDate.Equal(day(time.January, 5)) || !a.EndDate.Equal(day(time.January, 18)) {
		t.Errorf("module 1 dates = %s..%s", a.StartDate, a.EndDate)
	}
	if !b.StartDate.Equal(day(time.January, 12)) || !b.EndDate.Equal(day(time.January, 18)) {
		t.Errorf("module 2 dates = %s..%s", b.StartDate, b.EndDate)
	}

	if a.Status != Unlocked || b.Status != Locked {
		t.Errorf("statuses = %s, %s; want UNLOCKED, LOCKED", a.Status, b.Status)
	}
	if a.ID != 1 || b.ID != 2 {
		t.Errorf("IDs = %d, %d; want 1, 2", a.ID, b.ID)
	}
	if a.Title != "Learn Alpha" || b.Title != "Level up Beta" {
		t.Errorf("titles = %q, %q", a.Title, b.Title)
	}
	if !strings.Contains(a.Explanation, `"Alpha course"`) || !strings.Contains(a.Explanation, "0.90") {
		t.Errorf("module 1 explanation = %q", a.Explanation)
	}
	if p.Degraded {
		t.Error("Degraded = true, want false")
	}
	if p.ID == "" || !p.GeneratedAt.Equal(fixedNow) || p.UserID != "u1" || p.Role != "Engineer" {
		t.Errorf("path header = %+v", p)
	}
}

func TestGeneratePath_PrerequisiteOrder(t *testing.T) {
	graph := mustGraph(t,
		depgraph.Edge{Prerequisite: "HTML", Target: "CSS"},
		depgraph.Edge{Prerequisite: "CSS", Target: "Tailwind CSS"},
	)
	rec := &fakeRecommender{results: map[string][]catalog.Scored{
		"HTML": {scored("HTML", 0.8)},
		"CSS":  {scored("CSS", 0.8)},
	}}
	g := NewGenerator(graph, rec, WithClock(fixedClock))

	gaps := []gap.SkillGap{
		{Skill: "CSS", Type: gap.Missing},
		{Skill: "Tailwind CSS", Type: gap.Missing},
		{Skill: "HTML", Type: gap.ProficiencyLow},
	}
	p, err := g.GeneratePath(context.Background(), "u1", "Frontend Developer", gaps, 20)
	if err != nil {
		t.Fatalf("GeneratePath() error = %v", err)
	}

	var order []string
	for _, m := range p.Modules {
		order = append(order, m.Topics[0])
	}
	if want := []string{"HTML", "CSS", "Tailwind CSS"}; !reflect.DeepEqual(order, want) {
		t.Errorf("module order = %v, want %v", order, want)
	}
	if !strings.Contains(p.Modules[1].Explanation, "Builds on HTML") {
		t.Errorf("CSS explanation = %q, want mention of HTML", p.Modules[1].Explanation)
	}
	if strings.Contains(p.Modules[0].Explanation, "Builds on") {
		t.Errorf("HTML explanation = %q, should name no prerequisites", p.Modules[0].Explanation)
	}
}

func TestGeneratePath_FallbackResources(t *testing.T) {
	g := NewGenerator(mustGraph(t), &fakeRecommender{}, WithClock(fixedClock))

	p, err := g.GeneratePath(context.Background(), "u1", "r", []gap.SkillGap{{Skill: "Rust", Type: gap.Missing}}, 10)
	if err != nil {
		t.Fatalf("GeneratePath() error = %v", err)
	}

	m := p.Modules[0]
	if len(m.Resources) != 2 {
		t.Fatalf("len(Resources) = %d, want 2 fallback stubs", len(m.Resources))
	}
	for _, r := range m.Resources {
		if r.Source != FallbackSource || r.Similarity != 0 || r.Topic != "Rust" {
			t.Errorf("fallback resource = %+v", r)
		}
		if err := r.Validate(); err != nil {
			t.Errorf("fallback resource invalid: %v", err)
		}
	}
	if !strings.Contains(m.Explanation, "No catalog resources matched Rust") {
		t.Errorf("Explanation = %q", m.Explanation)
	}
	if p.Degraded {
		t.Error("an empty result alone should not mark the path degraded")
	}
}

func TestGeneratePath_ModelUnavailable(t *testing.T) {
	rec := &fakeRecommender{
		results: map[string][]catalog.Scored{"Go": {scored("Go", 0.9)}},
		errs:    map[string]error{"Rust": fmt.Errorf("embedding query: %w", embedding.ErrModelUnavailable)},
	}
	g := NewGenerator(mustGraph(t), rec, WithClock(fixedClock))

	gaps := []gap.SkillGap{{Skill: "Go", Type: gap.Missing}, {Skill: "Rust", Type: gap.Missing}}
	p, err := g.GeneratePath(context.Background(), "u1", "r", gaps, 10)
	if err != nil {
		t.Fatalf("GeneratePath() error = %v", err)
	}
	if !p.Degraded {
		t.Error("Degraded = false, want true")
	}
	if p.Modules[0].Resources[0].Source == FallbackSource {
		t.Error("Go module should keep its real resources")
	}
	if p.Modules[1].Resources[0].Source != FallbackSource {
		t.Error("Rust module should fall back")
	}
}

func TestGeneratePath_RecommenderError(t *testing.T) {
	boom := errors.New("boom")
	rec := &fakeRecommender{errs: map[string]error{"Go": boom}}
	g := NewGenerator(mustGraph(t), rec)

	_, err := g.GeneratePath(context.Background(), "u1", "r", []gap.SkillGap{{Skill: "Go"}}, 10)
	if !errors.Is(err, boom) {
		t.Errorf("GeneratePath() error = %v, want boom", err)
	}
}

func TestGeneratePath_InvalidBudget(t *testing.T) {
	g := NewGenerator(mustGraph(t), &fakeRecommender{})
	for _, budget := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := g.GeneratePath(context.Background(), "u1", "r", nil, budget); !errors.Is(err, ErrInvalidBudget) {
			t.Errorf("GeneratePath(budget=%v) error = %v, want ErrInvalidBudget", budget, err)
		}
	}
}

func TestGeneratePath_NoGaps(t *testing.T) {
	g := NewGenerator(mustGraph(t), &fakeRecommender{}, WithClock(fixedClock))

	p, err := g.GeneratePath(context.Background(), "u1", "r", nil, 10)
	if err != nil {
		t.Fatalf("GeneratePath() error = %v", err)
	}
	if p.Modules == nil || len(p.Modules) != 0 {
		t.Errorf("Modules = %v, want empty", p.Modules)
	}
	if p.TotalWeeks() != 0 || p.TotalHours() != 0 {
		t.Errorf("totals = %d weeks, %v hours; want 0", p.TotalWeeks(), p.TotalHours())
	}
}

func TestGeneratePath_Deterministic(t *testing.T) {
	rec := &fakeRecommender{results: map[string][]catalog.Scored{
		"A": {scored("A", 0.5)}, "C": {scored("C", 0.6)},
	}}
	g := NewGenerator(mustGraph(t, depgraph.Edge{Prerequisite: "C", Target: "A"}), rec,
		WithClock(fixedClock), WithTopK(1), WithConcurrency(2), WithMinScore(0.1))

	gaps := []gap.SkillGap{{Skill: "A"}, {Skill: "B", Type: gap.ProficiencyLow}, {Skill: "C"}, {Skill: "A"}}
	first, err := g.GeneratePath(context.Background(), "u1", "r", gaps, 12)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.GeneratePath(context.Background(), "u1", "r", gaps, 12)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Modules, second.Modules) {
		t.Error("GeneratePath() is not deterministic")
	}
	if first.ID == second.ID {
		t.Error("paths should get distinct IDs")
	}
	if len(first.Modules) != 3 {
		t.Errorf("len(Modules) = %d, want 3 (duplicate gap dropped)", len(first.Modules))
	}
}

func TestLearningPath_JSON(t *testing.T) {
	g := NewGenerator(mustGraph(t), &fakeRecommender{}, WithClock(fixedClock))
	p, err := g.GeneratePath(context.Background(), "u1", "r", []gap.SkillGap{{Skill: "Go", Type: gap.Missing}}, 10)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out["total_hours"] != 15.0 || out["total_weeks"] != 2.0 {
		t.Errorf("totals = %v, %v", out["total_hours"], out["total_weeks"])
	}
	modules := out["modules"].([]any)
	m := modules[0].(map[string]any)
	if m["status"] != "UNLOCKED" || m["gap_type"] != "MISSING" {
		t.Errorf("module = %v", m)
	}

	var back LearningPath
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if back.Modules[0].Status != Unlocked || back.TotalWeeks() != 2 {
		t.Errorf("decoded path = %+v", back)
	}
}

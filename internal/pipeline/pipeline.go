// Package pipeline wires the taxonomy, dependency graph, role catalog and
// resource catalog into the operations exposed by the CLI.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/matsen/skillpath/internal/catalog"
	"github.com/matsen/skillpath/internal/config"
	"github.com/matsen/skillpath/internal/depgraph"
	"github.com/matsen/skillpath/internal/embedding"
	"github.com/matsen/skillpath/internal/evaluate"
	"github.com/matsen/skillpath/internal/gap"
	"github.com/matsen/skillpath/internal/logger"
	"github.com/matsen/skillpath/internal/mapper"
	"github.com/matsen/skillpath/internal/path"
	"github.com/matsen/skillpath/internal/recommend"
	"github.com/matsen/skillpath/internal/role"
	"github.com/matsen/skillpath/internal/semantic"
	"github.com/matsen/skillpath/internal/skill"
	"github.com/matsen/skillpath/internal/taxonomy"
)

// Service holds the loaded data and the components built on it.
// All methods are safe for concurrent use.
type Service struct {
	root     string
	cfg      *config.Config
	base     *logger.Logger
	log      *logger.Logger
	provider embedding.Provider

	taxonomy *taxonomy.Taxonomy
	graph    *depgraph.Graph
	roles    *role.Catalog

	mapper      *mapper.Mapper
	analyzer    *gap.Analyzer
	recommender *recommend.Recommender
	generator   *path.Generator

	allowDegraded bool
	indexCached   bool
	progress      semantic.ProgressReporter
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAllowDegraded makes ExtractSkills fall back to alias-only matching when
// the embedding model is unavailable.
func WithAllowDegraded(allow bool) Option {
	return func(s *Service) {
		s.allowDegraded = allow
	}
}

// WithProgress reports catalog embedding progress.
func WithProgress(p semantic.ProgressReporter) Option {
	return func(s *Service) {
		s.progress = p
	}
}

// WithClock sets the clock used for path dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// ExtractResult is the outcome of skill extraction.
type ExtractResult struct {
	Skills     []string `json:"skills"`
	Candidates []string `json:"candidates"`
	Degraded   bool     `json:"degraded"`
}

// Open loads every data file under root and builds the components.
// The taxonomy is required. A missing prerequisites, roles or catalog file
// counts as empty. A dependency cycle aborts. The semantic index is loaded
// from cache when it matches the catalog and rebuilt and saved otherwise.
// If the model is down the index is deferred to the first recommendation,
// so Open still succeeds.
func Open(ctx context.Context, root string, cfg *config.Config, log *logger.Logger, provider embedding.Provider, opts ...Option) (*Service, error) {
	s := &Service{
		root:     root,
		cfg:      cfg,
		base:     log,
		log:      log.With("component", "pipeline"),
		provider: provider,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	tax, err := taxonomy.Load(config.TaxonomyPath(root))
	if err != nil {
		return nil, err
	}
	s.taxonomy = tax

	graph, err := depgraph.Load(config.EdgesPath(root))
	if err != nil {
		return nil, fmt.Errorf("loading prerequisites: %w", err)
	}
	s.graph = graph

	roles, err := role.Load(config.RolesPath(root))
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		roles, _ = role.New(nil)
	default:
		return nil, err
	}
	s.roles = roles

	resources, err := catalog.ReadAll(config.CatalogPath(root))
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	rec, err := s.openRecommender(ctx, resources)
	if err != nil {
		return nil, err
	}
	s.recommender = rec

	s.mapper = mapper.New(tax, provider,
		mapper.WithThreshold(cfg.Mapper.Threshold),
		mapper.WithLogger(log))
	s.analyzer = gap.NewAnalyzer(provider, gap.WithThreshold(cfg.Gaps.Threshold))
	s.generator = path.NewGenerator(graph, rec,
		path.WithTopK(cfg.Path.ResourcesPerModule),
		path.WithMinScore(cfg.Recommend.MinScore),
		path.WithConcurrency(cfg.Path.Concurrency),
		path.WithClock(s.now),
		path.WithLogger(log))

	s.log.Info("pipeline ready",
		"skills", tax.Len(),
		"edges", graph.EdgeCount(),
		"roles", roles.Len(),
		"resources", rec.Len(),
		"index_cached", s.indexCached)
	return s, nil
}

func (s *Service) openRecommender(ctx context.Context, resources []catalog.Resource) (*recommend.Recommender, error) {
	opts := []recommend.Option{recommend.WithLogger(s.base)}
	if s.progress != nil {
		opts = append(opts, recommend.WithProgress(s.progress))
	}

	indexPath := config.IndexPath(s.root)
	idx, err := semantic.Load(indexPath)
	if err == nil {
		rec, err := recommend.NewFromIndex(s.provider, resources, idx, opts...)
		if err == nil {
			s.indexCached = true
			return rec, nil
		}
		if !errors.Is(err, recommend.ErrIndexMismatch) {
			return nil, err
		}
		s.log.Info("semantic index is stale, rebuilding", "reason", err.Error())
	} else if !errors.Is(err, semantic.ErrIndexNotFound) {
		s.log.Warn("ignoring unreadable semantic index", "path", indexPath, "error", err)
	}

	rec, err := recommend.New(ctx, s.provider, resources, opts...)
	if errors.Is(err, embedding.ErrModelUnavailable) {
		s.log.Warn("embedding model unavailable, deferring resource index", "error", err)
		return recommend.NewDeferred(s.provider, resources, opts...)
	}
	if err != nil {
		return nil, err
	}
	if err := rec.Index().Save(indexPath); err != nil {
		return nil, fmt.Errorf("saving semantic index: %w", err)
	}
	return rec, nil
}

// Root returns the directory containing .skillpath.
func (s *Service) Root() string {
	return s.root
}

// IndexCached reports whether Open reused the persisted semantic index.
func (s *Service) IndexCached() bool {
	return s.indexCached
}

// Taxonomy returns the loaded taxonomy.
func (s *Service) Taxonomy() *taxonomy.Taxonomy {
	return s.taxonomy
}

// Graph returns the prerequisite graph.
func (s *Service) Graph() *depgraph.Graph {
	return s.graph
}

// Roles returns the role catalog.
func (s *Service) Roles() *role.Catalog {
	return s.roles
}

// Recommender returns the resource recommender.
func (s *Service) Recommender() *recommend.Recommender {
	return s.recommender
}

// ExtractSkills finds canonical skills mentioned in text.
func (s *Service) ExtractSkills(ctx context.Context, text string) (*ExtractResult, error) {
	candidates := s.mapper.ExtractCandidates(text)
	skills, err := s.mapper.NormalizeAndMap(ctx, candidates, s.cfg.Mapper.Threshold)
	if err == nil {
		return &ExtractResult{Skills: skills, Candidates: candidates}, nil
	}
	if !s.allowDegraded || !errors.Is(err, embedding.ErrModelUnavailable) {
		return nil, err
	}

	s.log.Warn("embedding model unavailable, using alias matches only", "error", err)
	return &ExtractResult{
		Skills:     s.mapper.MapAliases(candidates),
		Candidates: candidates,
		Degraded:   true,
	}, nil
}

// AnalyzeGaps compares current skills against the skills roleName requires.
func (s *Service) AnalyzeGaps(ctx context.Context, current []skill.Skill, roleName string, min skill.Proficiency) ([]gap.SkillGap, error) {
	reqs, err := s.roles.Required(roleName)
	if err != nil {
		return nil, err
	}
	targets := make([]gap.Target, len(reqs))
	for i, r := range reqs {
		targets[i] = gap.Target{Name: r.Skill, Importance: r.Importance}
	}
	return s.analyzer.AnalyzeTargets(ctx, current, targets, min)
}

// Recommend returns up to topK resources for query at the configured score
// floor. A non-positive topK uses the configured default.
func (s *Service) Recommend(ctx context.Context, query string, topK int) ([]catalog.Scored, error) {
	if topK <= 0 {
		topK = s.cfg.Recommend.TopK
	}
	return s.recommender.Recommend(ctx, query, topK, s.cfg.Recommend.MinScore)
}

// GeneratePath builds a learning path for the gaps. A zero hoursPerWeek
// uses the configured default.
func (s *Service) GeneratePath(ctx context.Context, userID, roleName string, gaps []gap.SkillGap, hoursPerWeek float64) (*path.LearningPath, error) {
	if hoursPerWeek == 0 {
		hoursPerWeek = s.cfg.Path.HoursPerWeek
	}
	return s.generator.GeneratePath(ctx, userID, roleName, gaps, hoursPerWeek)
}

// RebuildCatalog re-embeds resources, swaps them in, and saves the new index.
// On error the previous catalog stays in service.
func (s *Service) RebuildCatalog(ctx context.Context, resources []catalog.Resource) error {
	if err := s.recommender.Rebuild(ctx, resources); err != nil {
		return err
	}
	if err := s.recommender.Index().Save(config.IndexPath(s.root)); err != nil {
		return fmt.Errorf("saving semantic index: %w", err)
	}
	s.indexCached = false
	return nil
}

// Evaluate scores the recommender against labeled queries.
func (s *Service) Evaluate(ctx context.Context, queries []evaluate.Query, ks []int) (map[string]float64, error) {
	return evaluate.Evaluate(ctx, s.recommender, queries, ks)
}

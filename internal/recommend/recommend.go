// Package recommend retrieves learning resources by semantic similarity.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/matsen/skillpath/internal/catalog"
	"github.com/matsen/skillpath/internal/embedding"
	"github.com/matsen/skillpath/internal/logger"
	"github.com/matsen/skillpath/internal/semantic"
)

// Defaults for Recommend.
const (
	DefaultTopK             = 5
	DefaultMinScore float32 = 0.3
)

// ErrEmptyCatalog is logged, never returned, when a recommendation is asked of
// an empty catalog.
var ErrEmptyCatalog = errors.New("resource catalog is empty")

// ErrIndexMismatch is returned by NewFromIndex when a persisted index does not
// belong to the catalog and model in use.
var ErrIndexMismatch = errors.New("semantic index does not match catalog")

// snapshot is an immutable catalog with its index. A nil index is built on
// first use.
type snapshot struct {
	resources []catalog.Resource
	byURL     map[string]int
	index     *semantic.Index
}

// Recommender answers similarity queries over a catalog snapshot.
// Rebuild swaps in a new snapshot atomically; calls in flight keep using the
// snapshot they started with.
type Recommender struct {
	provider embedding.Provider
	log      *logger.Logger
	progress semantic.ProgressReporter
	current  atomic.Pointer[snapshot]
	buildMu  sync.Mutex
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(r *Recommender) {
		r.log = log
	}
}

// WithProgress reports index build progress.
func WithProgress(p semantic.ProgressReporter) Option {
	return func(r *Recommender) {
		r.progress = p
	}
}

func newRecommender(provider embedding.Provider, opts []Option) *Recommender {
	r := &Recommender{
		provider: provider,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "recommender")
	return r
}

// New embeds every resource once and returns a ready Recommender.
func New(ctx context.Context, provider embedding.Provider, resources []catalog.Resource, opts ...Option) (*Recommender, error) {
	r := newRecommender(provider, opts)
	if err := r.Rebuild(ctx, resources); err != nil {
		return nil, err
	}
	return r, nil
}

// NewFromIndex wraps a previously built index. The index must have been built
// by the same model from exactly these resources.
func NewFromIndex(provider embedding.Provider, resources []catalog.Resource, idx *semantic.Index, opts ...Option) (*Recommender, error) {
	if err := catalog.CheckUnique(resources); err != nil {
		return nil, err
	}
	if idx.ModelName != provider.ModelName() {
		return nil, fmt.Errorf("%w: index model %q, provider model %q", ErrIndexMismatch, idx.ModelName, provider.ModelName())
	}
	if idx.Dimensions != provider.Dimensions() {
		return nil, fmt.Errorf("%w: index dimensions %d, provider dimensions %d", ErrIndexMismatch, idx.Dimensions, provider.Dimensions())
	}
	if idx.Fingerprint != Fingerprint(provider.ModelName(), resources) {
		return nil, fmt.Errorf("%w: fingerprint differs", ErrIndexMismatch)
	}

	r := newRecommender(provider, opts)
	r.current.Store(&snapshot{
		resources: append([]catalog.Resource(nil), resources...),
		byURL:     catalog.IndexByURL(resources),
		index:     idx,
	})
	return r, nil
}

// NewDeferred returns a Recommender over resources whose index is built by
// the first Recommend call. It embeds nothing up front, so it succeeds while
// the model is down.
func NewDeferred(provider embedding.Provider, resources []catalog.Resource, opts ...Option) (*Recommender, error) {
	if err := catalog.CheckUnique(resources); err != nil {
		return nil, err
	}
	r := newRecommender(provider, opts)
	r.current.Store(&snapshot{
		resources: append([]catalog.Resource(nil), resources...),
		byURL:     catalog.IndexByURL(resources),
	})
	return r, nil
}

// Documents converts resources into index documents keyed by URL.
func Documents(resources []catalog.Resource) []semantic.Document {
	docs := make([]semantic.Document, len(resources))
	for i := range resources {
		docs[i] = semantic.Document{ID: resources[i].URL, Text: resources[i].Text()}
	}
	return docs
}

// Fingerprint identifies a catalog as embedded by modelName.
func Fingerprint(modelName string, resources []catalog.Resource) string {
	return semantic.Fingerprint(modelName, Documents(resources))
}

// Rebuild embeds resources into a new snapshot and swaps it in.
// On error the current snapshot is left in place.
func (r *Recommender) Rebuild(ctx context.Context, resources []catalog.Resource) error {
	if err := catalog.CheckUnique(resources); err != nil {
		return err
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()
	_, err := r.build(ctx, resources)
	return err
}

// build embeds resources and stores the resulting snapshot. Callers hold buildMu.
func (r *Recommender) build(ctx context.Context, resources []catalog.Resource) (*snapshot, error) {
	b := semantic.NewBuilder(r.provider)
	if r.progress != nil {
		b.SetProgressReporter(r.progress)
	}
	idx, stats, err := b.Build(ctx, Documents(resources))
	if err != nil {
		return nil, fmt.Errorf("building resource index: %w", err)
	}

	snap := &snapshot{
		resources: append([]catalog.Resource(nil), resources...),
		byURL:     catalog.IndexByURL(resources),
		index:     idx,
	}
	r.current.Store(snap)
	r.log.Info("resource index built",
		"resources", stats.DocumentsIndexed,
		"skipped", stats.DocumentsSkipped,
		"duration_ms", stats.Duration.Milliseconds())
	return snap, nil
}

// ensureIndex builds the index of a deferred snapshot once. Concurrent
// callers wait for the first build.
func (r *Recommender) ensureIndex(ctx context.Context) (*snapshot, error) {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()
	snap := r.current.Load()
	if snap.index != nil {
		return snap, nil
	}
	return r.build(ctx, snap.resources)
}

// Index returns the current snapshot's index for persistence, or nil while
// the index is deferred.
func (r *Recommender) Index() *semantic.Index {
	return r.current.Load().index
}

// Ready reports whether the current snapshot has a built index.
func (r *Recommender) Ready() bool {
	return r.current.Load().index != nil
}

// Len returns the number of resources in the current snapshot.
func (r *Recommender) Len() int {
	return len(r.current.Load().resources)
}

// Recommend returns up to topK resources whose similarity to query is at
// least minScore, most similar first. An empty catalog yields no results.
func (r *Recommender) Recommend(ctx context.Context, query string, topK int, minScore float32) ([]catalog.Scored, error) {
	snap := r.current.Load()
	if topK <= 0 {
		return []catalog.Scored{}, nil
	}
	if len(snap.resources) == 0 {
		r.log.Warn(ErrEmptyCatalog.Error(), "query", query)
		return []catalog.Scored{}, nil
	}
	if strings.TrimSpace(query) == "" {
		return []catalog.Scored{}, nil
	}
	if snap.index == nil {
		var err error
		if snap, err = r.ensureIndex(ctx); err != nil {
			return nil, err
		}
	}
	if snap.index.Len() == 0 {
		r.log.Warn(ErrEmptyCatalog.Error(), "query", query)
		return []catalog.Scored{}, nil
	}

	q, err := r.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := snap.index.Search(q, topK, minScore)
	if err != nil {
		return nil, fmt.Errorf("searching resources: %w", err)
	}

	out := make([]catalog.Scored, 0, len(hits))
	for _, h := range hits {
		i, ok := snap.byURL[h.ID]
		if !ok {
			continue
		}
		out = append(out, catalog.Scored{Resource: snap.resources[i], Similarity: h.Similarity})
	}
	return out, nil
}

// Rank returns the URLs of the top k resources for query with no score floor.
func (r *Recommender) Rank(ctx context.Context, query string, k int) ([]string, error) {
	scored, err := r.Recommend(ctx, query, k, -1)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(scored))
	for i, s := range scored {
		urls[i] = s.URL
	}
	return urls, nil
}

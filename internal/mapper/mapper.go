// Package mapper extracts skill mentions from free text and maps them onto the
// skill taxonomy.
package mapper

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/matsen/skillpath/internal/embedding"
	"github.com/matsen/skillpath/internal/logger"
	"github.com/matsen/skillpath/internal/taxonomy"
)

// DefaultThreshold is the similarity a candidate must exceed to map onto a
// taxonomy entry by embedding.
const DefaultThreshold float32 = 0.5

// Mapper turns raw text into canonical skill names.
// It is safe for concurrent use; taxonomy embeddings are computed once on
// first use.
type Mapper struct {
	taxonomy  *taxonomy.Taxonomy
	provider  embedding.Provider
	threshold float32
	patterns  []termPattern
	short     map[string][]string
	log       *logger.Logger

	mu       sync.Mutex
	names    []string
	taxEmbs  []embedding.Embedding
	embedded bool
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithThreshold sets the similarity threshold used by ExtractSkills.
func WithThreshold(threshold float32) Option {
	return func(m *Mapper) {
		m.threshold = threshold
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(m *Mapper) {
		m.log = log
	}
}

// New creates a Mapper over an immutable taxonomy.
func New(tax *taxonomy.Taxonomy, provider embedding.Provider, opts ...Option) *Mapper {
	m := &Mapper{
		taxonomy:  tax,
		provider:  provider,
		threshold: DefaultThreshold,
		patterns:  compileTerms(tax.Terms()),
		short:     shortForms(tax.Terms()),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "mapper")
	return m
}

// Threshold returns the similarity threshold used by ExtractSkills.
func (m *Mapper) Threshold() float32 {
	return m.threshold
}

// ExtractCandidates returns skill-like phrases found in text: taxonomy names
// and aliases first, in order of appearance, then short noun phrases.
// Candidates are unique ignoring case.
func (m *Mapper) ExtractCandidates(text string) []string {
	matches, rest := matchTerms(text, m.patterns)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].pos < matches[j].pos
	})

	seen := make(map[string]bool)
	var out []string
	add := func(c string) {
		key := strings.ToLower(c)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}
	for _, mt := range matches {
		add(mt.text)
	}
	for _, p := range nounPhrases(rest) {
		if miscasedShortTerm(p, m.short) {
			continue
		}
		add(p)
	}
	return out
}

// MapAliases maps candidates by exact name or alias only.
// It needs no model and is the degraded mode of NormalizeAndMap.
func (m *Mapper) MapAliases(candidates []string) []string {
	set := make(map[string]bool)
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if miscasedShortTerm(c, m.short) {
			continue
		}
		if name, ok := m.taxonomy.Lookup(c); ok {
			set[name] = true
		}
	}
	return sortedKeys(set)
}

// NormalizeAndMap maps candidates to canonical names. Short terms spelled
// other than as listed or in upper case are dropped. Exact alias matches
// come first; the rest are embedded in one batch and mapped to the most
// similar taxonomy entry when that similarity exceeds threshold. Candidates
// below the threshold are dropped.
func (m *Mapper) NormalizeAndMap(ctx context.Context, candidates []string, threshold float32) ([]string, error) {
	set := make(map[string]bool)
	var unmatched []string
	pending := make(map[string]bool)
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || miscasedShortTerm(c, m.short) {
			continue
		}
		if name, ok := m.taxonomy.Lookup(c); ok {
			set[name] = true
			continue
		}
		key := strings.ToLower(c)
		if !pending[key] {
			pending[key] = true
			unmatched = append(unmatched, c)
		}
	}

	if len(unmatched) > 0 {
		names, taxEmbs, err := m.taxonomyEmbeddings(ctx)
		if err != nil {
			return nil, err
		}
		embs, err := m.provider.EmbedBatch(ctx, unmatched)
		if err != nil {
			return nil, fmt.Errorf("embedding candidates: %w", err)
		}

		for i, e := range embs {
			best, bestSim := -1, float32(0)
			for j, te := range taxEmbs {
				if sim := e.Similarity(te); best < 0 || sim > bestSim {
					best, bestSim = j, sim
				}
			}
			if best >= 0 && bestSim > threshold {
				set[names[best]] = true
				m.log.Debug("mapped candidate by similarity",
					"candidate", unmatched[i], "skill", names[best], "similarity", bestSim)
			}
		}
	}

	return sortedKeys(set), nil
}

// ExtractSkills extracts candidates from text and maps them at the mapper's
// threshold.
func (m *Mapper) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	return m.NormalizeAndMap(ctx, m.ExtractCandidates(text), m.threshold)
}

// taxonomyEmbeddings embeds every canonical name once. A failed attempt is not
// cached so a later call can retry.
func (m *Mapper) taxonomyEmbeddings(ctx context.Context) ([]string, []embedding.Embedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.embedded {
		return m.names, m.taxEmbs, nil
	}

	names := m.taxonomy.Names()
	embs, err := m.provider.EmbedBatch(ctx, names)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding taxonomy: %w", err)
	}
	m.names, m.taxEmbs, m.embedded = names, embs, true
	m.log.Debug("embedded taxonomy", "skills", len(names), "model", m.provider.ModelName())
	return names, embs, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

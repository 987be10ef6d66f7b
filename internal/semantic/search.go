package semantic

import (
	"fmt"
	"sort"

	"github.com/matsen/skillpath/internal/embedding"
)

// Search finds documents similar to a query embedding.
// Results have similarity >= threshold and are sorted by similarity (highest
// first, ties by ID). A limit of 0 returns every match.
func (idx *Index) Search(query embedding.Embedding, limit int, threshold float32) ([]SearchResult, error) {
	if limit < 0 {
		return nil, ErrNegativeLimit
	}
	if len(idx.Embeddings) == 0 {
		return nil, ErrEmptyIndex
	}
	if query.Dimensions() != idx.Dimensions {
		return nil, fmt.Errorf("%w: query has %d, index has %d", embedding.ErrDimensionMismatch, query.Dimensions(), idx.Dimensions)
	}

	q := query.Vector()
	results := make([]SearchResult, 0, len(idx.Embeddings))
	for id, vec := range idx.Embeddings {
		sim := embedding.Cosine(q, vec)
		if sim >= threshold {
			results = append(results, SearchResult{
				ID:         id,
				Similarity: sim,
			})
		}
	}

	// Sort by similarity descending
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ID < results[j].ID
	})

	// Apply limit
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

package embedding

import "context"

// DefaultBatchSize bounds how many texts are sent to a backend in one request.
const DefaultBatchSize = 32

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// EmbedBatch generates embeddings for texts, preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}

// batchRange is a half-open [start, end) slice of a larger input.
type batchRange struct {
	start, end int
}

// batches splits n items into ranges of at most size items.
func batches(n, size int) []batchRange {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([]batchRange, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, batchRange{start: start, end: end})
	}
	return out
}

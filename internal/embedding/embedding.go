// Package embedding provides vector embedding generation for text.
package embedding

// Embedding is an immutable vector embedding of text.
// The vector is copied on construction and on read so callers can never
// mutate an embedding after it has been produced.
type Embedding struct {
	vector []float32
}

// New creates an Embedding from a copy of v.
func New(v []float32) Embedding {
	cp := make([]float32, len(v))
	copy(cp, v)
	return Embedding{vector: cp}
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.vector)
}

// Vector returns a copy of the underlying vector.
func (e Embedding) Vector() []float32 {
	cp := make([]float32, len(e.vector))
	copy(cp, e.vector)
	return cp
}

// Similarity returns the cosine similarity between two embeddings.
func (e Embedding) Similarity(other Embedding) float32 {
	return Cosine(e.vector, other.vector)
}

// IsZero reports whether the embedding has no non-zero component.
func (e Embedding) IsZero() bool {
	for _, v := range e.vector {
		if v != 0 {
			return false
		}
	}
	return true
}

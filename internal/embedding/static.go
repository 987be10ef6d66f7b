package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// StaticModelName identifies vectors produced by StaticProvider.
const StaticModelName = "static"

// StaticProvider returns fixed vectors from a lookup table.
// Keys are matched case-insensitively; unknown text maps to the zero vector.
// It counts every text it embeds and can be switched into an unavailable state.
type StaticProvider struct {
	dimensions  int
	vectors     map[string][]float32
	calls       atomic.Int64
	unavailable atomic.Bool
}

// NewStaticProvider creates a StaticProvider. Every vector must have dims entries.
func NewStaticProvider(dims int, vectors map[string][]float32) (*StaticProvider, error) {
	p := &StaticProvider{
		dimensions: dims,
		vectors:    make(map[string][]float32, len(vectors)),
	}
	for text, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: %q has %d, want %d", ErrDimensionMismatch, text, len(v), dims)
		}
		cp := make([]float32, dims)
		copy(cp, v)
		p.vectors[staticKey(text)] = cp
	}
	return p, nil
}

// SetUnavailable makes subsequent calls fail with ErrModelUnavailable.
func (p *StaticProvider) SetUnavailable(unavailable bool) {
	p.unavailable.Store(unavailable)
}

// Calls returns the number of texts embedded so far.
func (p *StaticProvider) Calls() int64 {
	return p.calls.Load()
}

// Embed returns the table vector for text.
func (p *StaticProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	out, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return Embedding{}, err
	}
	return out[0], nil
}

// EmbedBatch returns the table vector for each text.
func (p *StaticProvider) EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.unavailable.Load() {
		return nil, fmt.Errorf("%w: static provider switched off", ErrModelUnavailable)
	}
	p.calls.Add(int64(len(texts)))

	out := make([]Embedding, len(texts))
	for i, text := range texts {
		if v, ok := p.vectors[staticKey(text)]; ok {
			out[i] = New(v)
		} else {
			out[i] = Embedding{vector: make([]float32, p.dimensions)}
		}
	}
	return out, nil
}

// ModelName returns StaticModelName.
func (p *StaticProvider) ModelName() string {
	return StaticModelName
}

// Dimensions returns the vector size.
func (p *StaticProvider) Dimensions() int {
	return p.dimensions
}

func staticKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

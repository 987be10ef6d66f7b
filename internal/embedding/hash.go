package embedding

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const (
	// HashModelName identifies vectors produced by HashProvider.
	HashModelName = "hash-bow-v1"

	// DefaultHashDimensions is the default HashProvider vector size.
	DefaultHashDimensions = 256

	wordWeight    = 1.0
	trigramWeight = 0.5
)

// HashProvider produces deterministic bag-of-words embeddings by feature hashing.
// It needs no model server, which makes it suitable for offline use and tests.
// Similarity reflects lexical overlap only.
type HashProvider struct {
	dimensions int
}

// NewHashProvider creates a HashProvider with the given dimensions.
// Non-positive dimensions fall back to DefaultHashDimensions.
func NewHashProvider(dims int) *HashProvider {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &HashProvider{dimensions: dims}
}

// Embed generates an embedding for the given text.
func (p *HashProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	if err := ctx.Err(); err != nil {
		return Embedding{}, err
	}
	return Embedding{vector: p.vector(text)}, nil
}

// EmbedBatch generates embeddings for each text in order.
func (p *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error) {
	out := make([]Embedding, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = Embedding{vector: p.vector(text)}
	}
	return out, nil
}

// ModelName returns HashModelName.
func (p *HashProvider) ModelName() string {
	return HashModelName
}

// Dimensions returns the vector size.
func (p *HashProvider) Dimensions() int {
	return p.dimensions
}

func (p *HashProvider) vector(text string) []float32 {
	v := make([]float32, p.dimensions)
	for _, word := range tokenize(text) {
		p.add(v, "w:"+word, wordWeight)
		padded := "#" + word + "#"
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			p.add(v, "t:"+string(runes[i:i+3]), trigramWeight)
		}
	}
	normalize(v)
	return v
}

func (p *HashProvider) add(v []float32, feature string, weight float32) {
	h := xxhash.Sum64String(feature)
	idx := int(h % uint64(p.dimensions))
	if h>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}

// tokenize lowercases text and splits it into words.
// '+', '#' and '.' inside a word are kept so "c++", "c#" and "node.js" survive.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.')
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

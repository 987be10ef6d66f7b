package embedding

import (
	"context"
	"sync"
)

// Cached wraps a Provider and memoizes embeddings by exact text.
// It is safe for concurrent use.
type Cached struct {
	inner Provider

	mu    sync.RWMutex
	cache map[string]Embedding
}

// NewCached wraps inner with an in-memory cache.
func NewCached(inner Provider) *Cached {
	return &Cached{
		inner: inner,
		cache: make(map[string]Embedding),
	}
}

// Embed returns the cached embedding for text, computing it on a miss.
func (c *Cached) Embed(ctx context.Context, text string) (Embedding, error) {
	out, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return Embedding{}, err
	}
	return out[0], nil
}

// EmbedBatch embeds only the texts not already cached, in one inner call.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error) {
	out := make([]Embedding, len(texts))

	var missing []string
	seen := make(map[string]bool)
	c.mu.RLock()
	for i, text := range texts {
		if e, ok := c.cache[text]; ok {
			out[i] = e
			continue
		}
		if !seen[text] {
			seen[text] = true
			missing = append(missing, text)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	computed, err := c.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i, text := range missing {
		c.cache[text] = computed[i]
	}
	for i, text := range texts {
		out[i] = c.cache[text]
	}
	c.mu.Unlock()

	return out, nil
}

// Len returns the number of cached embeddings.
func (c *Cached) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// ModelName returns the wrapped provider's model name.
func (c *Cached) ModelName() string {
	return c.inner.ModelName()
}

// Dimensions returns the wrapped provider's dimensions.
func (c *Cached) Dimensions() int {
	return c.inner.Dimensions()
}

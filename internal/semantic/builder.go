package semantic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matsen/skillpath/internal/embedding"
)

// ProgressReporter receives progress updates during index building.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// Builder constructs an index from documents.
type Builder struct {
	provider  embedding.Provider
	batchSize int
	progress  ProgressReporter
}

// NewBuilder creates a new index builder.
func NewBuilder(provider embedding.Provider) *Builder {
	return &Builder{
		provider:  provider,
		batchSize: embedding.DefaultBatchSize,
	}
}

// SetProgressReporter sets the progress reporter for the builder.
func (b *Builder) SetProgressReporter(reporter ProgressReporter) {
	b.progress = reporter
}

// SetBatchSize bounds how many documents are embedded per provider call.
func (b *Builder) SetBatchSize(size int) {
	if size > 0 {
		b.batchSize = size
	}
}

// Build embeds every document with non-blank text and returns a new index.
// Document IDs must be unique.
func (b *Builder) Build(ctx context.Context, docs []Document) (*Index, *BuildStats, error) {
	startTime := time.Now()
	idx := NewIndex(b.provider.ModelName(), b.provider.Dimensions())
	stats := &BuildStats{}

	seen := make(map[string]bool, len(docs))
	var todo []Document
	for _, d := range docs {
		if seen[d.ID] {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateDocument, d.ID)
		}
		seen[d.ID] = true
		if strings.TrimSpace(d.Text) == "" {
			stats.DocumentsSkipped++
			continue
		}
		todo = append(todo, d)
	}

	total := len(todo)
	for start := 0; start < total; start += b.batchSize {
		// Check for cancellation
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		end := start + b.batchSize
		if end > total {
			end = total
		}
		batch := todo[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Text
		}
		embs, err := b.provider.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, nil, fmt.Errorf("embedding documents %d-%d: %w", start, end-1, err)
		}

		for i, d := range batch {
			if err := idx.Add(d.ID, embs[i]); err != nil {
				return nil, nil, fmt.Errorf("adding embedding for %s: %w", d.ID, err)
			}
		}
		stats.DocumentsIndexed += len(batch)

		if b.progress != nil {
			b.progress.OnProgress(end, total)
		}
	}

	idx.Fingerprint = Fingerprint(b.provider.ModelName(), docs)
	idx.SkippedCount = stats.DocumentsSkipped
	idx.BuildDurationMs = time.Since(startTime).Milliseconds()
	stats.Duration = time.Since(startTime)

	return idx, stats, nil
}

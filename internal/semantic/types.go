// Package semantic provides an embedding index with similarity search.
package semantic

import "time"

// Index holds embeddings for a set of documents keyed by ID.
type Index struct {
	// Version is the format version for compatibility checking.
	// Check against CurrentIndexVersion when loading.
	Version int `json:"version"`

	// Metadata about the index
	ModelName       string    `json:"model_name"`        // e.g., "all-minilm:l6-v2"
	Dimensions      int       `json:"dimensions"`        // 384 for all-minilm
	Fingerprint     string    `json:"fingerprint"`       // Hash of model + documents at build time
	CreatedAt       time.Time `json:"created_at"`        // When index was built
	DocumentCount   int       `json:"document_count"`    // Number of documents indexed
	SkippedCount    int       `json:"skipped_count"`     // Documents skipped (empty text)
	BuildDurationMs int64     `json:"build_duration_ms"` // Time to build in milliseconds

	// Embeddings map document IDs to their vector embeddings
	Embeddings map[string][]float32 `json:"-"` // Not included in JSON output
}

// Document is a unit of text to index.
type Document struct {
	ID   string
	Text string
}

// SearchResult represents a document found by similarity search.
type SearchResult struct {
	ID         string  `json:"id"`
	Similarity float32 `json:"similarity"`
}

// BuildStats contains statistics from index building.
type BuildStats struct {
	DocumentsIndexed int           `json:"documents_indexed"`
	DocumentsSkipped int           `json:"documents_skipped"`
	Duration         time.Duration `json:"duration"`
	IndexSizeBytes   int64         `json:"index_size_bytes"`
}

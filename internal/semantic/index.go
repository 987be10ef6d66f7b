package semantic

import (
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/matsen/skillpath/internal/embedding"
)

// Errors returned by semantic index operations.
var (
	ErrIndexNotFound      = errors.New("semantic index not found")
	ErrUnsupportedVersion = errors.New("unsupported index version")
	ErrEmptyIndex         = errors.New("semantic index is empty")
	ErrNegativeLimit      = errors.New("limit must not be negative")
	ErrDuplicateDocument  = errors.New("duplicate document id")
)

const (
	// CurrentIndexVersion is the format version for compatibility checking.
	// Increment this when making breaking changes to the index format.
	CurrentIndexVersion = 1
)

// NewIndex creates a new empty index.
func NewIndex(modelName string, dimensions int) *Index {
	return &Index{
		Version:    CurrentIndexVersion,
		ModelName:  modelName,
		Dimensions: dimensions,
		CreatedAt:  time.Now(),
		Embeddings: make(map[string][]float32),
	}
}

// Add stores a document embedding in the index.
// The DocumentCount field is kept in sync with the number of embeddings.
func (idx *Index) Add(id string, e embedding.Embedding) error {
	if e.Dimensions() != idx.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", embedding.ErrDimensionMismatch, e.Dimensions(), idx.Dimensions)
	}
	idx.Embeddings[id] = e.Vector()
	idx.DocumentCount = len(idx.Embeddings)
	return nil
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.Embeddings)
}

// Has checks if a document is in the index.
func (idx *Index) Has(id string) bool {
	_, exists := idx.Embeddings[id]
	return exists
}

// Fingerprint hashes the model name and every document so a persisted index
// can be checked against the current catalog. Document order does not matter.
func Fingerprint(modelName string, docs []Document) string {
	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	h, _ := blake2b.New256(nil)
	h.Write([]byte(modelName))
	for _, d := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(d.ID))
		h.Write([]byte{0})
		h.Write([]byte(d.Text))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Save persists the index to path using GOB encoding.
func (idx *Index) Save(path string) error {
	// Ensure cache directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	// Write to a temp file first, then rename for atomicity
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(idx); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding index: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Load reads an index from path.
// Returns ErrUnsupportedVersion if the index was created with an incompatible format.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var idx Index
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&idx); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	if idx.Version != CurrentIndexVersion {
		return nil, fmt.Errorf("%w: got %d, want %d (rebuild with 'skp index build')",
			ErrUnsupportedVersion, idx.Version, CurrentIndexVersion)
	}
	if idx.Embeddings == nil {
		idx.Embeddings = make(map[string][]float32)
	}

	return &idx, nil
}

// Size returns the size of the index file in bytes.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrIndexNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/matsen/skillpath/internal/catalog"
	"github.com/matsen/skillpath/internal/config"
	"github.com/matsen/skillpath/internal/recommend"
	"github.com/matsen/skillpath/internal/semantic"
)

// IndexStatus describes the persisted semantic index against the current
// catalog and model.
type IndexStatus struct {
	Path          string    `json:"path"`
	Exists        bool      `json:"exists"`
	Fresh         bool      `json:"fresh"`
	Reason        string    `json:"reason,omitempty"`
	ModelName     string    `json:"model_name,omitempty"`
	Dimensions    int       `json:"dimensions,omitempty"`
	DocumentCount int       `json:"document_count"`
	Resources     int       `json:"resources"`
	SizeBytes     int64     `json:"size_bytes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CheckIndex reports whether the index under root was built by modelName at
// dims dimensions from the current catalog. It never embeds anything.
func CheckIndex(root, modelName string, dims int) (*IndexStatus, error) {
	resources, err := catalog.ReadAll(config.CatalogPath(root))
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	st := &IndexStatus{
		Path:      config.IndexPath(root),
		Resources: len(resources),
	}

	idx, err := semantic.Load(st.Path)
	if errors.Is(err, semantic.ErrIndexNotFound) {
		st.Reason = "index not built"
		return st, nil
	}
	if errors.Is(err, semantic.ErrUnsupportedVersion) {
		st.Exists = true
		st.Reason = err.Error()
		return st, nil
	}
	if err != nil {
		return nil, err
	}

	st.Exists = true
	st.ModelName = idx.ModelName
	st.Dimensions = idx.Dimensions
	st.DocumentCount = idx.DocumentCount
	st.CreatedAt = idx.CreatedAt
	if size, err := semantic.Size(st.Path); err == nil {
		st.SizeBytes = size
	}

	switch {
	case idx.ModelName != modelName:
		st.Reason = fmt.Sprintf("built with model %q, configured model is %q", idx.ModelName, modelName)
	case idx.Dimensions != dims:
		st.Reason = fmt.Sprintf("built with %d dimensions, configured dimensions are %d", idx.Dimensions, dims)
	case idx.Fingerprint != recommend.Fingerprint(modelName, resources):
		st.Reason = "catalog changed since the index was built"
	default:
		st.Fresh = true
	}
	return st, nil
}

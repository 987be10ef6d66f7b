package embedding

import "errors"

// Errors returned by embedding providers.
var (
	// ErrModelUnavailable indicates the embedding backend cannot be reached or loaded.
	// Callers may degrade to alias-only matching when they receive it.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrDimensionMismatch indicates the backend returned vectors of an unexpected size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

package embedding

import (
	"context"
	"errors"
	"testing"
)

func TestStaticProvider(t *testing.T) {
	p, err := NewStaticProvider(2, map[string][]float32{
		"Python": {1, 0},
	})
	if err != nil {
		t.Fatalf("NewStaticProvider() error = %v", err)
	}

	embs, err := p.EmbedBatch(context.Background(), []string{"python", "unknown"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if embs[0].Vector()[0] != 1 {
		t.Errorf("python vector = %v, want [1 0]", embs[0].Vector())
	}
	if !embs[1].IsZero() {
		t.Errorf("unknown vector = %v, want zero", embs[1].Vector())
	}
	if p.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", p.Calls())
	}
}

func TestStaticProvider_Unavailable(t *testing.T) {
	p, _ := NewStaticProvider(2, nil)
	p.SetUnavailable(true)

	_, err := p.Embed(context.Background(), "x")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Embed() error = %v, want ErrModelUnavailable", err)
	}
	if p.Calls() != 0 {
		t.Errorf("Calls() = %d, want 0 after failure", p.Calls())
	}
}

func TestNewStaticProvider_DimensionMismatch(t *testing.T) {
	_, err := NewStaticProvider(3, map[string][]float32{"a": {1, 0}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("NewStaticProvider() error = %v, want ErrDimensionMismatch", err)
	}
}

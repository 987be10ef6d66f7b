package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/matsen/skillpath/internal/embedding"
)

func newStatic(t *testing.T) *embedding.StaticProvider {
	t.Helper()
	p, err := embedding.NewStaticProvider(2, map[string][]float32{
		"learn go":   {1, 0},
		"learn rust": {0, 1},
		"learn zig":  {0.7, 0.7},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuilder_Build(t *testing.T) {
	provider := newStatic(t)
	b := NewBuilder(provider)
	b.SetBatchSize(2)

	var calls []int
	b.SetProgressReporter(ProgressFunc(func(current, total int) {
		calls = append(calls, current)
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	}))

	docs := []Document{
		{ID: "go", Text: "learn go"},
		{ID: "blank", Text: "   "},
		{ID: "rust", Text: "learn rust"},
		{ID: "zig", Text: "learn zig"},
	}
	idx, stats, err := b.Build(context.Background(), docs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if stats.DocumentsIndexed != 3 || stats.DocumentsSkipped != 1 {
		t.Errorf("stats = %+v, want 3 indexed, 1 skipped", stats)
	}
	if idx.Len() != 3 || idx.Has("blank") {
		t.Errorf("index should hold 3 documents without blank, got %d", idx.Len())
	}
	if idx.Fingerprint != Fingerprint(provider.ModelName(), docs) {
		t.Error("index fingerprint should match the documents it was built from")
	}
	if len(calls) != 2 || calls[1] != 3 {
		t.Errorf("progress calls = %v, want [2 3]", calls)
	}
}

func TestBuilder_DuplicateID(t *testing.T) {
	b := NewBuilder(newStatic(t))
	_, _, err := b.Build(context.Background(), []Document{
		{ID: "x", Text: "learn go"},
		{ID: "x", Text: "learn rust"},
	})
	if !errors.Is(err, ErrDuplicateDocument) {
		t.Errorf("Build() error = %v, want ErrDuplicateDocument", err)
	}
}

func TestBuilder_ProviderUnavailable(t *testing.T) {
	provider := newStatic(t)
	provider.SetUnavailable(true)

	_, _, err := NewBuilder(provider).Build(context.Background(), []Document{{ID: "go", Text: "learn go"}})
	if !errors.Is(err, embedding.ErrModelUnavailable) {
		t.Errorf("Build() error = %v, want ErrModelUnavailable", err)
	}
}

func TestBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewBuilder(newStatic(t)).Build(ctx, []Document{{ID: "go", Text: "learn go"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

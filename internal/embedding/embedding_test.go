package embedding

import "testing"

func TestEmbedding_Dimensions(t *testing.T) {
	tests := []struct {
		name     string
		vector   []float32
		expected int
	}{
		{
			name:     "384 dimensions",
			vector:   make([]float32, 384),
			expected: 384,
		},
		{
			name:     "empty vector",
			vector:   []float32{},
			expected: 0,
		},
		{
			name:     "small vector",
			vector:   []float32{1.0, 2.0, 3.0},
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb := New(tt.vector)
			if got := emb.Dimensions(); got != tt.expected {
				t.Errorf("Dimensions() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestEmbedding_Immutable(t *testing.T) {
	src := []float32{1, 2, 3}
	emb := New(src)

	src[0] = 99
	if emb.Vector()[0] != 1 {
		t.Error("mutating the source slice should not change the embedding")
	}

	v := emb.Vector()
	v[1] = 99
	if emb.Vector()[1] != 2 {
		t.Error("mutating Vector() result should not change the embedding")
	}
}

func TestEmbedding_Similarity(t *testing.T) {
	a := New([]float32{1, 0})
	b := New([]float32{0, 1})
	if got := a.Similarity(a); got < 0.9999 {
		t.Errorf("self similarity = %v, want 1", got)
	}
	if got := a.Similarity(b); got != 0 {
		t.Errorf("orthogonal similarity = %v, want 0", got)
	}
}

func TestEmbedding_IsZero(t *testing.T) {
	if !New([]float32{0, 0}).IsZero() {
		t.Error("zero vector should report IsZero")
	}
	if New([]float32{0, 0.1}).IsZero() {
		t.Error("non-zero vector should not report IsZero")
	}
}

func TestBatches(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want []batchRange
	}{
		{name: "empty", n: 0, size: 4, want: []batchRange{}},
		{name: "exact", n: 4, size: 2, want: []batchRange{{0, 2}, {2, 4}}},
		{name: "remainder", n: 5, size: 2, want: []batchRange{{0, 2}, {2, 4}, {4, 5}}},
		{name: "default size", n: 3, size: 0, want: []batchRange{{0, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batches(tt.n, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("batches(%d, %d) = %v, want %v", tt.n, tt.size, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("batch %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

package embedding

import (
	"context"
	"reflect"
	"testing"
)

func TestHashProvider_Deterministic(t *testing.T) {
	p := NewHashProvider(64)
	a, err := p.Embed(context.Background(), "Machine Learning")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, _ := p.Embed(context.Background(), "machine learning")
	if !reflect.DeepEqual(a.Vector(), b.Vector()) {
		t.Error("embedding should be case-insensitive and deterministic")
	}
	if a.Dimensions() != 64 {
		t.Errorf("Dimensions() = %d, want 64", a.Dimensions())
	}
}

func TestHashProvider_LexicalSimilarity(t *testing.T) {
	p := NewHashProvider(0)
	ctx := context.Background()
	embs, err := p.EmbedBatch(ctx, []string{
		"docker containers",
		"containers with docker",
		"french cooking",
	})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	related := embs[0].Similarity(embs[1])
	unrelated := embs[0].Similarity(embs[2])
	if related <= unrelated {
		t.Errorf("related similarity %v should exceed unrelated %v", related, unrelated)
	}
	if related < 0.7 {
		t.Errorf("related similarity = %v, want >= 0.7", related)
	}
}

func TestHashProvider_Empty(t *testing.T) {
	p := NewHashProvider(16)
	e, _ := p.Embed(context.Background(), "  ")
	if !e.IsZero() {
		t.Error("blank text should embed to the zero vector")
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Python, Go and C++", []string{"python", "go", "and", "c++"}},
		{"Node.js.", []string{"node.js"}},
		{"C# / .NET", []string{"c#", "net"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := tokenize(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashProvider_ImplementsProvider(t *testing.T) {
	var _ Provider = (*HashProvider)(nil)
}

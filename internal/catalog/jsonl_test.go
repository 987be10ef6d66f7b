package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadAll(t *testing.T) {
	resources, err := ReadAll(filepath.Join("..", "..", "testdata", "catalog.jsonl"))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(resources) != 7 {
		t.Fatalf("ReadAll() returned %d resources, want 7", len(resources))
	}
	first := resources[0]
	if first.Title != "Python for Everybody" || first.Type != TypeCourse || first.DurationMinutes != 1200 {
		t.Errorf("resources[0] = %+v", first)
	}
}

func TestReadAll_NonexistentFile(t *testing.T) {
	resources, err := ReadAll(filepath.Join(t.TempDir(), "missing.jsonl"))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(resources) != 0 {
		t.Errorf("ReadAll() = %v, want empty", resources)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{
			name:    "invalid json",
			input:   "{not json}\n",
			wantMsg: "parsing line 1",
		},
		{
			name:    "invalid resource",
			input:   `{"title":"","url":"https://example.org/a","type":"course","source":"x"}` + "\n",
			wantErr: ErrEmptyTitle,
		},
		{
			name: "duplicate url",
			input: `{"title":"A","url":"https://example.org/a","type":"course","source":"x"}` + "\n\n" +
				`{"title":"B","url":"https://example.org/a","type":"video","source":"y"}` + "\n",
			wantErr: ErrDuplicateURL,
			wantMsg: "line 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Decode() error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestWriteAllAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.jsonl")

	a := validResource()
	b := validResource()
	b.URL = "https://example.org/css"
	b.Description = "Style pages"
	b.DurationMinutes = 45

	if err := WriteAll(path, []Resource{a, b}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 2 || got[1] != b {
		t.Errorf("ReadAll() = %+v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the catalog file", len(entries))
	}
}

func TestWriteAll_RejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.jsonl")
	r := validResource()
	if err := WriteAll(path, []Resource{r, r}); !errors.Is(err, ErrDuplicateURL) {
		t.Errorf("WriteAll() error = %v, want ErrDuplicateURL", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("WriteAll() should not create the file on error")
	}
}

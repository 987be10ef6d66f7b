package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hyphenated word", "machine learn-\ning", "machine learning"},
		{"keeps real hyphen before capital", "Node-\nRED", "Node-\nRED"},
		{"collapses spaces", "Python   \t SQL", "Python SQL"},
		{"collapses blank lines", "a\n\n\n\nb", "a\n\nb"},
		{"trims lines", "  Skills  \n  Go  ", "Skills\nGo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsPDF(t *testing.T) {
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "resume.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4\n..."), 0644); err != nil {
		t.Fatal(err)
	}
	txtPath := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(txtPath, []byte("%P"), 0644); err != nil {
		t.Fatal(err)
	}

	if ok, err := IsPDF(pdfPath); err != nil || !ok {
		t.Errorf("IsPDF(pdf) = %v, %v; want true", ok, err)
	}
	if ok, err := IsPDF(txtPath); err != nil || ok {
		t.Errorf("IsPDF(txt) = %v, %v; want false", ok, err)
	}
}

func TestExtractText_NotPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("Python, SQL"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ExtractText(path, 0); !errors.Is(err, ErrNotPDF) {
		t.Errorf("ExtractText() error = %v, want ErrNotPDF", err)
	}
}

func TestExtractText_Missing(t *testing.T) {
	if _, err := ExtractText(filepath.Join(t.TempDir(), "nope.pdf"), 0); err == nil {
		t.Error("ExtractText() on missing file should fail")
	}
}

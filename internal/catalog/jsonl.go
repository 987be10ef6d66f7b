package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads every resource from a JSONL file.
// Returns an error if any resource fails validation or repeats a URL
// (fail-fast). A missing file is an empty catalog.
func ReadAll(path string) ([]Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads JSONL resources from r.
func Decode(r io.Reader) ([]Resource, error) {
	var resources []Resource
	seen := make(map[string]int)
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var res Resource
		if err := json.Unmarshal(line, &res); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if err := res.Validate(); err != nil {
			return nil, fmt.Errorf("invalid resource at line %d: %w", lineNum, err)
		}
		if prev, dup := seen[res.URL]; dup {
			return nil, fmt.Errorf("line %d: %w: %s (first seen at line %d)", lineNum, ErrDuplicateURL, res.URL, prev)
		}
		seen[res.URL] = lineNum

		resources = append(resources, res)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	return resources, nil
}

// writeResourceJSONL marshals a resource and writes it as a JSONL line.
func writeResourceJSONL(w io.Writer, r Resource) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding resource: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing resource: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}

// WriteAll replaces the catalog file with resources, writing to a temporary
// file first and renaming it into place.
func WriteAll(path string, resources []Resource) error {
	if err := CheckUnique(resources); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp catalog file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmp)
	for _, r := range resources {
		if err := writeResourceJSONL(w, r); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp catalog file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing catalog file: %w", err)
	}
	return nil
}

// Merge adds incoming resources to existing ones, replacing entries with the
// same URL in place. It returns the merged slice and the number of new and
// updated entries.
func Merge(existing, incoming []Resource) (merged []Resource, added, updated int) {
	merged = append([]Resource(nil), existing...)
	pos := IndexByURL(merged)
	for _, r := range incoming {
		if i, ok := pos[r.URL]; ok {
			merged[i] = r
			updated++
			continue
		}
		pos[r.URL] = len(merged)
		merged = append(merged, r)
		added++
	}
	return merged, added, updated
}

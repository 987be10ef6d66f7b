package depgraph

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// maxLineCapacity bounds a single JSONL line (1MB).
const maxLineCapacity = 1024 * 1024

// ReadEdges reads prerequisite edges from a JSONL file.
// Returns an error if any edge fails validation (fail-fast).
// A missing file yields no edges.
func ReadEdges(path string) ([]Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening prerequisites file: %w", err)
	}
	defer f.Close()

	var edges []Edge
	scanner := bufio.NewScanner(f)
	buf := make([]byte, maxLineCapacity)
	scanner.Buffer(buf, maxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e Edge
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("invalid edge at line %d: %w", lineNum, err)
		}
		edges = append(edges, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading prerequisites file: %w", err)
	}

	return edges, nil
}

// Load reads edges from path and builds the graph.
func Load(path string) (*Graph, error) {
	edges, err := ReadEdges(path)
	if err != nil {
		return nil, err
	}
	return New(edges)
}

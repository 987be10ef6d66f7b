package evaluate

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrNoKs is returned when Evaluate is given no cutoffs.
var ErrNoKs = errors.New("at least one k is required")

// Ranker returns resource URLs for a query, best first.
type Ranker interface {
	Rank(ctx context.Context, query string, k int) ([]string, error)
}

// RankerFunc adapts a function to Ranker.
type RankerFunc func(ctx context.Context, query string, k int) ([]string, error)

// Rank implements Ranker.
func (f RankerFunc) Rank(ctx context.Context, query string, k int) ([]string, error) {
	return f(ctx, query, k)
}

// Query is a labeled test query.
type Query struct {
	Query    string   `json:"query"`
	Relevant []string `json:"relevant"`
}

// Evaluate runs every query through ranker and returns precision@k, recall@k
// and ndcg@k for each k, averaged over queries with at least one relevant URL.
// With no usable queries every metric is 0.
func Evaluate(ctx context.Context, ranker Ranker, queries []Query, ks []int) (map[string]float64, error) {
	if len(ks) == 0 {
		return nil, ErrNoKs
	}
	maxK := 0
	for _, k := range ks {
		if k <= 0 {
			return nil, fmt.Errorf("k must be positive, got %d", k)
		}
		if k > maxK {
			maxK = k
		}
	}

	sums := make(map[string]float64, 3*len(ks))
	for _, k := range ks {
		for _, name := range metricNames(k) {
			sums[name] = 0
		}
	}

	used := 0
	for _, q := range queries {
		relevant := make(map[string]bool, len(q.Relevant))
		for _, u := range q.Relevant {
			relevant[u] = true
		}
		if len(relevant) == 0 {
			continue
		}

		ranked, err := ranker.Rank(ctx, q.Query, maxK)
		if err != nil {
			return nil, fmt.Errorf("ranking %q: %w", q.Query, err)
		}
		used++

		for _, k := range ks {
			names := metricNames(k)
			sums[names[0]] += PrecisionAtK(ranked, relevant, k)
			sums[names[1]] += RecallAtK(ranked, relevant, k)
			sums[names[2]] += NDCGAtK(ranked, relevant, k)
		}
	}

	if used > 0 {
		for name := range sums {
			sums[name] /= float64(used)
		}
	}
	return sums, nil
}

func metricNames(k int) [3]string {
	return [3]string{
		fmt.Sprintf("precision@%d", k),
		fmt.Sprintf("recall@%d", k),
		fmt.Sprintf("ndcg@%d", k),
	}
}

// SortedKeys returns metric names ordered by k, then precision, recall, ndcg.
func SortedKeys(metrics map[string]float64) []string {
	order := map[string]int{"precision": 0, "recall": 1, "ndcg": 2}
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, ki := splitKey(keys[i])
		nj, kj := splitKey(keys[j])
		if ki != kj {
			return ki < kj
		}
		if order[ni] != order[nj] {
			return order[ni] < order[nj]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func splitKey(key string) (string, int) {
	name, kStr, _ := strings.Cut(key, "@")
	var k int
	fmt.Sscanf(kStr, "%d", &k)
	return name, k
}

// maxLineCapacity bounds a single JSONL line (1MB).
const maxLineCapacity = 1024 * 1024

// ReadQueries reads labeled queries from a JSONL file.
func ReadQueries(path string) ([]Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening queries file: %w", err)
	}
	defer f.Close()

	var queries []Query
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

		var q Query
		if err := json.Unmarshal(line, &q); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if strings.TrimSpace(q.Query) == "" {
			return nil, fmt.Errorf("line %d: query is required", lineNum)
		}
		queries = append(queries, q)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading queries file: %w", err)
	}
	return queries, nil
}

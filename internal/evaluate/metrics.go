// Package evaluate measures ranking quality of the recommender against
// labeled queries.
package evaluate

import "math"

// PrecisionAtK is the fraction of the top k results that are relevant.
func PrecisionAtK(ranked []string, relevant map[string]bool, k int) float64 {
	if k <= 0 {
		return 0
	}
	return float64(hits(ranked, relevant, k)) / float64(k)
}

// RecallAtK is the fraction of relevant items found in the top k results.
func RecallAtK(ranked []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	return float64(hits(ranked, relevant, k)) / float64(len(relevant))
}

// NDCGAtK is the discounted cumulative gain of the top k results with binary
// relevance, normalized by the gain of an ideal ranking.
func NDCGAtK(ranked []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}

	var dcg float64
	for i, id := range top(ranked, k) {
		if relevant[id] {
			dcg += gain(i + 1)
		}
	}

	ideal := len(relevant)
	if ideal > k {
		ideal = k
	}
	var idcg float64
	for i := 1; i <= ideal; i++ {
		idcg += gain(i)
	}
	return dcg / idcg
}

// gain is the discount for a hit at 1-based rank.
func gain(rank int) float64 {
	return 1 / math.Log2(float64(rank)+1)
}

func hits(ranked []string, relevant map[string]bool, k int) int {
	n := 0
	for _, id := range top(ranked, k) {
		if relevant[id] {
			n++
		}
	}
	return n
}

// top returns the first k distinct entries of ranked.
func top(ranked []string, k int) []string {
	out := make([]string, 0, k)
	seen := make(map[string]bool, k)
	for _, id := range ranked {
		if len(out) == k {
			break
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

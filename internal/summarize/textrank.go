package summarize

import (
	"errors"
	"math"
	"sort"
)

var errDegenerate = errors.New("degenerate sentence graph")

const zeroDivisionPrevention = 1e-7

// rank scores each sentence by the stationary distribution of a damped random walk over the
// sentence similarity graph (TextRank). words holds one word set per sentence; a sentence
// has no edge to itself.
func rank(words [][]string, damping, epsilon float64, maxIter int) ([]float64, error) {
	n := len(words)
	if n == 0 {
		return nil, errDegenerate
	}
	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := edgeWeight(words[i], words[j])
			weights[i][j] = r
			weights[j][i] = r
		}
	}
	// row-normalise, then mix with the teleport term
	base := (1 - damping) / float64(n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += weights[i][j]
		}
		for j := 0; j < n; j++ {
			weights[i][j] = base + damping*weights[i][j]/(sum+zeroDivisionPrevention)
		}
	}

	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}
	for iter := 0; iter < maxIter; iter++ {
		next := make([]float64, n)
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				next[j] += weights[i][j] * p[i]
			}
		}
		delta := 0.0
		for i := range next {
			d := next[i] - p[i]
			delta += d * d
		}
		p = next
		if math.Sqrt(delta) <= epsilon {
			break
		}
	}
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errDegenerate
		}
	}
	return p, nil
}

// wordSet drops repeated words, keeping first occurrences.
func wordSet(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// edgeWeight counts the words two sentence word sets share, normalised by the log of
// both set sizes.
func edgeWeight(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inB := make(map[string]struct{}, len(b))
	for _, w := range b {
		inB[w] = struct{}{}
	}
	shared := 0
	for _, w := range a {
		if _, ok := inB[w]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	norm := math.Log(float64(len(a))) + math.Log(float64(len(b)))
	if math.Abs(norm) < 1e-9 {
		return float64(shared)
	}
	return float64(shared) / norm
}

// topInDocumentOrder picks the count highest scores (earlier index wins ties) and returns
// their indices sorted by position.
func topInDocumentOrder(scores []float64, count int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	if count < len(idx) {
		idx = idx[:count]
	}
	sort.Ints(idx)
	return idx
}

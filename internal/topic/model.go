package topic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Algorithm names a factorization model.
type Algorithm string

const (
	AlgorithmNMF Algorithm = "nmf"
	AlgorithmLDA Algorithm = "lda"
)

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case AlgorithmNMF, AlgorithmLDA:
		return a, nil
	}
	return "", fmt.Errorf("unknown topic algorithm %q (want nmf or lda)", s)
}

const (
	DefaultNumTopics   = 25
	DefaultNumKeywords = 5
)

// FitOptions configures FitTopics.
type FitOptions struct {
	NumTopics   int
	NumKeywords int
	Algorithm   Algorithm
	Seed        int64
}

// fitFunc factorizes x and returns the components, one row per topic.
type fitFunc func(ctx context.Context, x *sparse.CSR, k int, seed uint64) (*mat.Dense, error)

var estimators = map[Algorithm]fitFunc{
	AlgorithmNMF: fitNMF,
	AlgorithmLDA: fitLDA,
}

// FitTopics fits the requested model on m and returns, for each component in
// order, its NumKeywords highest-weighted vocabulary terms. The result is
// deterministic for a fixed seed. Fitting stops with the context's error if
// ctx is done before it converges.
func FitTopics(ctx context.Context, m *Matrix, opts FitOptions) ([][]string, error) {
	if opts.NumTopics < 1 || opts.NumKeywords < 1 {
		return nil, fmt.Errorf("%w: topics=%d keywords=%d", ErrInvalidTopics, opts.NumTopics, opts.NumKeywords)
	}
	if m == nil || m.Data == nil || len(m.Vocabulary) == 0 {
		return nil, ErrEmptyVocabulary
	}
	if opts.NumTopics > len(m.Vocabulary) {
		return nil, fmt.Errorf("%w: %d topics requested, %d terms available", ErrTooManyTopics, opts.NumTopics, len(m.Vocabulary))
	}
	fit, ok := estimators[opts.Algorithm]
	if !ok {
		return nil, fmt.Errorf("fit topics: unknown algorithm %q", opts.Algorithm)
	}

	components, err := fit(ctx, m.Data, opts.NumTopics, uint64(opts.Seed))
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", opts.Algorithm, err)
	}
	if !finite(components) {
		return nil, fmt.Errorf("fit %s: %w: non-finite components", opts.Algorithm, ErrNotConverged)
	}

	k, _ := components.Dims()
	topics := make([][]string, k)
	for i := 0; i < k; i++ {
		topics[i] = topTerms(components.RawRowView(i), m.Vocabulary, opts.NumKeywords)
	}
	return topics, nil
}

// topTerms ranks terms by descending weight; equal weights keep vocabulary order.
func topTerms(weights []float64, vocab []string, n int) []string {
	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return weights[idx[a]] > weights[idx[b]] })
	if n > len(idx) {
		n = len(idx)
	}
	terms := make([]string, n)
	for i := 0; i < n; i++ {
		terms[i] = vocab[idx[i]]
	}
	return terms
}

func finite(m *mat.Dense) bool {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		for _, v := range m.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

package topic

import (
	"context"
	"fmt"
	"sort"

	"github.com/james-bowman/nlp"
	"github.com/james-bowman/sparse"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const ldaMaxIter = 200

// fitLDA fits nlp's latent Dirichlet allocation with priors 1/k and returns
// the topic-word weights, one row per topic. nlp cannot be interrupted, so a
// done ctx returns immediately and the abandoned fit finishes in the
// background.
func fitLDA(ctx context.Context, x *sparse.CSR, k int, seed uint64) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, m := x.Dims()

	lda := nlp.NewLatentDirichletAllocation(k)
	lda.Iterations = ldaMaxIter
	lda.Alpha = 1 / float64(k)
	lda.Eta = 1 / float64(k)
	lda.Rnd = rand.New(rand.NewSource(seed))
	// concurrent minibatches would make the result depend on scheduling
	lda.Processes = 1

	type fitted struct {
		components mat.Matrix
		err        error
	}
	done := make(chan fitted, 1)
	go func() {
		// nlp wants terms x documents
		if _, err := lda.FitTransform(toCSR(dropEmptyRows(x).T())); err != nil {
			done <- fitted{err: err}
			return
		}
		done <- fitted{components: lda.Components()}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case f := <-done:
		if f.err != nil {
			return nil, f.err
		}
		return topicRows(f.components, k, m)
	}
}

// dropEmptyRows removes documents with no stored terms, which carry no
// topic-word evidence. tfidf pages have one for every pruned token.
func dropEmptyRows(x *sparse.CSR) *sparse.CSR {
	cells := nonZeros(x)
	sort.SliceStable(cells, func(a, b int) bool {
		if cells[a].i != cells[b].i {
			return cells[a].i < cells[b].i
		}
		return cells[a].j < cells[b].j
	})

	_, m := x.Dims()
	indptr := []int{0}
	ind := make([]int, 0, len(cells))
	vals := make([]float64, 0, len(cells))
	for n, c := range cells {
		if n > 0 && c.i != cells[n-1].i {
			indptr = append(indptr, len(ind))
		}
		ind = append(ind, c.j)
		vals = append(vals, c.v)
	}
	indptr = append(indptr, len(ind))
	return sparse.NewCSR(len(indptr)-1, m, indptr, ind, vals)
}

// topicRows copies a fitted component matrix into k x m form, accepting
// either orientation.
func topicRows(c mat.Matrix, k, m int) (*mat.Dense, error) {
	switch r, cols := c.Dims(); {
	case r == k && cols == m:
		return mat.DenseCopyOf(c), nil
	case r == m && cols == k:
		return mat.DenseCopyOf(c.T()), nil
	default:
		return nil, fmt.Errorf("%w: components are %dx%d, want %dx%d", ErrNotConverged, r, cols, k, m)
	}
}

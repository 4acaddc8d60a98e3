package topic

import (
	"context"
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const (
	nmfMaxIter   = 200
	nmfTol       = 1e-4
	nmfCheckStep = 10
	nmfEps       = 1e-10
)

// cell is one stored entry of the document-term matrix.
type cell struct {
	i, j int
	v    float64
}

func nonZeros(x *sparse.CSR) []cell {
	cells := make([]cell, 0, x.NNZ())
	x.DoNonZero(func(i, j int, v float64) {
		if v != 0 {
			cells = append(cells, cell{i, j, v})
		}
	})
	return cells
}

// fitNMF factorizes x ≈ W·H under the Frobenius norm using multiplicative
// updates and returns H. Products with x only visit its stored entries; W·H
// is never materialized.
func fitNMF(ctx context.Context, x *sparse.CSR, k int, seed uint64) (*mat.Dense, error) {
	n, m := x.Dims()
	cells := nonZeros(x)
	var total, sq float64
	for _, c := range cells {
		total += c.v
		sq += c.v * c.v
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: all-zero matrix", ErrNotConverged)
	}

	// random init scaled to the data, H before W
	rng := rand.New(rand.NewSource(seed))
	avg := math.Sqrt(total / float64(n) / float64(m) / float64(k))
	h := mat.NewDense(k, m, nil)
	h.Apply(func(_, _ int, _ float64) float64 { return avg * math.Abs(rng.NormFloat64()) }, h)
	w := mat.NewDense(n, k, nil)
	w.Apply(func(_, _ int, _ float64) float64 { return avg * math.Abs(rng.NormFloat64()) }, w)

	xht := mat.NewDense(n, k, nil)
	wtx := mat.NewDense(k, m, nil)
	initial := residual(cells, sq, w, h)
	previous := initial
	for it := 1; it <= nmfMaxIter; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// W ← W ∘ (X·Hᵀ) / (W·H·Hᵀ)
		xht.Zero()
		for _, c := range cells {
			row := xht.RawRowView(c.i)
			for z := range row {
				row[z] += c.v * h.At(z, c.j)
			}
		}
		var hht, whht mat.Dense
		hht.Mul(h, h.T())
		whht.Mul(w, &hht)
		w.Apply(func(i, j int, v float64) float64 {
			return v * xht.At(i, j) / (whht.At(i, j) + nmfEps)
		}, w)

		// H ← H ∘ (Wᵀ·X) / (Wᵀ·W·H)
		wtx.Zero()
		raw := wtx.RawMatrix()
		for _, c := range cells {
			wr := w.RawRowView(c.i)
			for z, wz := range wr {
				raw.Data[z*raw.Stride+c.j] += c.v * wz
			}
		}
		var wtw, wtwh mat.Dense
		wtw.Mul(w.T(), w)
		wtwh.Mul(&wtw, h)
		h.Apply(func(i, j int, v float64) float64 {
			return v * wtx.At(i, j) / (wtwh.At(i, j) + nmfEps)
		}, h)

		if it%nmfCheckStep == 0 {
			current := residual(cells, sq, w, h)
			if initial == 0 || (previous-current)/initial < nmfTol {
				break
			}
			previous = current
		}
	}
	return h, nil
}

// residual is ‖x − w·h‖_F, expanded as ‖x‖² − 2⟨x, w·h⟩ + tr(WᵀW·HHᵀ) so
// only the stored entries of x are read. sq is ‖x‖².
func residual(cells []cell, sq float64, w, h *mat.Dense) float64 {
	var cross float64
	for _, c := range cells {
		var wh float64
		for z, wz := range w.RawRowView(c.i) {
			wh += wz * h.At(z, c.j)
		}
		cross += c.v * wh
	}

	var wtw, hht mat.Dense
	wtw.Mul(w.T(), w)
	hht.Mul(h, h.T())
	var whNorm float64
	k, _ := wtw.Dims()
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			whNorm += wtw.At(a, b) * hht.At(a, b)
		}
	}
	return math.Sqrt(math.Max(sq-2*cross+whNorm, 0))
}

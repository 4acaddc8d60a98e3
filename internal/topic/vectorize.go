package topic

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/james-bowman/nlp"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Mode selects how a page's tokens are framed as documents.
type Mode string

const (
	// ModeTFIDF treats every token as its own single-word document and keeps
	// terms seen in at least two of them, so weights reflect repetition
	// rather than co-occurrence.
	ModeTFIDF Mode = "tfidf"
	// ModeCount joins the whole token stream into one document of raw counts.
	ModeCount Mode = "count"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTFIDF, ModeCount:
		return m, nil
	}
	return "", fmt.Errorf("unknown vectorization mode %q (want tfidf or count)", s)
}

const (
	minDF = 2
	maxDF = 0.95
)

// terms are maximal runs of two or more word characters.
var termRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Matrix is a sparse document-term matrix with its column vocabulary.
type Matrix struct {
	Data       *sparse.CSR // documents x terms
	Vocabulary []string    // sorted, one per column
}

// Vectorize builds the document-term matrix for one page.
func Vectorize(tokens []string, mode Mode) (*Matrix, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyTokens
	}

	var docs []string
	switch mode {
	case ModeTFIDF:
		docs = tokens
	case ModeCount:
		docs = []string{strings.Join(tokens, " ")}
	default:
		return nil, fmt.Errorf("vectorize: unknown mode %q", mode)
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, d := range docs {
		c := make(map[string]int)
		for _, term := range termRe.FindAllString(strings.ToLower(d), -1) {
			if c[term] == 0 {
				df[term]++
			}
			c[term]++
		}
		counts[i] = c
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("%w: documents contain only single characters", ErrEmptyVocabulary)
	}

	n := len(docs)
	if mode == ModeTFIDF {
		high := maxDF * float64(n)
		if high < minDF {
			return nil, fmt.Errorf("%w: %d documents are too few for min_df=%d, max_df=%.2f", ErrEmptyVocabulary, n, minDF, maxDF)
		}
		for term, f := range df {
			if f < minDF || float64(f) > high {
				delete(df, term)
			}
		}
		if len(df) == 0 {
			return nil, fmt.Errorf("%w: no terms remain after pruning", ErrEmptyVocabulary)
		}
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	data := countMatrix(counts, vocab)
	if mode == ModeTFIDF {
		weighted, err := weightTFIDF(data)
		if err != nil {
			return nil, fmt.Errorf("vectorize: %w", err)
		}
		data = weighted
	}
	return &Matrix{Data: data, Vocabulary: vocab}, nil
}

// countMatrix lays the per-document counts out as CSR rows. Terms missing
// from vocab are dropped.
func countMatrix(counts []map[string]int, vocab []string) *sparse.CSR {
	col := make(map[string]int, len(vocab))
	for j, term := range vocab {
		col[term] = j
	}

	indptr := make([]int, 1, len(counts)+1)
	var ind []int
	var vals []float64
	for _, c := range counts {
		start := len(ind)
		for term, v := range c {
			if j, ok := col[term]; ok {
				ind = append(ind, j)
				vals = append(vals, float64(v))
			}
		}
		sort.Sort(rowEntries{ind[start:], vals[start:]})
		indptr = append(indptr, len(ind))
	}
	return sparse.NewCSR(len(counts), len(vocab), indptr, ind, vals)
}

// rowEntries orders one CSR row by column index.
type rowEntries struct {
	ind  []int
	vals []float64
}

func (r rowEntries) Len() int           { return len(r.ind) }
func (r rowEntries) Less(a, b int) bool { return r.ind[a] < r.ind[b] }
func (r rowEntries) Swap(a, b int) {
	r.ind[a], r.ind[b] = r.ind[b], r.ind[a]
	r.vals[a], r.vals[b] = r.vals[b], r.vals[a]
}

// weightTFIDF applies nlp's tf-idf transform. nlp keeps terms in rows and
// documents in columns, so the counts are transposed on the way in and out.
func weightTFIDF(counts *sparse.CSR) (*sparse.CSR, error) {
	termDoc := toCSR(counts.T())
	weighted, err := nlp.NewTfidfTransformer().FitTransform(termDoc)
	if err != nil {
		return nil, err
	}
	return toCSR(weighted.T()), nil
}

type csrConverter interface {
	ToCSR() *sparse.CSR
}

// toCSR returns m in CSR form, converting only when needed.
func toCSR(m mat.Matrix) *sparse.CSR {
	switch t := m.(type) {
	case *sparse.CSR:
		return t
	case csrConverter:
		return t.ToCSR()
	}
	r, c := m.Dims()
	dok := sparse.NewDOK(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); v != 0 {
				dok.Set(i, j, v)
			}
		}
	}
	return dok.ToCSR()
}

// Package bm25 implements BM25 term-weighted scoring over a fixed corpus.
//
// Build produces an immutable statistics snapshot; concurrent readers
// share a snapshot freely, and a rebuild is published by swapping the
// pointer to a new one (the usecase layer owns that swap). There is no
// inverted index and no pruning: the catalog is small enough that a full
// scan per query is the design choice, not a limitation.
package bm25

import (
	"fmt"
	"math"

	"github.com/tokosearch/tokosearch/internal/domain"
)

// Params are the BM25 tuning constants. K1 controls term-frequency
// saturation, B controls document-length normalization.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams returns the standard tuning (k1=1.5, b=0.75).
func DefaultParams() Params {
	return Params{K1: 1.5, B: 0.75}
}

// Validate rejects non-positive constants.
func (p Params) Validate() error {
	if p.K1 <= 0 {
		return fmt.Errorf("%w: bm25 k1 must be positive, got %g", domain.ErrInvalidConfig, p.K1)
	}
	if p.B <= 0 {
		return fmt.Errorf("%w: bm25 b must be positive, got %g", domain.ErrInvalidConfig, p.B)
	}
	return nil
}

// Index is an immutable BM25 statistics snapshot over one corpus. All
// methods are safe for concurrent use.
type Index struct {
	params    Params
	n         int
	avgdl     float64
	docLens   []int
	termFreqs []map[string]int
	docFreq   map[string]int
	idf       map[string]float64
}

// Build computes corpus statistics from ordered token sequences, one per
// document. An empty corpus produces a valid zero-document index whose
// ScoreAll returns an empty slice.
func Build(corpus [][]string, params Params) (*Index, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ix := &Index{
		params:    params,
		n:         len(corpus),
		docLens:   make([]int, len(corpus)),
		termFreqs: make([]map[string]int, len(corpus)),
		docFreq:   make(map[string]int),
		idf:       make(map[string]float64),
	}
	if ix.n == 0 {
		return ix, nil
	}

	total := 0
	for i, doc := range corpus {
		ix.docLens[i] = len(doc)
		total += len(doc)

		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}
		ix.termFreqs[i] = tf

		// df counts each term once per document
		for term := range tf {
			ix.docFreq[term]++
		}
	}
	ix.avgdl = float64(total) / float64(ix.n)

	n := float64(ix.n)
	for term, df := range ix.docFreq {
		ix.idf[term] = math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
	}
	return ix, nil
}

// Score returns the BM25 score of one document for the given query
// tokens. Terms unseen in the corpus contribute zero. Repeated query
// terms are not deduplicated: each occurrence adds its own idf·tf term,
// so a repeated term amplifies its contribution. Out-of-range document
// indices score zero.
func (ix *Index) Score(query []string, docIdx int) float64 {
	if docIdx < 0 || docIdx >= ix.n {
		return 0
	}

	score := 0.0
	docLen := float64(ix.docLens[docIdx])
	tfs := ix.termFreqs[docIdx]

	for _, term := range query {
		tf, ok := tfs[term]
		if !ok {
			continue
		}
		idf := ix.idf[term]
		num := float64(tf) * (ix.params.K1 + 1)
		den := float64(tf) + ix.params.K1*(1-ix.params.B+ix.params.B*docLen/ix.avgdl)
		score += idf * num / den
	}
	return score
}

// ScoreAll returns one score per document in catalog order. An empty
// query yields all zeros; an empty index yields an empty slice.
func (ix *Index) ScoreAll(query []string) []float64 {
	scores := make([]float64, ix.n)
	for i := range scores {
		scores[i] = ix.Score(query, i)
	}
	return scores
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return ix.n }

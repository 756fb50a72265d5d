// Package ranking fuses BM25 text similarity, geographic proximity,
// rating, and popularity into one ordered result list, and derives the
// binary relevance labels the evaluator consumes.
package ranking

import (
	"sort"

	"github.com/tokosearch/tokosearch/internal/bm25"
	"github.com/tokosearch/tokosearch/internal/domain/catalog"
	"github.com/tokosearch/tokosearch/internal/domain/geo"
	"github.com/tokosearch/tokosearch/internal/text"
)

// Request describes one ranking call.
type Request struct {
	Query       string
	Lat, Lon    float64
	HasLocation bool
	Store       catalog.StoreType
	TopK        int
}

// Ranker produces ordered, scored result lists. It is stateless across
// calls: ranking twice with identical inputs and an unmodified index
// yields identical output.
type Ranker struct {
	params Params
}

// New creates a ranker with validated parameters.
func New(params Params) (*Ranker, error) {
	if err := params.Validate(false); err != nil {
		return nil, err
	}
	return &Ranker{params: params}, nil
}

// Rank scores every catalog document against the request and returns the
// top entries ordered by final score, ties broken by catalog insertion
// order.
//
// When the query normalizes to zero tokens every BM25 score is zero; the
// text-match filter is then skipped and the ordering falls back to
// distance, rating, and popularity alone.
func (r *Ranker) Rank(ix *bm25.Index, cat *catalog.Catalog, req Request) []Result {
	tokens := text.NormalizeQuery(req.Query)
	textMatch := len(tokens) > 0

	raw := ix.ScoreAll(tokens)
	norm := minMaxNormalize(raw)

	maxReviews := cat.MaxReviewCount()
	results := make([]Result, 0, cat.Len())
	for i := 0; i < cat.Len(); i++ {
		doc := cat.Doc(i)
		if !doc.Store().Matches(req.Store) {
			continue
		}

		var rawScore, normScore float64
		if i < len(raw) {
			rawScore, normScore = raw[i], norm[i]
		}
		if textMatch && rawScore <= 0 {
			continue
		}

		res := Result{
			doc:           doc,
			bm25Raw:       rawScore,
			bm25Norm:      normScore,
			distanceScore: geo.NeutralScore,
			ratingScore:   doc.Rating() / 5.0,
		}

		// Documents without coordinates keep the neutral score even when
		// the user supplied a location; defaulting them to 0 km would
		// wrongly rank them nearest.
		if lat, lon, ok := doc.Location(); req.HasLocation && ok {
			res.distanceKm = geo.HaversineKm(req.Lat, req.Lon, lat, lon)
			res.hasDistance = true
			res.distanceScore = geo.Score(res.distanceKm, r.params.MaxDistanceKm)
		}

		if maxReviews > 0 {
			res.popularityScore = float64(doc.ReviewCount()) / float64(maxReviews)
		}

		w := r.params.Weights
		res.finalScore = w.BM25*res.bm25Norm +
			w.Distance*res.distanceScore +
			w.Rating*res.ratingScore +
			w.Popularity*res.popularityScore

		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].finalScore > results[j].finalScore
	})

	if req.TopK > 0 && len(results) > req.TopK {
		results = results[:req.TopK]
	}
	return results
}

// LabelRelevance derives one binary relevance label per result: relevant
// iff the document matched the query text (raw BM25 > 0), lies within
// the distance horizon when a distance is known, and matches the store
// hint when one is given.
//
// The labels are a heuristic surrogate for human judgment, used only to
// drive the evaluator; they are not the ranking criterion. They are
// computed over the already ranked and truncated list, so Recall is
// relative to the relevant items found within that list, not to a
// full-catalog relevance scan.
func (r *Ranker) LabelRelevance(results []Result, hint catalog.StoreType) []bool {
	labels := make([]bool, len(results))
	for i := range results {
		res := &results[i]
		relevant := res.bm25Raw > 0
		if res.hasDistance && res.distanceKm >= r.params.MaxDistanceKm {
			relevant = false
		}
		if hint != "" && hint != catalog.StoreAny && !res.doc.Store().Matches(hint) {
			relevant = false
		}
		labels[i] = relevant
	}
	return labels
}

// minMaxNormalize maps scores to [0,1]. The degenerate case where every
// score is equal maps to 0 for every document: with no signal in the
// text factor, ordering is left to the remaining factors.
func minMaxNormalize(scores []float64) []float64 {
	norm := make([]float64, len(scores))
	if len(scores) == 0 {
		return norm
	}

	minS, maxS := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minS {
			minS = s
		}
		if s > maxS {
			maxS = s
		}
	}
	if maxS == minS {
		return norm
	}
	for i, s := range scores {
		norm[i] = (s - minS) / (maxS - minS)
	}
	return norm
}

package ranking

import "github.com/tokosearch/tokosearch/internal/domain/catalog"

// Result is one scored ranking entry. It is ephemeral: produced per
// query, never persisted.
type Result struct {
	doc             catalog.Document
	bm25Raw         float64
	bm25Norm        float64
	distanceKm      float64
	hasDistance     bool
	distanceScore   float64
	ratingScore     float64
	popularityScore float64
	finalScore      float64
}

// Scores carries the factor scores of one result. DistanceKm is only
// meaningful when HasDistance is set.
type Scores struct {
	BM25Raw         float64
	BM25Norm        float64
	DistanceKm      float64
	HasDistance     bool
	DistanceScore   float64
	RatingScore     float64
	PopularityScore float64
	FinalScore      float64
}

// NewResult assembles a scored entry. The ranker is the normal producer;
// tests use this directly.
func NewResult(doc catalog.Document, s Scores) Result {
	return Result{
		doc:             doc,
		bm25Raw:         s.BM25Raw,
		bm25Norm:        s.BM25Norm,
		distanceKm:      s.DistanceKm,
		hasDistance:     s.HasDistance,
		distanceScore:   s.DistanceScore,
		ratingScore:     s.RatingScore,
		popularityScore: s.PopularityScore,
		finalScore:      s.FinalScore,
	}
}

// Document returns the ranked catalog document.
func (r *Result) Document() catalog.Document { return r.doc }

// BM25Raw returns the unnormalized BM25 score.
func (r *Result) BM25Raw() float64 { return r.bm25Raw }

// BM25Norm returns the min-max normalized BM25 score in [0,1].
func (r *Result) BM25Norm() float64 { return r.bm25Norm }

// DistanceKm returns the distance to the user and whether one was
// computed. No distance exists when the user supplied no location or the
// document has no coordinates.
func (r *Result) DistanceKm() (float64, bool) { return r.distanceKm, r.hasDistance }

// DistanceScore returns the distance relevance score in [0,1], or the
// neutral constant when no distance was computed.
func (r *Result) DistanceScore() float64 { return r.distanceScore }

// RatingScore returns the rating scaled to [0,1].
func (r *Result) RatingScore() float64 { return r.ratingScore }

// PopularityScore returns the review count normalized by the full
// catalog maximum.
func (r *Result) PopularityScore() float64 { return r.popularityScore }

// FinalScore returns the weighted fusion of all factors.
func (r *Result) FinalScore() float64 { return r.finalScore }

package ranking

import (
	"fmt"
	"math"

	"github.com/tokosearch/tokosearch/internal/domain"
)

// weightSumTolerance is how far the fusion weights may drift from 1.0
// before strict validation rejects them.
const weightSumTolerance = 1e-6

// Weights are the fusion weights of the four ranking factors. They are
// expected to sum to 1.0; the sum is enforced only in strict mode.
type Weights struct {
	BM25       float64 `yaml:"bm25" json:"bm25"`
	Distance   float64 `yaml:"distance" json:"distance"`
	Rating     float64 `yaml:"rating" json:"rating"`
	Popularity float64 `yaml:"popularity" json:"popularity"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.BM25 + w.Distance + w.Rating + w.Popularity
}

// Params configure the ranker.
type Params struct {
	Weights       Weights
	MaxDistanceKm float64
}

// DefaultParams returns the standard configuration: weights
// 0.4/0.3/0.2/0.1 and a 10 km relevance horizon.
func DefaultParams() Params {
	return Params{
		Weights:       Weights{BM25: 0.4, Distance: 0.3, Rating: 0.2, Popularity: 0.1},
		MaxDistanceKm: 10,
	}
}

// Validate checks the parameters. Negative weights and a non-positive
// distance horizon are always rejected; a weight sum away from 1.0 is
// rejected only when strict is set, otherwise the caller is expected to
// surface WeightSumWarning.
func (p Params) Validate(strict bool) error {
	for name, w := range map[string]float64{
		"bm25": p.Weights.BM25, "distance": p.Weights.Distance,
		"rating": p.Weights.Rating, "popularity": p.Weights.Popularity,
	} {
		if w < 0 {
			return fmt.Errorf("%w: weight %s must be non-negative, got %g", domain.ErrInvalidConfig, name, w)
		}
	}
	if p.MaxDistanceKm <= 0 {
		return fmt.Errorf("%w: max distance must be positive, got %g", domain.ErrInvalidConfig, p.MaxDistanceKm)
	}
	if strict {
		if w := p.WeightSumWarning(); w != "" {
			return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, w)
		}
	}
	return nil
}

// WeightSumWarning returns a non-empty message when the weights do not
// sum to 1.0 within tolerance.
func (p Params) WeightSumWarning() string {
	if sum := p.Weights.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Sprintf("ranking weights sum to %g, expected 1.0", sum)
	}
	return ""
}

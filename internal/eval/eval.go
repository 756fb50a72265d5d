// Package eval computes information-retrieval quality metrics from an
// ordered relevance label sequence (rank 1 first).
package eval

import (
	"fmt"

	"github.com/tokosearch/tokosearch/internal/domain"
)

// Report bundles the metrics of one evaluated ranking.
type Report struct {
	PrecisionAtK     float64 `json:"precision_at_k"`
	RecallAtK        float64 `json:"recall_at_k"`
	AveragePrecision float64 `json:"average_precision"`
	K                int     `json:"k"`
}

func validateK(relevance []bool, k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	if k > len(relevance) {
		return fmt.Errorf("%w: k=%d exceeds %d available results", domain.ErrInvalidArgument, k, len(relevance))
	}
	return nil
}

func countRelevant(relevance []bool) int {
	n := 0
	for _, r := range relevance {
		if r {
			n++
		}
	}
	return n
}

// PrecisionAtK returns the fraction of the top k results that are
// relevant. k must be in [1, len(relevance)]; there is no silent
// clipping, the caller truncates or pads explicitly.
func PrecisionAtK(relevance []bool, k int) (float64, error) {
	if err := validateK(relevance, k); err != nil {
		return 0, err
	}
	return float64(countRelevant(relevance[:k])) / float64(k), nil
}

// RecallAtK returns the fraction of all relevant items in the sequence
// that appear within the top k. The denominator is the relevant count
// within the evaluated sequence only, not a full-catalog scan. When no
// item is relevant, recall is 0.0 by convention rather than an error: a
// vacuous ranking must not crash the report.
func RecallAtK(relevance []bool, k int) (float64, error) {
	if err := validateK(relevance, k); err != nil {
		return 0, err
	}
	total := countRelevant(relevance)
	if total == 0 {
		return 0, nil
	}
	return float64(countRelevant(relevance[:k])) / float64(total), nil
}

// AveragePrecision returns the mean of the precision values taken at
// each rank holding a relevant item. Zero relevant items yield 0.0 by
// the same convention as RecallAtK.
func AveragePrecision(relevance []bool) float64 {
	total := countRelevant(relevance)
	if total == 0 {
		return 0
	}

	sum := 0.0
	seen := 0
	for i, rel := range relevance {
		if rel {
			seen++
			sum += float64(seen) / float64(i+1)
		}
	}
	return sum / float64(total)
}

// MeanAveragePrecision averages AveragePrecision over many query
// rankings. An empty input yields 0.0.
func MeanAveragePrecision(relevances [][]bool) float64 {
	if len(relevances) == 0 {
		return 0
	}
	sum := 0.0
	for _, rel := range relevances {
		sum += AveragePrecision(rel)
	}
	return sum / float64(len(relevances))
}

// Evaluate computes all metrics at once.
func Evaluate(relevance []bool, k int) (Report, error) {
	p, err := PrecisionAtK(relevance, k)
	if err != nil {
		return Report{}, err
	}
	r, err := RecallAtK(relevance, k)
	if err != nil {
		return Report{}, err
	}
	return Report{
		PrecisionAtK:     p,
		RecallAtK:        r,
		AveragePrecision: AveragePrecision(relevance),
		K:                k,
	}, nil
}

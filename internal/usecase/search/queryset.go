package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tokosearch/tokosearch/internal/eval"
)

// querySetConcurrency bounds how many benchmark queries run at once.
const querySetConcurrency = 4

// QueryReport is the evaluation of one query within a set.
type QueryReport struct {
	Query  string      `json:"query"`
	Report eval.Report `json:"report"`
}

// SetReport aggregates a benchmark run over several queries.
type SetReport struct {
	Queries              []QueryReport `json:"queries"`
	MeanAveragePrecision float64       `json:"mean_average_precision"`
}

// EvaluateQuerySet runs every query through the full pipeline
// concurrently and reports Mean Average Precision across the set.
// Queries are independent: they share the index snapshot read-only, so
// no coordination beyond the result slots is needed.
func (s *Service) EvaluateQuerySet(ctx context.Context, queries []Query) (SetReport, error) {
	relevances := make([][]bool, len(queries))
	reports := make([]QueryReport, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(querySetConcurrency)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			resp, err := s.Search(ctx, q)
			if err != nil {
				return fmt.Errorf("query %q: %w", q.Text, err)
			}

			relevances[i] = resp.Labels
			reports[i] = QueryReport{Query: q.Text, Report: resp.Report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SetReport{}, err
	}

	return SetReport{
		Queries:              reports,
		MeanAveragePrecision: eval.MeanAveragePrecision(relevances),
	}, nil
}

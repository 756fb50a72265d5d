package search

import (
	"github.com/tokosearch/tokosearch/internal/bm25"
	"github.com/tokosearch/tokosearch/internal/domain/catalog"
	"github.com/tokosearch/tokosearch/internal/eval"
	"github.com/tokosearch/tokosearch/internal/ranking"
)

// Ranker orders catalog documents for a query and labels the ordered
// list for evaluation.
type Ranker interface {
	Rank(ix *bm25.Index, cat *catalog.Catalog, req ranking.Request) []ranking.Result
	LabelRelevance(results []ranking.Result, hint catalog.StoreType) []bool
}

// Evaluator turns a relevance label sequence into a metrics report.
type Evaluator interface {
	Evaluate(relevance []bool, k int) (eval.Report, error)
}

// StdEvaluator is the production Evaluator backed by the eval package.
type StdEvaluator struct{}

// Evaluate implements Evaluator.
func (StdEvaluator) Evaluate(relevance []bool, k int) (eval.Report, error) {
	return eval.Evaluate(relevance, k)
}

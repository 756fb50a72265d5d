// Package search orchestrates the retrieval pipeline: it owns the
// catalog/index snapshot, runs ranking, derives relevance labels, and
// attaches an evaluation report to every response.
package search

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tokosearch/tokosearch/internal/bm25"
	"github.com/tokosearch/tokosearch/internal/domain"
	"github.com/tokosearch/tokosearch/internal/domain/catalog"
	"github.com/tokosearch/tokosearch/internal/eval"
	"github.com/tokosearch/tokosearch/internal/logger"
	"github.com/tokosearch/tokosearch/internal/metrics"
	"github.com/tokosearch/tokosearch/internal/ranking"
	"github.com/tokosearch/tokosearch/internal/text"
)

// Query is one search invocation.
type Query struct {
	Text        string
	Lat, Lon    float64
	HasLocation bool
	Store       catalog.StoreType
	TopK        int
}

// Response bundles the ranked results with their evaluation.
type Response struct {
	Results []ranking.Result
	Labels  []bool
	Report  eval.Report
	Match   bm25.MatchStats
}

// snapshot pairs a catalog with the index built over it. The pair is
// immutable; a rebuild publishes a whole new snapshot, so readers never
// observe a catalog mixed with another catalog's statistics.
type snapshot struct {
	cat *catalog.Catalog
	ix  *bm25.Index
}

// Service is the single entry point the shell calls per user
// interaction. Safe for concurrent use: queries share the current
// snapshot read-only.
type Service struct {
	ranker     Ranker
	evaluator  Evaluator
	bm25Params bm25.Params
	defaultK   int

	snap atomic.Pointer[snapshot]
}

// New creates the search service. BuildIndex must run before the first
// Search.
func New(ranker Ranker, evaluator Evaluator, bm25Params bm25.Params, defaultK int) (*Service, error) {
	if err := bm25Params.Validate(); err != nil {
		return nil, err
	}
	if defaultK <= 0 {
		return nil, fmt.Errorf("%w: default k must be positive, got %d", domain.ErrInvalidConfig, defaultK)
	}
	return &Service{
		ranker:     ranker,
		evaluator:  evaluator,
		bm25Params: bm25Params,
		defaultK:   defaultK,
	}, nil
}

// BuildIndex normalizes every catalog document, builds a fresh BM25
// snapshot, and swaps it in atomically. Concurrent searches observe
// either the previous snapshot or the new one, never a partial mix.
func (s *Service) BuildIndex(ctx context.Context, cat *catalog.Catalog) error {
	corpus := make([][]string, cat.Len())
	for i := 0; i < cat.Len(); i++ {
		corpus[i] = text.NormalizeDocument(cat.Doc(i).FieldValues())
	}

	ix, err := bm25.Build(corpus, s.bm25Params)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	s.snap.Store(&snapshot{cat: cat, ix: ix})
	metrics.SetIndexedDocuments(ix.Len())

	logger.FromContext(ctx).Info("index built",
		zap.Int("documents", ix.Len()),
		zap.Int("vocabulary", ix.Stats().VocabularySize),
	)
	return nil
}

// Catalog returns the catalog of the current snapshot.
func (s *Service) Catalog() (*catalog.Catalog, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, domain.ErrIndexNotBuilt
	}
	return snap.cat, nil
}

// Stats returns the corpus statistics of the current snapshot.
func (s *Service) Stats() (bm25.Stats, error) {
	snap := s.snap.Load()
	if snap == nil {
		return bm25.Stats{}, domain.ErrIndexNotBuilt
	}
	return snap.ix.Stats(), nil
}

// Search ranks the catalog against the query and evaluates the returned
// ranking. The store filter doubles as the relevance hint for labeling.
// An empty result list yields a zero report with K=0; nothing is
// evaluated then, and callers can tell that apart from a genuine all-zero
// evaluation (K > 0).
func (s *Service) Search(ctx context.Context, q Query) (Response, error) {
	snap := s.snap.Load()
	if snap == nil {
		metrics.ObserveSearchError()
		return Response{}, domain.ErrIndexNotBuilt
	}

	topK := q.TopK
	if topK <= 0 {
		topK = s.defaultK
	}

	start := time.Now()
	results := s.ranker.Rank(snap.ix, snap.cat, ranking.Request{
		Query: q.Text,
		Lat:   q.Lat, Lon: q.Lon, HasLocation: q.HasLocation,
		Store: q.Store,
		TopK:  topK,
	})

	var report eval.Report
	var labels []bool
	if len(results) > 0 {
		labels = s.ranker.LabelRelevance(results, q.Store)
		k := topK
		if k > len(labels) {
			k = len(labels)
		}
		var err error
		report, err = s.evaluator.Evaluate(labels, k)
		if err != nil {
			metrics.ObserveSearchError()
			return Response{}, fmt.Errorf("evaluate ranking: %w", err)
		}
	}

	elapsed := time.Since(start)
	metrics.ObserveSearch(elapsed, len(results), report.AveragePrecision)

	logger.FromContext(ctx).Debug("search completed",
		zap.String("query", q.Text),
		zap.Int("results", len(results)),
		zap.Float64("precision_at_k", report.PrecisionAtK),
		zap.Duration("elapsed", elapsed),
	)

	return Response{
		Results: results,
		Labels:  labels,
		Report:  report,
		Match:   snap.ix.MatchStats(text.NormalizeQuery(q.Text)),
	}, nil
}

// Package sdk embeds the tokosearch ranking pipeline in a Go program:
// load a catalog, build the index in-process, and search without an
// HTTP server.
//
//	client, _ := sdk.New(sdk.WithCatalogFile("data/places.csv"))
//	res, _ := client.Search(ctx, sdk.Query{
//	    Text: "indomaret cilandak",
//	    Lat:  sdk.Ptr(-6.28),
//	    Lon:  sdk.Ptr(106.80),
//	})
package sdk

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tokosearch/tokosearch/internal/bm25"
	"github.com/tokosearch/tokosearch/internal/domain/catalog"
	loaderrepo "github.com/tokosearch/tokosearch/internal/repository/catalog"
	"github.com/tokosearch/tokosearch/internal/ranking"
	searchuc "github.com/tokosearch/tokosearch/internal/usecase/search"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	catalogPath   string
	documents     []Document
	bm25Params    bm25.Params
	rankingParams ranking.Params
	defaultK      int
	logger        *zap.Logger
}

// WithCatalogFile loads places from a CSV export.
func WithCatalogFile(path string) Option {
	return func(c *clientConfig) {
		c.catalogPath = path
	}
}

// WithDocuments supplies places directly instead of a CSV file.
func WithDocuments(docs []Document) Option {
	return func(c *clientConfig) {
		c.documents = docs
	}
}

// WithBM25Params overrides the BM25 tuning constants.
func WithBM25Params(k1, b float64) Option {
	return func(c *clientConfig) {
		c.bm25Params = bm25.Params{K1: k1, B: b}
	}
}

// WithFusionWeights overrides the score fusion weights.
func WithFusionWeights(bm25W, distance, rating, popularity float64) Option {
	return func(c *clientConfig) {
		c.rankingParams.Weights = ranking.Weights{
			BM25:       bm25W,
			Distance:   distance,
			Rating:     rating,
			Popularity: popularity,
		}
	}
}

// WithDistanceHorizon overrides the distance horizon in kilometers.
func WithDistanceHorizon(km float64) Option {
	return func(c *clientConfig) {
		c.rankingParams.MaxDistanceKm = km
	}
}

// WithDefaultK overrides the default result list size.
func WithDefaultK(k int) Option {
	return func(c *clientConfig) {
		c.defaultK = k
	}
}

// WithLogger supplies a logger; the default is silent.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// Client is the embedded tokosearch entry point.
type Client struct {
	svc *searchuc.Service
}

// New creates a Client and builds the index over the supplied catalog.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		bm25Params:    bm25.DefaultParams(),
		rankingParams: ranking.DefaultParams(),
		defaultK:      10,
		logger:        zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	var cat *catalog.Catalog
	switch {
	case cfg.catalogPath != "":
		var err error
		cat, err = loaderrepo.New(cfg.logger).Load(cfg.catalogPath)
		if err != nil {
			return nil, fmt.Errorf("sdk: %w", err)
		}
	case len(cfg.documents) > 0:
		docs := make([]catalog.Document, len(cfg.documents))
		for i, d := range cfg.documents {
			docs[i] = d.toDomain()
		}
		cat = catalog.New(docs)
	default:
		return nil, errors.New("sdk: a catalog is required (use WithCatalogFile or WithDocuments)")
	}

	ranker, err := ranking.New(cfg.rankingParams)
	if err != nil {
		return nil, fmt.Errorf("sdk: %w", err)
	}
	svc, err := searchuc.New(ranker, searchuc.StdEvaluator{}, cfg.bm25Params, cfg.defaultK)
	if err != nil {
		return nil, fmt.Errorf("sdk: %w", err)
	}
	if err := svc.BuildIndex(context.Background(), cat); err != nil {
		return nil, fmt.Errorf("sdk: %w", err)
	}

	return &Client{svc: svc}, nil
}

// Search runs one query against the embedded index.
func (c *Client) Search(ctx context.Context, q Query) (SearchResult, error) {
	uq := searchuc.Query{
		Text:  q.Text,
		Store: catalog.StoreType(q.Store),
		TopK:  q.K,
	}
	if q.Lat != nil && q.Lon != nil {
		uq.Lat, uq.Lon, uq.HasLocation = *q.Lat, *q.Lon, true
	}

	resp, err := c.svc.Search(ctx, uq)
	if err != nil {
		return SearchResult{}, fmt.Errorf("sdk: search: %w", err)
	}
	return fromResponse(resp), nil
}

// Stats reports the index statistics.
func (c *Client) Stats() (Stats, error) {
	st, err := c.svc.Stats()
	if err != nil {
		return Stats{}, fmt.Errorf("sdk: stats: %w", err)
	}
	return Stats{
		Documents:      st.Documents,
		AvgDocLength:   st.AvgDocLength,
		VocabularySize: st.VocabularySize,
	}, nil
}

// EvaluateQuerySet runs every query and reports per-query metrics plus
// the mean average precision over the set.
func (c *Client) EvaluateQuerySet(ctx context.Context, queries []Query) (SetReport, error) {
	uqs := make([]searchuc.Query, len(queries))
	for i, q := range queries {
		uqs[i] = searchuc.Query{
			Text:  q.Text,
			Store: catalog.StoreType(q.Store),
			TopK:  q.K,
		}
		if q.Lat != nil && q.Lon != nil {
			uqs[i].Lat, uqs[i].Lon, uqs[i].HasLocation = *q.Lat, *q.Lon, true
		}
	}

	sr, err := c.svc.EvaluateQuerySet(ctx, uqs)
	if err != nil {
		return SetReport{}, fmt.Errorf("sdk: evaluate: %w", err)
	}

	out := SetReport{MeanAveragePrecision: sr.MeanAveragePrecision}
	out.Queries = make([]QueryReport, len(sr.Queries))
	for i, qr := range sr.Queries {
		out.Queries[i] = QueryReport{
			Query: qr.Query,
			Report: Report{
				PrecisionAtK:     qr.Report.PrecisionAtK,
				RecallAtK:        qr.Report.RecallAtK,
				AveragePrecision: qr.Report.AveragePrecision,
				K:                qr.Report.K,
			},
		}
	}
	return out, nil
}

// Ptr returns a pointer to v, for the optional coordinate fields.
func Ptr(v float64) *float64 { return &v }

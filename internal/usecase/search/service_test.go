package search

import (
	"context"
	"errors"
	"testing"

	"github.com/tokosearch/tokosearch/internal/bm25"
	"github.com/tokosearch/tokosearch/internal/domain"
	"github.com/tokosearch/tokosearch/internal/domain/catalog"
	"github.com/tokosearch/tokosearch/internal/eval"
	"github.com/tokosearch/tokosearch/internal/ranking"
)

// --- Mocks ---

type mockRanker struct {
	results   []ranking.Result
	labels    []bool
	lastReq   ranking.Request
	rankCalls int
	labelHit  int
}

func (m *mockRanker) Rank(_ *bm25.Index, _ *catalog.Catalog, req ranking.Request) []ranking.Result {
	m.lastReq = req
	m.rankCalls++
	return m.results
}

func (m *mockRanker) LabelRelevance(_ []ranking.Result, _ catalog.StoreType) []bool {
	m.labelHit++
	return m.labels
}

type mockEvaluator struct {
	report  eval.Report
	err     error
	gotK    int
	gotRel  []bool
	invoked bool
}

func (m *mockEvaluator) Evaluate(relevance []bool, k int) (eval.Report, error) {
	m.invoked = true
	m.gotK = k
	m.gotRel = relevance
	return m.report, m.err
}

func testDoc(id string) catalog.Document {
	return catalog.NewDocument(id, []catalog.Field{
		{Name: "nama_tempat", Value: "indomaret cilandak"},
	}, "Indomaret", 4.0, 10)
}

func scored(id string, final float64) ranking.Result {
	return ranking.NewResult(testDoc(id), ranking.Scores{BM25Raw: 1, FinalScore: final})
}

func newService(t *testing.T, r Ranker, e Evaluator) *Service {
	t.Helper()
	svc, err := New(r, e, bm25.DefaultParams(), 10)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func buildSmall(t *testing.T, svc *Service) {
	t.Helper()
	cat := catalog.New([]catalog.Document{testDoc("d1"), testDoc("d2")})
	if err := svc.BuildIndex(context.Background(), cat); err != nil {
		t.Fatalf("build index: %v", err)
	}
}

// --- Tests ---

func TestNew_Validation(t *testing.T) {
	if _, err := New(&mockRanker{}, &mockEvaluator{}, bm25.Params{K1: 0, B: 0.75}, 10); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("bad bm25 params: got %v, want ErrInvalidConfig", err)
	}
	if _, err := New(&mockRanker{}, &mockEvaluator{}, bm25.DefaultParams(), 0); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("zero default k: got %v, want ErrInvalidConfig", err)
	}
}

func TestSearch_BeforeBuild(t *testing.T) {
	svc := newService(t, &mockRanker{}, &mockEvaluator{})
	_, err := svc.Search(context.Background(), Query{Text: "indomaret"})
	if !errors.Is(err, domain.ErrIndexNotBuilt) {
		t.Fatalf("got %v, want ErrIndexNotBuilt", err)
	}
}

func TestStats_BeforeBuild(t *testing.T) {
	svc := newService(t, &mockRanker{}, &mockEvaluator{})
	if _, err := svc.Stats(); !errors.Is(err, domain.ErrIndexNotBuilt) {
		t.Errorf("stats: got %v, want ErrIndexNotBuilt", err)
	}
	if _, err := svc.Catalog(); !errors.Is(err, domain.ErrIndexNotBuilt) {
		t.Errorf("catalog: got %v, want ErrIndexNotBuilt", err)
	}
}

func TestBuildIndex_PublishesSnapshot(t *testing.T) {
	svc := newService(t, &mockRanker{}, &mockEvaluator{})
	buildSmall(t, svc)

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Documents != 2 {
		t.Errorf("documents: got %d, want 2", stats.Documents)
	}
}

func TestSearch_DefaultK(t *testing.T) {
	r := &mockRanker{
		results: []ranking.Result{scored("d1", 0.9)},
		labels:  []bool{true},
	}
	e := &mockEvaluator{report: eval.Report{K: 1}}
	svc := newService(t, r, e)
	buildSmall(t, svc)

	if _, err := svc.Search(context.Background(), Query{Text: "indomaret"}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if r.lastReq.TopK != 10 {
		t.Errorf("default k not applied: got %d, want 10", r.lastReq.TopK)
	}
}

func TestSearch_ClampsEvaluationK(t *testing.T) {
	// Two results against a requested k of 10: the evaluator must be
	// called with k=2, never with a k beyond the label count.
	r := &mockRanker{
		results: []ranking.Result{scored("d1", 0.9), scored("d2", 0.8)},
		labels:  []bool{true, false},
	}
	e := &mockEvaluator{report: eval.Report{K: 2}}
	svc := newService(t, r, e)
	buildSmall(t, svc)

	resp, err := svc.Search(context.Background(), Query{Text: "indomaret", TopK: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !e.invoked {
		t.Fatal("evaluator not invoked")
	}
	if e.gotK != 2 {
		t.Errorf("evaluation k: got %d, want 2", e.gotK)
	}
	if len(resp.Labels) != 2 {
		t.Errorf("labels: got %d, want 2", len(resp.Labels))
	}
}

func TestSearch_EmptyResults_ZeroReport(t *testing.T) {
	r := &mockRanker{results: nil}
	e := &mockEvaluator{}
	svc := newService(t, r, e)
	buildSmall(t, svc)

	resp, err := svc.Search(context.Background(), Query{Text: "nothing matches"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if e.invoked {
		t.Error("evaluator must not run on an empty result list")
	}
	if resp.Report.K != 0 {
		t.Errorf("report k: got %d, want 0", resp.Report.K)
	}
}

func TestSearch_EvaluatorError(t *testing.T) {
	r := &mockRanker{
		results: []ranking.Result{scored("d1", 0.9)},
		labels:  []bool{true},
	}
	e := &mockEvaluator{err: domain.ErrInvalidArgument}
	svc := newService(t, r, e)
	buildSmall(t, svc)

	_, err := svc.Search(context.Background(), Query{Text: "indomaret"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("got %v, want wrapped ErrInvalidArgument", err)
	}
}

func TestEvaluateQuerySet(t *testing.T) {
	r := &mockRanker{
		results: []ranking.Result{scored("d1", 0.9), scored("d2", 0.8)},
		labels:  []bool{true, true},
	}
	svc := newService(t, r, StdEvaluator{})
	buildSmall(t, svc)

	set, err := svc.EvaluateQuerySet(context.Background(), []Query{
		{Text: "indomaret"},
		{Text: "cilandak"},
	})
	if err != nil {
		t.Fatalf("evaluate query set: %v", err)
	}
	if len(set.Queries) != 2 {
		t.Fatalf("query reports: got %d", len(set.Queries))
	}
	// Both rankings label everything relevant, so MAP is 1.0.
	if set.MeanAveragePrecision != 1.0 {
		t.Errorf("map: got %f, want 1.0", set.MeanAveragePrecision)
	}
}

func TestEvaluateQuerySet_PropagatesError(t *testing.T) {
	svc := newService(t, &mockRanker{}, &mockEvaluator{})
	// No BuildIndex: every query must fail with ErrIndexNotBuilt.
	_, err := svc.EvaluateQuerySet(context.Background(), []Query{{Text: "indomaret"}})
	if !errors.Is(err, domain.ErrIndexNotBuilt) {
		t.Fatalf("got %v, want ErrIndexNotBuilt", err)
	}
}

// Full pipeline smoke test with the real ranker and evaluator.
func TestSearch_EndToEnd(t *testing.T) {
	ranker, err := ranking.New(ranking.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	svc := newService(t, ranker, StdEvaluator{})

	docs := []catalog.Document{
		catalog.NewDocument("d1", []catalog.Field{
			{Name: "nama_tempat", Value: "Indomaret Cilandak Raya"},
		}, "Indomaret", 4.3, 120).WithLocation(-6.2894, 106.7996),
		catalog.NewDocument("d2", []catalog.Field{
			{Name: "nama_tempat", Value: "Alfamart Jaya"},
		}, "Alfamart", 4.0, 80).WithLocation(-6.3051, 106.8123),
	}
	if err := svc.BuildIndex(context.Background(), catalog.New(docs)); err != nil {
		t.Fatalf("build: %v", err)
	}

	resp, err := svc.Search(context.Background(), Query{
		Text: "indomaret cilandak",
		Lat:  -6.28, Lon: 106.80, HasLocation: true,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Document().ID() != "d1" {
		t.Fatalf("unexpected results: %d", len(resp.Results))
	}
	if resp.Report.K != 1 || resp.Report.PrecisionAtK != 1.0 {
		t.Errorf("report: %+v", resp.Report)
	}
	if resp.Match.MatchedTerms != 2 {
		t.Errorf("match stats: %+v", resp.Match)
	}
}

package sdk

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func fixtureDocuments() []Document {
	return []Document{
		{
			ID: "p1", Name: "Indomaret Cilandak", Address: "Jl. Cilandak Raya",
			Store: "indomaret", Rating: 4.5, ReviewCount: 120,
			Lat: Ptr(-6.2894), Lon: Ptr(106.7996),
		},
		{
			ID: "p2", Name: "Alfamart Jaya", Address: "Jl. Fatmawati",
			Store: "alfamart", Rating: 4.0, ReviewCount: 80,
			Lat: Ptr(-6.2921), Lon: Ptr(106.7975),
		},
	}
}

func TestNew_RequiresCatalog(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error without a catalog source")
	}
}

func TestNew_FromDocuments_Search(t *testing.T) {
	client, err := New(WithDocuments(fixtureDocuments()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := client.Search(context.Background(), Query{
		Text: "indomaret cilandak",
		Lat:  Ptr(-6.28),
		Lon:  Ptr(106.80),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(res.Results))
	}

	top := res.Results[0]
	if top.ID != "p1" {
		t.Errorf("expected p1 on top, got %s", top.ID)
	}
	if top.DistanceKm == nil {
		t.Error("expected a distance with user location")
	}
	if !top.Relevant {
		t.Error("expected the top hit to be labeled relevant")
	}
	if res.Report.PrecisionAtK != 1.0 {
		t.Errorf("expected precision 1.0, got %g", res.Report.PrecisionAtK)
	}
}

func TestNew_FromCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "places.csv")
	raw := `place_id,nama_tempat,store,latitude,longitude,rating_tempat,user_ratings_total
p1,Indomaret Cilandak,indomaret,-6.2894,106.7996,4.5,120
p2,Alfamart Jaya,alfamart,-6.2921,106.7975,4.0,80
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	client, err := New(WithCatalogFile(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := client.Stats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Documents != 2 {
		t.Errorf("expected 2 documents, got %d", stats.Documents)
	}
}

func TestClient_Options(t *testing.T) {
	client, err := New(
		WithDocuments(fixtureDocuments()),
		WithBM25Params(1.2, 0.5),
		WithFusionWeights(0.4, 0.3, 0.2, 0.1),
		WithDistanceHorizon(5),
		WithDefaultK(1),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// DefaultK=1 truncates even a broad query.
	res, err := client.Search(context.Background(), Query{Text: "indomaret alfamart"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Results) != 1 {
		t.Fatalf("expected 1 result with default k=1, got %d", len(res.Results))
	}
}

func TestClient_InvalidParams(t *testing.T) {
	if _, err := New(WithDocuments(fixtureDocuments()), WithBM25Params(1.5, 2.0)); err == nil {
		t.Error("expected error for b outside [0, 1]")
	}
	if _, err := New(WithDocuments(fixtureDocuments()), WithFusionWeights(-1, 0, 0, 0)); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestEvaluateQuerySet(t *testing.T) {
	client, err := New(WithDocuments(fixtureDocuments()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := client.EvaluateQuerySet(context.Background(), []Query{
		{Text: "indomaret cilandak"},
		{Text: "alfamart jaya"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Queries) != 2 {
		t.Fatalf("expected 2 query reports, got %d", len(report.Queries))
	}
	// Each query has exactly one hit which passes the relevance rule.
	if report.MeanAveragePrecision != 1.0 {
		t.Errorf("expected MAP 1.0, got %g", report.MeanAveragePrecision)
	}
}

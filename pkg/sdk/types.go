package sdk

import (
	"github.com/tokosearch/tokosearch/internal/domain/catalog"
	searchuc "github.com/tokosearch/tokosearch/internal/usecase/search"
)

// Document is one place supplied to WithDocuments. Lat and Lon are
// honored only when both are set.
type Document struct {
	ID          string
	Name        string
	Address     string
	Village     string
	District    string
	Store       string
	Rating      float64
	ReviewCount int
	Lat, Lon    *float64
}

func (d Document) toDomain() catalog.Document {
	fields := []catalog.Field{{Name: "nama_tempat", Value: d.Name}}
	for _, f := range []catalog.Field{
		{Name: "alamat_tempat", Value: d.Address},
		{Name: "nama_kelurahan", Value: d.Village},
		{Name: "nama_kecamatan", Value: d.District},
	} {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	doc := catalog.NewDocument(d.ID, fields, catalog.StoreType(d.Store), d.Rating, d.ReviewCount)
	if d.Lat != nil && d.Lon != nil {
		doc = doc.WithLocation(*d.Lat, *d.Lon)
	}
	return doc
}

// Query is one search invocation. Lat and Lon must be set together.
type Query struct {
	Text     string
	Lat, Lon *float64
	Store    string
	K        int
}

// Result is one ranked place.
type Result struct {
	ID              string
	Name            string
	Store           string
	Rating          float64
	ReviewCount     int
	DistanceKm      *float64
	BM25Score       float64
	DistanceScore   float64
	RatingScore     float64
	PopularityScore float64
	FinalScore      float64
	Relevant        bool
}

// Report holds the ranking quality metrics for one query.
type Report struct {
	PrecisionAtK     float64
	RecallAtK        float64
	AveragePrecision float64
	K                int
}

// SearchResult bundles the ranked places with their evaluation.
type SearchResult struct {
	Results []Result
	Report  Report
}

// QueryReport is the evaluation of one query within a set.
type QueryReport struct {
	Query  string
	Report Report
}

// SetReport aggregates a benchmark run over several queries.
type SetReport struct {
	Queries              []QueryReport
	MeanAveragePrecision float64
}

// Stats summarizes the built index.
type Stats struct {
	Documents      int
	AvgDocLength   float64
	VocabularySize int
}

func fromResponse(resp searchuc.Response) SearchResult {
	out := SearchResult{
		Report: Report{
			PrecisionAtK:     resp.Report.PrecisionAtK,
			RecallAtK:        resp.Report.RecallAtK,
			AveragePrecision: resp.Report.AveragePrecision,
			K:                resp.Report.K,
		},
	}
	out.Results = make([]Result, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		doc := r.Document()
		item := Result{
			ID:              doc.ID(),
			Store:           string(doc.Store()),
			Rating:          doc.Rating(),
			ReviewCount:     doc.ReviewCount(),
			BM25Score:       r.BM25Raw(),
			DistanceScore:   r.DistanceScore(),
			RatingScore:     r.RatingScore(),
			PopularityScore: r.PopularityScore(),
			FinalScore:      r.FinalScore(),
			Relevant:        i < len(resp.Labels) && resp.Labels[i],
		}
		if fields := doc.Fields(); len(fields) > 0 {
			item.Name = fields[0].Value
		}
		if km, ok := r.DistanceKm(); ok {
			item.DistanceKm = &km
		}
		out.Results[i] = item
	}
	return out
}

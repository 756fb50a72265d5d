// Package chi implements the HTTP API on top of the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tokosearch/tokosearch/internal/bm25"
	"github.com/tokosearch/tokosearch/internal/domain"
	"github.com/tokosearch/tokosearch/internal/domain/catalog"
	"github.com/tokosearch/tokosearch/internal/domain/geo"
	"github.com/tokosearch/tokosearch/internal/eval"
	"github.com/tokosearch/tokosearch/internal/ranking"
	searchuc "github.com/tokosearch/tokosearch/internal/usecase/search"
)

// ErrorCode identifies an error class in API responses.
type ErrorCode string

const (
	CodeBadRequest    ErrorCode = "bad_request"
	CodeNotFound      ErrorCode = "not_found"
	CodeIndexNotReady ErrorCode = "index_not_ready"
	CodeUnauthorized  ErrorCode = "unauthorized"
	CodeInternalError ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /search body. Lat and Lon must be set
// together; omitting them searches without a location signal.
type SearchRequest struct {
	Query string            `json:"query"`
	Lat   *float64          `json:"lat,omitempty"`
	Lon   *float64          `json:"lon,omitempty"`
	Store catalog.StoreType `json:"store,omitempty"`
	K     int               `json:"k,omitempty"`
}

// ResultItem is one ranked place in a search response.
type ResultItem struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Fields          []FieldItem       `json:"fields,omitempty"`
	Store           catalog.StoreType `json:"store,omitempty"`
	Rating          float64           `json:"rating"`
	ReviewCount     int               `json:"review_count"`
	DistanceKm      *float64          `json:"distance_km,omitempty"`
	Distance        string            `json:"distance,omitempty"`
	BM25Score       float64           `json:"bm25_score"`
	DistanceScore   float64           `json:"distance_score"`
	RatingScore     float64           `json:"rating_score"`
	PopularityScore float64           `json:"popularity_score"`
	FinalScore      float64           `json:"final_score"`
	Relevant        bool              `json:"relevant"`
}

// FieldItem is one named text field of a place.
type FieldItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SearchResponse is the POST /search reply.
type SearchResponse struct {
	Results []ResultItem    `json:"results"`
	Report  eval.Report     `json:"report"`
	Match   bm25.MatchStats `json:"match_stats"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search service over HTTP.
type Server struct {
	search        *searchuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrIndexNotBuilt, http.StatusServiceUnavailable, CodeIndexNotReady),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrInvalidConfig, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
	}
	return s
}

// Routes registers the API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search", s.Search)
	r.Get("/stats", s.Stats)
	r.Get("/catalog/{id}", s.GetDocument)
	r.Get("/health", s.Health)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	if (req.Lat == nil) != (req.Lon == nil) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "lat and lon must be provided together")
		return
	}

	q := searchuc.Query{
		Text:  req.Query,
		Store: req.Store,
		TopK:  req.K,
	}
	if req.Lat != nil && req.Lon != nil {
		if !geo.ValidCoordinates(*req.Lat, *req.Lon) {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "coordinates out of range")
			return
		}
		q.Lat, q.Lon, q.HasLocation = *req.Lat, *req.Lon, true
	}

	resp, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseToAPI(resp))
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.search.Stats()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetDocument handles GET /catalog/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cat, err := s.search.Catalog()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	doc, err := cat.Get(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToAPI(doc))
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if _, err := s.search.Stats(); errors.Is(err, domain.ErrIndexNotBuilt) {
		status = "index_not_built"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}

func searchResponseToAPI(resp searchuc.Response) SearchResponse {
	items := make([]ResultItem, len(resp.Results))
	for i := range resp.Results {
		relevant := i < len(resp.Labels) && resp.Labels[i]
		items[i] = resultToAPI(&resp.Results[i], relevant)
	}
	return SearchResponse{
		Results: items,
		Report:  resp.Report,
		Match:   resp.Match,
	}
}

func resultToAPI(r *ranking.Result, relevant bool) ResultItem {
	doc := r.Document()
	item := ResultItem{
		ID:              doc.ID(),
		Store:           doc.Store(),
		Rating:          doc.Rating(),
		ReviewCount:     doc.ReviewCount(),
		BM25Score:       r.BM25Raw(),
		DistanceScore:   r.DistanceScore(),
		RatingScore:     r.RatingScore(),
		PopularityScore: r.PopularityScore(),
		FinalScore:      r.FinalScore(),
		Relevant:        relevant,
	}
	for i, f := range doc.Fields() {
		if i == 0 {
			item.Name = f.Value
			continue
		}
		item.Fields = append(item.Fields, FieldItem{Name: f.Name, Value: f.Value})
	}
	if km, ok := r.DistanceKm(); ok {
		item.DistanceKm = &km
		item.Distance = geo.FormatDistance(km)
	}
	return item
}

// DocumentResponse is the GET /catalog/{id} reply.
type DocumentResponse struct {
	ID          string            `json:"id"`
	Fields      []FieldItem       `json:"fields"`
	Store       catalog.StoreType `json:"store,omitempty"`
	Rating      float64           `json:"rating"`
	ReviewCount int               `json:"review_count"`
	Lat         *float64          `json:"lat,omitempty"`
	Lon         *float64          `json:"lon,omitempty"`
}

func documentToAPI(doc catalog.Document) DocumentResponse {
	out := DocumentResponse{
		ID:          doc.ID(),
		Store:       doc.Store(),
		Rating:      doc.Rating(),
		ReviewCount: doc.ReviewCount(),
	}
	for _, f := range doc.Fields() {
		out.Fields = append(out.Fields, FieldItem{Name: f.Name, Value: f.Value})
	}
	if lat, lon, ok := doc.Location(); ok {
		out.Lat, out.Lon = &lat, &lon
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrIndexNotBuilt,
		domain.ErrInvalidArgument,
		domain.ErrInvalidConfig,
		domain.ErrMalformedCatalog,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// Package catalog loads the place catalog from CSV exports.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tokosearch/tokosearch/internal/domain"
	domaincat "github.com/tokosearch/tokosearch/internal/domain/catalog"
	"github.com/tokosearch/tokosearch/internal/domain/geo"
)

// Column names recognized in the catalog export. Only the place name is
// mandatory; everything else degrades gracefully.
const (
	colPlaceID   = "place_id"
	colName      = "nama_tempat"
	colAddress   = "alamat_tempat"
	colVillage   = "nama_kelurahan"
	colDistrict  = "nama_kecamatan"
	colStore     = "store"
	colLatitude  = "latitude"
	colLongitude = "longitude"
	colRating    = "rating_tempat"
	colReviews   = "user_ratings_total"
)

// Loader reads place catalogs from CSV files.
type Loader struct {
	logger *zap.Logger
}

// New creates a catalog loader.
func New(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads and parses the CSV catalog at path.
func (l *Loader) Load(path string) (*domaincat.Catalog, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	cat, err := l.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse reads a CSV catalog from r. The first record is the header; the
// place name column is required, other columns are optional. Rows with
// an empty name are skipped, unparsable coordinates leave the document
// without a location.
func (l *Loader) Parse(r io.Reader) (*domaincat.Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", domain.ErrMalformedCatalog, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("%w: missing required column %q", domain.ErrMalformedCatalog, colName)
	}

	var docs []domaincat.Document
	var skipped int
	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrMalformedCatalog, row, err)
		}

		doc, ok := l.parseRow(cols, record, row)
		if !ok {
			skipped++
			continue
		}
		docs = append(docs, doc)
	}

	if skipped > 0 {
		l.logger.Warn("skipped catalog rows without a place name", zap.Int("skipped", skipped))
	}
	l.logger.Info("catalog loaded", zap.Int("documents", len(docs)))

	return domaincat.New(docs), nil
}

func (l *Loader) parseRow(cols map[string]int, record []string, row int) (domaincat.Document, bool) {
	name := cell(cols, record, colName)
	if name == "" {
		return domaincat.Document{}, false
	}

	id := cell(cols, record, colPlaceID)
	if id == "" {
		id = fmt.Sprintf("row-%d", row)
	}

	fields := []domaincat.Field{
		{Name: colName, Value: name},
	}
	for _, c := range []string{colAddress, colVillage, colDistrict} {
		if v := cell(cols, record, c); v != "" {
			fields = append(fields, domaincat.Field{Name: c, Value: v})
		}
	}

	doc := domaincat.NewDocument(
		id,
		fields,
		domaincat.StoreType(strings.ToLower(cell(cols, record, colStore))),
		parseFloat(cell(cols, record, colRating)),
		parseInt(cell(cols, record, colReviews)),
	)

	lat, latOK := parseCoord(cell(cols, record, colLatitude))
	lon, lonOK := parseCoord(cell(cols, record, colLongitude))
	if latOK && lonOK && geo.ValidCoordinates(lat, lon) {
		doc = doc.WithLocation(lat, lon)
	}

	return doc, true
}

func cell(cols map[string]int, record []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parseCoord(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

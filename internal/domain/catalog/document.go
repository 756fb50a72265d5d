package catalog

// StoreType identifies the retail chain a document belongs to.
type StoreType string

// StoreAny is the filter value that matches every store type.
const StoreAny StoreType = "any"

// Matches reports whether a document of this store type passes the given
// filter. An empty filter and StoreAny pass everything; otherwise the
// match is exact.
func (s StoreType) Matches(filter StoreType) bool {
	return filter == "" || filter == StoreAny || s == filter
}

// Field is one named text field of a document, e.g. the place name or its
// street address. Field order is significant: it is the order the fields
// are tokenized in.
type Field struct {
	Name  string
	Value string
}

// Document is one catalog record (immutable value object). It is created
// once at catalog load and never mutated after the index is built.
type Document struct {
	id          string
	fields      []Field
	store       StoreType
	rating      float64
	reviewCount int
	lat         float64
	lon         float64
	hasLocation bool
}

// NewDocument creates a Document. Rating is clamped to [0,5] and a negative
// review count is treated as zero; catalog rows are never rejected for
// out-of-range values. The document carries no location until
// WithLocation is applied.
func NewDocument(id string, fields []Field, store StoreType, rating float64, reviewCount int) Document {
	if rating < 0 {
		rating = 0
	} else if rating > 5 {
		rating = 5
	}
	if reviewCount < 0 {
		reviewCount = 0
	}
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return Document{
		id:          id,
		fields:      fs,
		store:       store,
		rating:      rating,
		reviewCount: reviewCount,
	}
}

// WithLocation returns a copy carrying the given coordinates.
func (d Document) WithLocation(lat, lon float64) Document {
	d.lat, d.lon, d.hasLocation = lat, lon, true
	return d
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Store returns the store type.
func (d Document) Store() StoreType { return d.store }

// Rating returns the place rating in [0,5].
func (d Document) Rating() float64 { return d.rating }

// ReviewCount returns the number of user reviews.
func (d Document) ReviewCount() int { return d.reviewCount }

// Fields returns the ordered named text fields.
func (d Document) Fields() []Field { return d.fields }

// FieldValues returns the field values in declaration order, the form the
// text normalizer consumes.
func (d Document) FieldValues() []string {
	vals := make([]string, len(d.fields))
	for i, f := range d.fields {
		vals[i] = f.Value
	}
	return vals
}

// Location returns the coordinates and whether the document has any.
// Documents without coordinates take no part in distance scoring; they
// must never default to (0,0).
func (d Document) Location() (lat, lon float64, ok bool) {
	return d.lat, d.lon, d.hasLocation
}

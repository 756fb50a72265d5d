// Package catalog holds the fixed in-memory document catalog the search
// pipeline ranks against. Document order inside the catalog is stable and
// defines the tie-break order when ranking scores are equal.
package catalog

import (
	"fmt"

	"github.com/tokosearch/tokosearch/internal/domain"
)

// Catalog is the fixed, ordered document collection. It is immutable
// after construction and safe for concurrent readers.
type Catalog struct {
	docs       []Document
	byID       map[string]int
	maxReviews int
}

// New creates a catalog preserving the given document order.
func New(docs []Document) *Catalog {
	c := &Catalog{
		docs: make([]Document, len(docs)),
		byID: make(map[string]int, len(docs)),
	}
	copy(c.docs, docs)
	for i := range c.docs {
		c.byID[c.docs[i].ID()] = i
		if rc := c.docs[i].ReviewCount(); rc > c.maxReviews {
			c.maxReviews = rc
		}
	}
	return c
}

// Len returns the number of documents.
func (c *Catalog) Len() int { return len(c.docs) }

// Doc returns the document at the given catalog position.
func (c *Catalog) Doc(i int) Document { return c.docs[i] }

// Get returns the document with the given ID.
func (c *Catalog) Get(id string) (Document, error) {
	i, ok := c.byID[id]
	if !ok {
		return Document{}, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	return c.docs[i], nil
}

// MaxReviewCount returns the highest review count across the whole
// catalog. Popularity scores are normalized against this value, not
// against a query-filtered subset.
func (c *Catalog) MaxReviewCount() int { return c.maxReviews }

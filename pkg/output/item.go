package output

import (
	"github.com/barmintor/ia-ebooks/pkg/archive"
	"github.com/barmintor/ia-ebooks/pkg/catalog"
)

// Collection is the two-field shape emitted for collection listings.
type Collection struct {
	Identifier  string `json:"identifier"`
	Description string `json:"description"`
}

// NewCollection shapes a search result as a collection entry.
func NewCollection(doc archive.Document) Collection {
	return Collection{
		Identifier:  doc.Identifier(),
		Description: doc.Description(),
	}
}

// Item is an archive document augmented with its derived links and,
// optionally, its resolved CLIO record. Named fields instead of an ad-hoc
// map merge keep the output schema visible in one place.
type Item struct {
	Document archive.Document `json:"document"`
	Links    archive.Links    `json:"links"`
	Clio     *catalog.Record  `json:"clio,omitempty"`
}

// NewItem shapes a document for output. clio may be nil when catalog
// augmentation was not requested.
func NewItem(doc archive.Document, clio *catalog.Record) Item {
	return Item{
		Document: doc,
		Links:    archive.LinksFor(doc.Identifier()),
		Clio:     clio,
	}
}

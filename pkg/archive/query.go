package archive

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Clause is a single field:value search constraint.
type Clause struct {
	Field string
	Value string
}

// Query is an ordered set of search clauses. It is immutable once built;
// the zero value matches nothing useful and should not be used directly.
type Query struct {
	clauses []Clause
}

// NewQuery builds a query from the given clauses, preserving their order.
func NewQuery(clauses ...Clause) Query {
	copied := make([]Clause, len(clauses))
	copy(copied, clauses)
	return Query{clauses: copied}
}

// CollectionQuery scopes a search to a containing collection and a
// mediatype ("collection" for sub-collections, "texts" for ebooks).
func CollectionQuery(collection, mediatype string) Query {
	return NewQuery(
		Clause{Field: "collection", Value: collection},
		Clause{Field: "mediatype", Value: mediatype},
	)
}

// IdentifierQuery matches a single document by its archive identifier.
func IdentifierQuery(identifier string) Query {
	return NewQuery(Clause{Field: "identifier", Value: identifier})
}

// Expression renders the clauses as an AND-joined advanced search query,
// one "field:(value)" term per clause.
func (q Query) Expression() string {
	terms := make([]string, 0, len(q.clauses))
	for _, c := range q.clauses {
		terms = append(terms, fmt.Sprintf("%s:(%s)", c.Field, c.Value))
	}
	return strings.Join(terms, " AND ")
}

// Params returns the full advanced search parameter set for one page.
// Output format and sort order are fixed: JSON, descending by the
// archive's internal ranking field.
func (q Query) Params(rows, page int) url.Values {
	return url.Values{
		"q":        []string{q.Expression()},
		"callback": []string{""},
		"rows":     []string{strconv.Itoa(rows)},
		"page":     []string{strconv.Itoa(page)},
		"output":   []string{"json"},
		"sort[]":   []string{"__sort desc"},
	}
}

package archive

import "strings"

// Document is one search result as returned by the archive. No schema is
// enforced beyond the identifier field; everything else is whatever
// metadata the archive holds for the item.
type Document map[string]any

// Identifier returns the document's archive identifier, or "" when absent.
func (d Document) Identifier() string {
	return d.stringField("identifier")
}

// Description returns the document's description, or "" when absent.
func (d Document) Description() string {
	return d.stringField("description")
}

// StrippedTags returns the document's markup-stripped free-text metadata,
// or "" when absent.
func (d Document) StrippedTags() string {
	return d.stringField("stripped_tags")
}

// stringField reads a metadata field that the archive serves either as a
// string or as a list of strings. Lists are joined with a single space.
func (d Document) stringField(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

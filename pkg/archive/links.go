package archive

import "fmt"

// Links is the fixed set of URLs derivable from a document identifier.
type Links struct {
	Thumbnail string `json:"thumbnail"`
	Poster    string `json:"poster"`
	PDF       string `json:"pdf"`
	Viewer    string `json:"iframe"`
}

// LinksFor derives the archive URLs for an identifier. Pure string
// templating: same identifier in, byte-identical URLs out, no network.
func LinksFor(identifier string) Links {
	return Links{
		Thumbnail: fmt.Sprintf("https://archive.org/services/img/%s", identifier),
		Poster:    fmt.Sprintf("https://archive.org/download/%s/page/cover_medium.jpg", identifier),
		PDF:       fmt.Sprintf("https://archive.org/download/%s/%s.pdf", identifier, identifier),
		Viewer:    fmt.Sprintf("https://archive.org/stream/%s?ui=full&showNavbar=false", identifier),
	}
}

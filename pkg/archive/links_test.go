package archive

import "testing"

func TestLinksFor(t *testing.T) {
	links := LinksFor("ldpd_1234abc_5678")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"thumbnail", links.Thumbnail, "https://archive.org/services/img/ldpd_1234abc_5678"},
		{"poster", links.Poster, "https://archive.org/download/ldpd_1234abc_5678/page/cover_medium.jpg"},
		{"pdf", links.PDF, "https://archive.org/download/ldpd_1234abc_5678/ldpd_1234abc_5678.pdf"},
		{"viewer", links.Viewer, "https://archive.org/stream/ldpd_1234abc_5678?ui=full&showNavbar=false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestLinksForDeterministic(t *testing.T) {
	a := LinksFor("some_identifier")
	b := LinksFor("some_identifier")
	if a != b {
		t.Errorf("LinksFor is not deterministic: %+v vs %+v", a, b)
	}
}

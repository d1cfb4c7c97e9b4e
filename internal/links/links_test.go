package links_test

import (
	"testing"

	"karaparty/internal/links"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"short link canonicalized", "mira esta https://youtu.be/dQw4w9WgXcQ !!", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"no www", "http://youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"short id kept as is", "https://youtu.be/abc", "https://youtu.be/abc", true},
		{"overlong id kept as is", "https://www.youtube.com/watch?v=AAAAAAAAAAAxyz", "https://www.youtube.com/watch?v=AAAAAAAAAAAxyz", true},
		{"no link", "hola equipo", "", false},
		{"other site", "https://vimeo.com/12345", "", false},
		{"two links", "https://youtu.be/dQw4w9WgXcQ https://youtu.be/9bZkp7q19f0", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := links.Extract(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("Extract(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractTreatsShortAndWatchAsSameResource(t *testing.T) {
	a, _ := links.Extract("https://youtu.be/9bZkp7q19f0")
	b, _ := links.Extract("https://www.youtube.com/watch?v=9bZkp7q19f0")
	if a != b {
		t.Fatalf("expected identical canonical links, got %q and %q", a, b)
	}
}

func TestExtractKeepsOverlongIDsDistinct(t *testing.T) {
	a, _ := links.Extract("https://www.youtube.com/watch?v=AAAAAAAAAAAxyz")
	b, _ := links.Extract("https://www.youtube.com/watch?v=AAAAAAAAAAAqrs")
	if a == b {
		t.Fatalf("different links collapsed to %q", a)
	}
}

func TestVideoID(t *testing.T) {
	id, ok := links.VideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10")
	if !ok || id != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected id %q ok=%v", id, ok)
	}
	if _, ok := links.VideoID("https://youtu.be/short"); ok {
		t.Fatal("expected ids shorter than 11 characters to be rejected")
	}
	if _, ok := links.VideoID("https://youtu.be/dQw4w9WgXcQxyz"); ok {
		t.Fatal("expected ids longer than 11 characters to be rejected")
	}
	if id, ok := links.VideoID("https://youtu.be/dQw4w9WgXcQ?t=42"); !ok || id != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected id %q ok=%v for short link with query", id, ok)
	}
}

func TestNormalizeTeam(t *testing.T) {
	tests := map[string]string{
		"  Equipo-Rojo ": "equipo-rojo",
		"ＥＱＵＩＰＯ":         "equipo",
		"Cafe\u0301":      "caf\u00e9",
		"":               "",
		"   ":            "",
	}
	for in, want := range tests {
		if got := links.NormalizeTeam(in); got != want {
			t.Fatalf("NormalizeTeam(%q) = %q, want %q", in, got, want)
		}
	}
}

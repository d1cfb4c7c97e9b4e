package links

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// linkPattern finds YouTube watch and short links in free text.
var linkPattern = regexp.MustCompile(`https?://(?:www\.)?youtube\.com/watch\?v=[\w-]+|https?://youtu\.be/[\w-]+`)

// videoIDPattern pulls the 11 character video identifier out of a link. An
// identifier running past 11 characters is not a video ID.
var videoIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/)([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`)

const watchPrefix = "https://www.youtube.com/watch?v="

// Extract returns the single YouTube link contained in text. Messages with no
// link or with more than one are rejected. Links whose video ID is
// recognizable are rewritten to the canonical watch URL so the same video
// submitted as a short link and as a watch link is one resource.
func Extract(text string) (string, bool) {
	matches := linkPattern.FindAllString(text, 2)
	if len(matches) != 1 {
		return "", false
	}
	return Canonical(matches[0]), true
}

// Canonical rewrites a YouTube link to https://www.youtube.com/watch?v=<id>.
// Links without a recognizable video ID are returned unchanged.
func Canonical(link string) string {
	id, ok := VideoID(link)
	if !ok {
		return link
	}
	return watchPrefix + id
}

// VideoID extracts the 11 character video ID from a YouTube link.
func VideoID(link string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(link)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// NormalizeTeam maps a team or channel name to the identifier used as a queue
// key: trimmed, NFC-composed, width-folded, and case-folded. Blank input stays
// blank.
func NormalizeTeam(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	t := transform.Chain(norm.NFC, width.Fold, cases.Fold())
	out, _, err := transform.String(t, name)
	if err != nil {
		return name
	}
	return strings.TrimSpace(out)
}

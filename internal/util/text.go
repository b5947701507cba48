// Helpers for the bits of text the platform hands back: titles with
// embedded highlight markup, creator names that need case-insensitive
// comparison, and the short-link form of video URLs.
package util

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var videoIDPattern = regexp.MustCompile(`(BV[0-9A-Za-z]{10})`)

// StripMarkup removes the <em class="keyword"> style markup that the
// search endpoint embeds in matched titles, returning plain text.
func StripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// NormalizeName folds a creator name into its canonical comparison form.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// VideoLink returns the short-link form for a video ID.
func VideoLink(videoID string) string {
	return "https://b23.tv/" + videoID
}

// ParseVideoID extracts a video ID from a link or bare identifier.
// Accepts b23.tv short links, full bilibili.com/video URLs and plain
// BV-prefixed IDs. Returns "" when nothing that looks like an ID is found.
func ParseVideoID(link string) string {
	return videoIDPattern.FindString(link)
}

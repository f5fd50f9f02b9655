package library

import (
	"context"
	"regexp"
	"strings"
)

var (
	punctuationRe   = regexp.MustCompile(`[^\w\s]`)
	multipleSpaceRe = regexp.MustCompile(`\s+`)
)

// normalize lowercases s, turns punctuation into spaces and collapses
// whitespace, so "AC/DC" and "ac dc" compare equal.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = punctuationRe.ReplaceAllString(s, " ")
	s = multipleSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Search returns songs whose title, artist or album contains every word
// of query, ignoring case and punctuation. An empty query matches nothing.
func (l *Library) Search(ctx context.Context, query string) ([]Song, error) {
	words := strings.Fields(normalize(query))
	if len(words) == 0 {
		return nil, nil
	}

	songs, err := l.All(ctx)
	if err != nil {
		return nil, err
	}

	var result []Song
	for _, s := range songs {
		if matchesAll(normalize(s.Title+" "+s.Artist+" "+s.Album), words) {
			result = append(result, s)
		}
	}
	return result, nil
}

func matchesAll(haystack string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

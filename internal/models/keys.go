package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// NormalizeText lowercases, trims, strips punctuation and collapses
// whitespace. It is the shared first step of every dedup key.
func NormalizeText(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = punctuationPattern.ReplaceAllString(normalized, "")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// ReleaseDedupKey identifies a streaming or theatrical release listing by
// normalized title, plus the year when the listing carries one.
func ReleaseDedupKey(title string, year int) string {
	key := NormalizeText(title)
	if year > 0 {
		key = fmt.Sprintf("%s|%d", key, year)
	}
	return key
}

// ScheduleDedupKey identifies a match by both teams, date and source feed.
func ScheduleDedupKey(team1, team2, matchDate, source string) string {
	return strings.Join([]string{
		NormalizeText(team1),
		NormalizeText(team2),
		strings.TrimSpace(matchDate),
		NormalizeText(source),
	}, "|")
}

// VideoDedupKey identifies a video exactly by its external URL within a
// category. No normalization beyond trimming: URLs are exact identities.
func VideoDedupKey(externalURL, category string) string {
	return strings.TrimSpace(externalURL) + "|" + NormalizeText(category)
}

// GroupTitleKey is the uniqueness key of a (category, title) group.
func GroupTitleKey(title string) string {
	return NormalizeText(title)
}

// Slugify builds a collision-free URL identifier from a title by appending
// a monotonic nanosecond disambiguator instead of retrying on conflict.
func Slugify(title string) string {
	slug := whitespacePattern.ReplaceAllString(NormalizeText(title), "-")
	if slug == "" {
		slug = "item"
	}
	return fmt.Sprintf("%s-%d", slug, time.Now().UnixNano())
}

// internal/text/clean.go
package text

import "regexp"

var (
	entityRe     = regexp.MustCompile(`&[a-z]+;`)
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Clean strips HTML entities and non-word characters and collapses whitespace.
// Leading/trailing space is left for the caller.
func Clean(s string) string {
	s = entityRe.ReplaceAllString(s, " ")
	s = nonWordRe.ReplaceAllString(s, " ")
	return whitespaceRe.ReplaceAllString(s, " ")
}

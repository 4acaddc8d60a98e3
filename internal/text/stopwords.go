package text

import (
	_ "embed"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

//go:embed english.txt
var englishList string

// Stopwords is a set of case-folded words.
type Stopwords map[string]struct{}

// NewStopwords builds a set from words, folding each one.
func NewStopwords(words ...string) Stopwords {
	caser := cases.Fold()
	set := make(Stopwords, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		set[caser.String(w)] = struct{}{}
	}
	return set
}

// Contains reports whether folded is in the set. The argument must
// already be case-folded.
func (s Stopwords) Contains(folded string) bool {
	_, ok := s[folded]
	return ok
}

var english = sync.OnceValue(func() Stopwords {
	return NewStopwords(strings.Split(englishList, "\n")...)
})

// English returns the standard English stopword list. The set is shared;
// callers must not modify it.
func English() Stopwords { return english() }

package text

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer reduces a word to its dictionary form. Implementations must be
// safe for concurrent use.
type Lemmatizer interface {
	Lemma(word string) string
}

//go:embed noun_exceptions.txt
var nounExceptionList string

// nounExceptions maps irregular plurals to their singular.
var nounExceptions = sync.OnceValue(func() map[string]string {
	m := make(map[string]string)
	for _, line := range strings.Split(nounExceptionList, "\n") {
		if form, base, ok := strings.Cut(strings.TrimSpace(line), " "); ok {
			m[form] = base
		}
	}
	return m
})

// nounSuffixes are the regular plural endings and their singular forms.
var nounSuffixes = []struct{ suffix, base string }{
	{"s", ""},
	{"ses", "s"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"men", "man"},
	{"ies", "y"},
}

// nounLemmatizer treats every word as a noun. Irregular plurals come from
// the exception list; a regular suffix rule applies only when dict agrees
// on the resulting form, and the shortest agreeing form wins. Words that no
// noun rule changes are returned as given, so verbs and adjectives such as
// "using" or "better" pass through.
type nounLemmatizer struct {
	dict Lemmatizer
}

// NewNounLemmatizer builds a noun lemmatizer that confirms suffix rules
// against dict.
func NewNounLemmatizer(dict Lemmatizer) Lemmatizer {
	return nounLemmatizer{dict: dict}
}

func (n nounLemmatizer) Lemma(word string) string {
	if base, ok := nounExceptions()[word]; ok {
		return base
	}
	known := n.dict.Lemma(word)
	best := word
	for _, r := range nounSuffixes {
		stem, ok := strings.CutSuffix(word, r.suffix)
		if !ok || stem == "" {
			continue
		}
		if cand := stem + r.base; cand == known && len(cand) < len(best) {
			best = cand
		}
	}
	return best
}

// NewEnglishLemmatizer loads the English lemma dictionary behind a noun
// lemmatizer. Loading takes a moment and a few MB of memory, so do it once
// per process.
func NewEnglishLemmatizer() (Lemmatizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return NewNounLemmatizer(l), nil
}

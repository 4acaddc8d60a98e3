package text

import (
	"strings"

	"golang.org/x/text/cases"
)

// Resources bundles the read-only language data used by the token filter.
// A Resources value is never mutated after construction and can be shared
// by any number of goroutines.
type Resources struct {
	stopwords  Stopwords
	lemmatizer Lemmatizer
}

// NewResources wires an explicit stopword set and lemmatizer. A nil
// lemmatizer disables lemmatization regardless of the per-call flag.
func NewResources(stopwords Stopwords, lemmatizer Lemmatizer) *Resources {
	if stopwords == nil {
		stopwords = Stopwords{}
	}
	return &Resources{stopwords: stopwords, lemmatizer: lemmatizer}
}

// LoadResources returns the English stopword list and lemmatizer.
func LoadResources() (*Resources, error) {
	l, err := NewEnglishLemmatizer()
	if err != nil {
		return nil, err
	}
	return NewResources(English(), l), nil
}

// IsStopword reports whether the case-folded token is a stopword.
func (r *Resources) IsStopword(token string) bool {
	return r.stopwords.Contains(cases.Fold().String(token))
}

// Filter drops stopwords and, when lemmatize is set, replaces each remaining
// token with its lemma. Input order is preserved.
func (r *Resources) Filter(tokens []string, lemmatize bool) []string {
	caser := cases.Fold()
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if r.stopwords.Contains(caser.String(tok)) {
			continue
		}
		if lemmatize && r.lemmatizer != nil {
			tok = r.lemma(tok)
		}
		out = append(out, tok)
	}
	return out
}

// lemma keeps the original casing when the dictionary form only differs by case.
func (r *Resources) lemma(tok string) string {
	l := r.lemmatizer.Lemma(tok)
	if l == "" || strings.EqualFold(l, tok) {
		return tok
	}
	return l
}

// TokenizeAndFilter tokenizes s and filters the tokens.
func (r *Resources) TokenizeAndFilter(s string, lemmatize bool) []string {
	return r.Filter(Tokenize(s), lemmatize)
}

package text

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// clitics split off the end of a word, longest first.
var clitics = []string{"n't", "'ll", "'re", "'ve", "'s", "'m", "'d"}

// fused are whole words written as one but tokenized as two, keyed by their
// lowercase form with the byte offset of the split.
var fused = map[string]int{
	"cannot": 3,
	"d'ye":   1,
	"gimme":  3,
	"gonna":  3,
	"gotta":  3,
	"lemme":  3,
	"more'n": 4,
	"wanna":  3,
}

// Tokenize splits s on Unicode word boundaries. Whitespace is dropped,
// punctuation is kept as separate tokens and English contractions are
// split the Treebank way ("don't" -> "do", "n't"; "cannot" -> "can", "not";
// "'tis" -> "'t", "is").
func Tokenize(s string) []string {
	var segs []string
	segments := words.FromString(s)
	for segments.Next() {
		segs = append(segs, segments.Value())
	}

	var tokens []string
	for i := 0; i < len(segs); i++ {
		seg := segs[i]
		if strings.TrimFunc(seg, unicode.IsSpace) == "" {
			continue
		}
		// a leading apostrophe is its own segment: "'" "tis"
		if isApostrophe(seg) && i+1 < len(segs) && archaicT(segs[i+1]) {
			next := segs[i+1]
			tokens = append(tokens, "'"+next[:1], next[1:])
			i++
			continue
		}
		tokens = append(tokens, splitWord(seg)...)
	}
	return tokens
}

func isApostrophe(seg string) bool {
	return seg == "'" || seg == "’"
}

// archaicT matches the remainder of 'tis and 'twas.
func archaicT(seg string) bool {
	return strings.EqualFold(seg, "tis") || strings.EqualFold(seg, "twas")
}

// splitWord normalizes typographic apostrophes before splitting.
func splitWord(word string) []string {
	norm := strings.ReplaceAll(word, "’", "'")
	if cut, ok := fused[strings.ToLower(norm)]; ok {
		return []string{norm[:cut], norm[cut:]}
	}
	for _, c := range clitics {
		cut := len(norm) - len(c)
		if cut > 0 && strings.EqualFold(norm[cut:], c) {
			return []string{norm[:cut], norm[cut:]}
		}
	}
	return []string{word}
}

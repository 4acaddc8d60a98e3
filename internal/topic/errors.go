package topic

import "errors"

// Vectorization failures.
var (
	// ErrEmptyTokens is returned when there is nothing to vectorize.
	ErrEmptyTokens = errors.New("empty token stream")
	// ErrEmptyVocabulary is returned when no term survives analysis and pruning.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
)

// Model fit failures.
var (
	ErrInvalidTopics = errors.New("number of topics and keywords must be positive")
	ErrTooManyTopics = errors.New("more topics than vocabulary terms")
	ErrNotConverged  = errors.New("model did not converge")
)

// IsVectorization reports whether err came from Vectorize.
func IsVectorization(err error) bool {
	return errors.Is(err, ErrEmptyTokens) || errors.Is(err, ErrEmptyVocabulary)
}

package sentiment

import "errors"

// error kinds returned by model loading, match with errors.Is
var (
	ErrFetch                 = errors.New("fetch failed")
	ErrDecompression         = errors.New("decompression failed")
	ErrModelParse            = errors.New("can't parse model")
	ErrDegenerateProbability = errors.New("degenerate probability")
	ErrVocabularyMismatch    = errors.New("vocabulary mismatch")
)

// Package lib provides sentiment scoring of short texts with a pretrained naive bayes model.
// The implementation lives in lib/sentiment, the primary type is sentiment.Classifier.
//
// A Classifier is made from two conditional probability tables, negative and positive,
// mapping a keyword to the probability of its presence in a text of the class. Usually the
// tables come from a serialized model loaded with one of:
//
//   - sentiment.Loader: fetches compressed model bytes with the user-provided sentiment.Fetcher,
//     decompresses them with sentiment.Decompressor (gzip by default) and parses the result.
//     Fetch and decompression honor context cancellation.
//
//   - sentiment.ParseModel: parses already retrieved compressed bytes.
//
//   - sentiment.DecodeModel: parses decompressed bytes, i.e. the 42-byte reserved header followed
//     by the json document {"Conditional": {"1": negative, "2": positive}} in ISO-8859-1.
//
// sentiment.WriteModel produces a model in the same format from two tables.
//
// Classifier.Classify returns log-odds of the text being positive vs negative, the sign of the
// score is the polarity, sentiment.PolarityOf maps the score to a polarity with a neutral band.
// Texts are turned into keywords with sentiment.Keywords: lowercase, @mentions become USERNAME,
// links become URL, letters repeated more than twice are collapsed and punctuation is split off.
//
// The Classifier is immutable and safe for concurrent use. All load and validation failures are
// reported with sentinel errors (sentiment.ErrFetch, sentiment.ErrDecompression, sentiment.ErrModelParse,
// sentiment.ErrDegenerateProbability and sentiment.ErrVocabularyMismatch) to be checked with errors.Is.
//
// Labeled corpora in sentiment140 csv format can be read with sentiment.ReadSamples and used to
// measure the accuracy of a model with sentiment.Evaluate.
package lib

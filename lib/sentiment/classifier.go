package sentiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Table maps a keyword to the probability of its presence in a sample of a given class
type Table map[string]float64

// Polarity is a class of the sample derived from the score
type Polarity string

// enum of polarities
const (
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
	Positive Polarity = "positive"
)

// Classifier is a pretrained Bernoulli naive bayes classifier with two classes.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	negative Table
	positive Table
}

// Contribution is a weight of a single matched keyword, positive favors the positive class
type Contribution struct {
	Keyword string  `json:"keyword"`
	Weight  float64 `json:"weight"`
}

// NewClassifier makes a classifier from negative and positive conditional tables.
// Both tables must share the same keywords and every probability must be in (0,1).
// The tables are copied, callers can reuse them.
func NewClassifier(negative, positive Table) (*Classifier, error) {
	errs := new(multierror.Error)
	for kw := range negative {
		if _, ok := positive[kw]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q missing in positive table", ErrVocabularyMismatch, kw))
		}
	}
	for kw := range positive {
		if _, ok := negative[kw]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q missing in negative table", ErrVocabularyMismatch, kw))
		}
	}
	for name, tbl := range map[string]Table{"negative": negative, "positive": positive} {
		for kw, p := range tbl {
			if math.IsNaN(p) || p <= 0 || p >= 1 {
				errs = multierror.Append(errs, fmt.Errorf("%w: %s[%q]=%v", ErrDegenerateProbability, name, kw, p))
			}
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &Classifier{negative: copyTable(negative), positive: copyTable(positive)}, nil
}

// Classify returns log-odds of the text being positive vs negative.
// Positive score favors the positive class, negative score the negative one, zero is neutral.
func (c *Classifier) Classify(text string) float64 {
	keywords := KeywordSet(text)
	var logNeg, logPos float64
	// vocabulary of the negative table drives the iteration, keywords unknown to the model are ignored
	for kw, neg := range c.negative {
		pos := c.positive[kw]
		if _, ok := keywords[kw]; ok {
			logNeg += math.Log(neg)
			logPos += math.Log(pos)
			continue
		}
		logNeg += math.Log(1 - neg)
		logPos += math.Log(1 - pos)
	}
	return logPos - logNeg
}

// Explain returns weights of the vocabulary keywords present in the text, heaviest first
func (c *Classifier) Explain(text string) []Contribution {
	res := []Contribution{}
	for kw := range KeywordSet(text) {
		neg, ok := c.negative[kw]
		if !ok {
			continue
		}
		res = append(res, Contribution{Keyword: kw, Weight: math.Log(c.positive[kw]) - math.Log(neg)})
	}
	sort.Slice(res, func(i, j int) bool {
		if math.Abs(res[i].Weight) != math.Abs(res[j].Weight) {
			return math.Abs(res[i].Weight) > math.Abs(res[j].Weight)
		}
		return res[i].Keyword < res[j].Keyword
	})
	return res
}

// Vocabulary returns the number of keywords known to the classifier
func (c *Classifier) Vocabulary() int {
	return len(c.negative)
}

// Tables returns copies of negative and positive tables
func (c *Classifier) Tables() (negative, positive Table) {
	return copyTable(c.negative), copyTable(c.positive)
}

// PolarityOf maps score to polarity, scores within [-band, band] are neutral
func PolarityOf(score, band float64) Polarity {
	switch {
	case score > math.Abs(band):
		return Positive
	case score < -math.Abs(band):
		return Negative
	default:
		return Neutral
	}
}

func copyTable(t Table) Table {
	res := make(Table, len(t))
	for k, v := range t {
		res[k] = v
	}
	return res
}

package sentiment

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Sample is a labeled text used to evaluate a classifier
type Sample struct {
	Text     string
	Polarity Polarity
}

// EvalResult is a summary of classifier evaluation over samples
type EvalResult struct {
	Total     int
	Correct   int
	Confusion map[Polarity]map[Polarity]int // expected -> predicted -> count
}

// Accuracy returns share of correctly classified samples, 0 for empty result
func (r EvalResult) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

func (r EvalResult) String() string {
	return fmt.Sprintf("%d/%d (%.2f%%)", r.Correct, r.Total, r.Accuracy()*100)
}

// ReadSamples reads labeled samples from csv in sentiment140 format:
// "0"/"2"/"4" (negative/neutral/positive), four ignored fields and the text.
func ReadSamples(r io.Reader) ([]Sample, error) {
	source := csv.NewReader(r)
	first, err := source.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't read samples: %w", err)
	}
	if len(first) != 6 {
		return nil, fmt.Errorf("unknown data format, %d fields", len(first))
	}
	if _, err = polarityOfLabel(first[0]); err != nil {
		return nil, fmt.Errorf("unknown data format: %w", err)
	}

	records, err := source.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("can't read samples: %w", err)
	}
	records = append([][]string{first}, records...)
	res := make([]Sample, 0, len(records))
	for i, rec := range records {
		p, err := polarityOfLabel(rec[0])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		res = append(res, Sample{Text: rec[len(rec)-1], Polarity: p})
	}
	return res, nil
}

func polarityOfLabel(label string) (Polarity, error) {
	switch label {
	case "0":
		return Negative, nil
	case "2":
		return Neutral, nil
	case "4":
		return Positive, nil
	}
	return "", fmt.Errorf("invalid sentiment %q", label)
}

// Evaluate classifies samples concurrently and compares polarity of each score with the label.
// band is the neutral band passed to PolarityOf.
func Evaluate(ctx context.Context, c *Classifier, samples []Sample, band float64) (EvalResult, error) {
	res := EvalResult{Confusion: map[Polarity]map[Polarity]int{}}
	var mu sync.Mutex

	ch := make(chan Sample)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ch)
		for _, s := range samples {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ch <- s:
			}
		}
		return nil
	})

	for range runtime.GOMAXPROCS(0) {
		g.Go(func() error {
			local := EvalResult{Confusion: map[Polarity]map[Polarity]int{}}
			for s := range ch {
				local.add(s.Polarity, PolarityOf(c.Classify(s.Text), band))
			}
			mu.Lock()
			res.merge(local)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return EvalResult{}, err
	}
	return res, nil
}

func (r *EvalResult) add(expected, predicted Polarity) {
	r.Total++
	if expected == predicted {
		r.Correct++
	}
	if r.Confusion[expected] == nil {
		r.Confusion[expected] = map[Polarity]int{}
	}
	r.Confusion[expected][predicted]++
}

func (r *EvalResult) merge(other EvalResult) {
	r.Total += other.Total
	r.Correct += other.Correct
	for exp, preds := range other.Confusion {
		if r.Confusion[exp] == nil {
			r.Confusion[exp] = map[Polarity]int{}
		}
		for pred, n := range preds {
			r.Confusion[exp][pred] += n
		}
	}
}

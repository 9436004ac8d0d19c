package model

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/umputun/sentibayes/lib/sentiment"
)

// ErrNotLoaded returned by Holder when no model was loaded yet
var ErrNotLoaded = errors.New("model not loaded")

// Holder keeps the current classifier and replaces it on Reload. Thread-safe.
// A failed reload keeps the previous classifier. Reloads run one at a time,
// the last started reload wins.
type Holder struct {
	loader sentiment.Loader
	source string

	reloadLock sync.Mutex
	lock       sync.RWMutex
	classifier *sentiment.Classifier
	loaded     time.Time
}

// Info describes the loaded model
type Info struct {
	Vocabulary int       `json:"vocabulary"`
	Source     string    `json:"source"`
	Loaded     time.Time `json:"loaded"`
}

// NewHolder makes a Holder for the loader. Source is a description of where the model comes from,
// used for logging and Info only. Nothing is loaded until Reload is called.
func NewHolder(loader sentiment.Loader, source string) *Holder {
	return &Holder{loader: loader, source: source}
}

// Reload loads the model and replaces the current classifier
func (h *Holder) Reload(ctx context.Context) error {
	h.reloadLock.Lock()
	defer h.reloadLock.Unlock()

	st := time.Now()
	c, err := h.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load model from %s: %w", h.source, err)
	}

	h.lock.Lock()
	h.classifier = c
	h.loaded = time.Now()
	h.lock.Unlock()
	log.Printf("[INFO] model loaded from %s, %d keywords, in %v", h.source, c.Vocabulary(), time.Since(st).Round(time.Millisecond))
	return nil
}

// Current returns the current classifier with its info, both from the same load
func (h *Holder) Current() (*sentiment.Classifier, Info, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if h.classifier == nil {
		return nil, Info{Source: h.source}, ErrNotLoaded
	}
	return h.classifier, h.info(), nil
}

// Info returns description of the current model
func (h *Holder) Info() (Info, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if h.classifier == nil {
		return Info{Source: h.source}, ErrNotLoaded
	}
	return h.info(), nil
}

// info makes Info of the loaded classifier, lock must be held
func (h *Holder) info() Info {
	return Info{Vocabulary: h.classifier.Vocabulary(), Source: h.source, Loaded: h.loaded}
}

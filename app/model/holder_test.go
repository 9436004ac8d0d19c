package model

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/sentibayes/lib/sentiment"
)

func TestHolder(t *testing.T) {
	data := makeModel(t)
	fail := false
	loader := sentiment.Loader{Fetcher: sentiment.FetcherFunc(func(context.Context) ([]byte, error) {
		if fail {
			return nil, errors.New("source unavailable")
		}
		return data, nil
	})}
	h := NewHolder(loader, "test-source")

	t.Run("not loaded", func(t *testing.T) {
		c, info, err := h.Current()
		assert.ErrorIs(t, err, ErrNotLoaded)
		assert.Nil(t, c)
		assert.Equal(t, Info{Source: "test-source"}, info)
		info, err = h.Info()
		assert.ErrorIs(t, err, ErrNotLoaded)
		assert.Equal(t, Info{Source: "test-source"}, info)
	})

	t.Run("loaded", func(t *testing.T) {
		st := time.Now()
		require.NoError(t, h.Reload(context.Background()))
		c, current, err := h.Current()
		require.NoError(t, err)
		assert.Greater(t, c.Classify("love"), 0.0)

		info, err := h.Info()
		require.NoError(t, err)
		assert.Equal(t, info, current)
		assert.Equal(t, 2, info.Vocabulary)
		assert.Equal(t, "test-source", info.Source)
		assert.False(t, info.Loaded.Before(st))
	})

	t.Run("failed reload keeps previous model", func(t *testing.T) {
		prev, _, err := h.Current()
		require.NoError(t, err)
		fail = true
		defer func() { fail = false }()

		err = h.Reload(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, sentiment.ErrFetch)
		assert.Contains(t, err.Error(), "test-source")

		c, _, err := h.Current()
		require.NoError(t, err)
		assert.Same(t, prev, c)
	})

	t.Run("reload replaces model", func(t *testing.T) {
		prev, _, err := h.Current()
		require.NoError(t, err)
		require.NoError(t, h.Reload(context.Background()))
		c, _, err := h.Current()
		require.NoError(t, err)
		assert.NotSame(t, prev, c)
	})
}

func TestHolder_Concurrent(t *testing.T) {
	data := makeModel(t)
	h := NewHolder(sentiment.Loader{Fetcher: sentiment.FetcherFunc(func(context.Context) ([]byte, error) {
		return data, nil
	})}, "concurrent")
	require.NoError(t, h.Reload(context.Background()))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%5 == 0 {
				assert.NoError(t, h.Reload(context.Background()))
				return
			}
			c, _, err := h.Current()
			if assert.NoError(t, err) {
				assert.Less(t, c.Classify("I hate it"), 0.0)
			}
		}()
	}
	wg.Wait()
}

func TestHolder_ReloadOrder(t *testing.T) {
	older := makeModel(t)
	buf := bytes.Buffer{}
	require.NoError(t, sentiment.WriteModel(&buf, sentiment.Table{"love": 0.75, "hate": 0.25}, sentiment.Table{"love": 0.25, "hate": 0.75}))
	newer := buf.Bytes()

	started, release := make(chan struct{}), make(chan struct{})
	var calls atomic.Int32
	h := NewHolder(sentiment.Loader{Fetcher: sentiment.FetcherFunc(func(context.Context) ([]byte, error) {
		if calls.Add(1) == 1 { // first reload is slow and fetches the older model
			close(started)
			<-release
			return older, nil
		}
		return newer, nil
	})}, "ordered")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, h.Reload(context.Background()))
	}()
	<-started
	go func() {
		defer wg.Done()
		assert.NoError(t, h.Reload(context.Background()))
	}()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "second reload waits for the first one")
	close(release)
	wg.Wait()

	c, info, err := h.Current()
	require.NoError(t, err)
	assert.Less(t, c.Classify("love"), 0.0, "model of the last started reload")
	assert.Equal(t, 2, info.Vocabulary)
}

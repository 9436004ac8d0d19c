package model

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/sentibayes/lib/sentiment"
)

func TestWatch(t *testing.T) {
	file := filepath.Join(t.TempDir(), "model.gz")
	require.NoError(t, os.WriteFile(file, []byte("initial"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	onChange := func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	time.AfterFunc(100*time.Millisecond, func() {
		// a burst of writes, reported once after the delay
		for range 3 {
			fh, err := os.OpenFile(file, os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return
			}
			_, _ = fh.WriteString("more data")
			_ = fh.Close()
		}
		time.Sleep(300 * time.Millisecond)
		cancel()
	})

	err := Watch(ctx, 50*time.Millisecond, onChange, file)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWatch_ReplacedFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "model.gz")
	require.NoError(t, os.WriteFile(file, []byte("initial"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, Watch(ctx, 10*time.Millisecond, func() error { atomic.AddInt32(&calls, 1); return nil }, file))
	}()
	time.Sleep(100 * time.Millisecond)

	// atomic replace, as model export does
	tmp := filepath.Join(dir, "model.gz.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("replaced"), 0o600))
	require.NoError(t, os.Rename(tmp, file))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, time.Second, 10*time.Millisecond)

	// still watched after replace
	before := atomic.LoadInt32(&calls)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("updated"), 0o600))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) > before }, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(context.Background(), time.Millisecond, func() error { return nil },
		filepath.Join(t.TempDir(), "missing1.gz"), filepath.Join(t.TempDir(), "missing2.gz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add some files to watcher")
	assert.Contains(t, err.Error(), "missing1.gz")
	assert.Contains(t, err.Error(), "missing2.gz")
}

func TestWatch_ReloadHolder(t *testing.T) {
	file := filepath.Join(t.TempDir(), "model.gz")
	require.NoError(t, os.WriteFile(file, makeModel(t), 0o600))

	h := NewHolder(sentiment.Loader{Fetcher: FileFetcher{Path: file}}, file)
	require.NoError(t, h.Reload(context.Background()))
	before, err := h.Info()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, Watch(ctx, 10*time.Millisecond, func() error { return h.Reload(ctx) }, file))
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, makeModel(t), 0o600))
	assert.Eventually(t, func() bool {
		info, err := h.Info()
		return err == nil && info.Loaded.After(before.Loaded)
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

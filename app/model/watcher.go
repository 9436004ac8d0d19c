package model

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
)

// Watch watches files for changes and calls onChange after a quiet period of delay,
// a burst of writes results in a single call. Blocks until ctx is done.
// Failed onChange is logged, watching continues.
func Watch(ctx context.Context, delay time.Duration, onChange func() error, files ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	errs := new(multierror.Error)
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to stat file %q: %w", file, err))
			continue
		}
		log.Printf("[DEBUG] add file %q to watcher", file)
		if err := watcher.Add(file); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to watch file %q: %w", file, err))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("failed to add some files to watcher: %w", err)
	}

	reloadTimer := time.NewTimer(delay)
	reloadTimer.Stop()
	defer reloadTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[INFO] stopping watcher for %v, %v", files, ctx.Err())
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				// file replaced by rename drops the watch, re-add the new file at the same path
				if err := watcher.Add(event.Name); err != nil {
					log.Printf("[WARN] file %q removed, can't watch it anymore: %v", event.Name, err)
					continue
				}
				log.Printf("[DEBUG] file %q replaced, op: %v", event.Name, event.Op)
				reloadTimer.Reset(delay)
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Printf("[DEBUG] file %q updated, op: %v", event.Name, event.Op)
			reloadTimer.Reset(delay)
		case <-reloadTimer.C:
			if err := onChange(); err != nil {
				log.Printf("[WARN] failed to reload on file change: %v", err)
			}
		case e, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[WARN] watcher error: %v", e)
		}
	}
}

package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
	"github.com/nguyentantai21042004/transcribe-flow/internal/metrics"
	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
)

type implWatcher struct {
	inputDir      string
	extensions    map[string]struct{}
	settleDelay   time.Duration
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	lock          *flock.Flock
	maxConcurrent int
	slots         *semaphore.Weighted
	jobs          errgroup.Group
	ignore        func(path string) bool

	mu sync.Mutex
	// active holds dir+stem of running jobs. A collaborator writes its
	// intermediate under the source's stem, so a new file with the same
	// key belongs to that job.
	active map[string]struct{}
}

// Start runs one independent job per new media file until ctx is done.
// Jobs share nothing but the output folder.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(w.supported(), ", "))

	for {
		select {
		case <-ctx.Done():
			return w.drain(ctx)

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// Only process CREATE events
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !w.isMediaFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-media file: %s", event.Name)
				continue
			}

			if w.ignore != nil && w.ignore(event.Name) {
				w.logger.Debug(ctx, "Ignoring pipeline output: %s", event.Name)
				continue
			}
			key := jobKey(event.Name)
			if !w.claim(key) {
				w.logger.Debug(ctx, "Ignoring intermediate of a running job: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New media file detected: %s", event.Name)

			// Blocks while max concurrent jobs are running
			if err := w.slots.Acquire(ctx, 1); err != nil {
				w.release(key)
				return w.drain(ctx)
			}
			filePath := event.Name
			w.jobs.Go(func() error {
				defer w.release(key)
				defer w.slots.Release(1)
				metrics.JobsInFlight.Inc()
				defer metrics.JobsInFlight.Dec()

				if err := w.settle(ctx, filePath); err != nil {
					w.logger.Warn(ctx, "Skipping %s: %v", filePath, err)
					return nil
				}
				if err := w.handler(ctx, filePath); err != nil {
					w.logger.Warn(ctx, "Job for %s failed: %v", filePath, err)
				}
				return nil
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) drain(ctx context.Context) error {
	w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
	_ = w.jobs.Wait()
	w.logger.Info(ctx, "File watcher stopped")
	return ctx.Err()
}

// Stop closes the file watcher and releases the folder lock
func (w *implWatcher) Stop() error {
	err := w.watcher.Close()
	return errors.Join(err, w.lock.Unlock())
}

// settle waits until the file size stops changing across one settle
// interval, so copies still in progress are not picked up half-written.
func (w *implWatcher) settle(ctx context.Context, path string) error {
	if w.settleDelay <= 0 {
		return nil
	}
	last := int64(-1)
	timer := time.NewTimer(w.settleDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("file disappeared: %w", err)
		}
		if info.Size() == last {
			return nil
		}
		last = info.Size()
		timer.Reset(w.settleDelay)
	}
}

func jobKey(path string) string {
	return filepath.Join(filepath.Dir(path), naming.Stem(path))
}

// claim marks key as running. It fails if a job with key already runs.
func (w *implWatcher) claim(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.active[key]; ok {
		return false
	}
	w.active[key] = struct{}{}
	return true
}

func (w *implWatcher) release(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.active, key)
}

// isMediaFile checks if the file has a supported media extension
func (w *implWatcher) isMediaFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (w *implWatcher) supported() []string {
	out := make([]string, 0, len(w.extensions))
	for ext := range w.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

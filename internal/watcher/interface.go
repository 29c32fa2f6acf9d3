package watcher

import "context"

// Watcher turns new media files in a folder into pipeline jobs.
type Watcher interface {
	// Start blocks until ctx is done, then waits for running jobs.
	Start(ctx context.Context) error
	// Stop releases the fsnotify handle and the folder lock.
	Stop() error
}

// EventHandler runs one job for a settled media file. A returned error is
// logged and does not stop the watcher.
type EventHandler func(ctx context.Context, inputPath string) error

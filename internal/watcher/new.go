package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"golang.org/x/sync/semaphore"

	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
)

// LockName is the single-instance lock file created in the watched folder.
const LockName = ".transcribe-flow.lock"

// Config controls which files start a job and how many run at once.
type Config struct {
	InputDir      string
	Extensions    []string
	SettleDelay   time.Duration
	MaxConcurrent int
	// Ignore reports files the pipeline itself writes. Such files never
	// start a job, which matters when outputs land in InputDir.
	Ignore func(path string) bool
}

// ErrAlreadyWatched is returned when another watcher holds the folder lock.
var ErrAlreadyWatched = errors.New("folder is already watched by another instance")

// New creates a new Watcher instance with concurrency control
func New(cfg Config, handler EventHandler, log logger.Logger) (Watcher, error) {
	lock := flock.New(filepath.Join(cfg.InputDir, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire watch lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", cfg.InputDir, ErrAlreadyWatched)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(cfg.InputDir); err != nil {
		watcher.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	// Default to 2 concurrent if not specified
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}

	extensions := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	return &implWatcher{
		inputDir:      cfg.InputDir,
		extensions:    extensions,
		settleDelay:   cfg.SettleDelay,
		handler:       handler,
		logger:        log,
		watcher:       watcher,
		lock:          lock,
		maxConcurrent: cfg.MaxConcurrent,
		slots:         semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		ignore:        cfg.Ignore,
		active:        make(map[string]struct{}),
	}, nil
}

package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
)

func testConfig(dir string) Config {
	return Config{
		InputDir:      dir,
		Extensions:    []string{".mp4", ".m4a"},
		SettleDelay:   10 * time.Millisecond,
		MaxConcurrent: 1,
	}
}

func TestWatcherDispatchesMediaFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	seen := make(chan string, 4)
	handler := func(ctx context.Context, path string) error {
		seen <- filepath.Base(path)
		return nil
	}

	w, err := New(testConfig(dir), handler, logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.mp4"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Team Standup.MP4"), []byte("video"), 0644))

	select {
	case name := <-seen:
		assert.Equal(t, "Team Standup.MP4", name)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called for the media file")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
	require.NoError(t, w.Stop())

	assert.Empty(t, seen)
}

func TestWatcherHandlerErrorDoesNotStopLoop(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	var calls []string
	handler := func(ctx context.Context, path string) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, filepath.Base(path))
		return errors.New("stage failed")
	}

	w, err := New(testConfig(dir), handler, logger.Discard())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp4"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.m4a"), []byte("b"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherSingleInstance(t *testing.T) {
	dir := t.TempDir()
	noop := func(ctx context.Context, path string) error { return nil }

	first, err := New(testConfig(dir), noop, logger.Discard())
	require.NoError(t, err)

	_, err = New(testConfig(dir), noop, logger.Discard())
	assert.ErrorIs(t, err, ErrAlreadyWatched)

	require.NoError(t, first.Stop())

	again, err := New(testConfig(dir), noop, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, again.Stop())
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := New(testConfig(filepath.Join(t.TempDir(), "missing")), nil, logger.Discard())
	assert.Error(t, err)
}

func TestIsMediaFile(t *testing.T) {
	w := &implWatcher{extensions: map[string]struct{}{".mp4": {}, ".mov": {}}}

	tests := []struct {
		path string
		want bool
	}{
		{"/in/a.mp4", true},
		{"/in/A.MOV", true},
		{"/in/a.txt", false},
		{"/in/.a.mp4", false},
		{"/in/noext", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.isMediaFile(tt.path), tt.path)
	}
}

package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

type implExecutor struct {
	searchPaths []string
}

// Option configures an Executor.
type Option func(*implExecutor)

// WithSearchPaths puts dirs ahead of PATH, both for resolving commands and
// for the environment of the child process. Tools such as whisper invoke
// ffmpeg themselves, so the child needs the same view.
func WithSearchPaths(dirs ...string) Option {
	return func(e *implExecutor) {
		for _, dir := range dirs {
			if dir = strings.TrimSpace(dir); dir != "" {
				e.searchPaths = append(e.searchPaths, dir)
			}
		}
	}
}

// New creates a new Executor instance
func New(opts ...Option) Executor {
	e := &implExecutor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return e.run(ctx, "", name, args...)
}

// ExecuteInDir runs an external command in a specific working directory
func (e *implExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	return e.run(ctx, dir, name, args...)
}

func (e *implExecutor) run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	path, err := e.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("command '%s' not found: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	if len(e.searchPaths) > 0 {
		cmd.Env = e.environ()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Include stderr in error message for debugging
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
		}
		return "", fmt.Errorf("command '%s' failed: %w", name, err)
	}

	return stdout.String(), nil
}

// LookPath resolves name against the search paths first, then PATH.
// Names containing a path separator are returned unchanged.
func (e *implExecutor) LookPath(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		return name, nil
	}
	for _, dir := range e.searchPaths {
		candidate := filepath.Join(dir, name)
		if runtime.GOOS == "windows" && filepath.Ext(candidate) == "" {
			candidate += ".exe"
		}
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, nil
		}
	}
	return exec.LookPath(name)
}

func (e *implExecutor) environ() []string {
	env := os.Environ()
	current := os.Getenv("PATH")
	parts := append([]string{}, e.searchPaths...)
	if current != "" {
		parts = append(parts, current)
	}
	joined := "PATH=" + strings.Join(parts, string(os.PathListSeparator))

	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = joined
			return env
		}
	}
	return append(env, joined)
}

func isExecutable(info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

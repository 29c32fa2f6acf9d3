package summarizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
)

type call struct {
	key   string
	model string
}

func newTest(t *testing.T, keys []string, opts Options, gen generateFunc) *implSummarizer {
	t.Helper()
	s, err := New(keys, opts, logger.Discard())
	require.NoError(t, err)
	impl := s.(*implSummarizer)
	impl.generate = gen
	impl.now = func() time.Time { return time.Date(2025, 11, 23, 15, 0, 0, 0, time.Local) }
	return impl
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestNewRequiresKeys(t *testing.T) {
	_, err := New(nil, Options{}, logger.Discard())
	assert.ErrorIs(t, err, ErrNoAPIKeys)
}

func TestSummarizeAll(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "summaries")
	writeFile(t, src, "2025-11-23-14-30-Standup-en.txt", "we agreed to ship")
	writeFile(t, src, "2025-11-23-14-30-Standup-he.txt", "hebrew text")
	writeFile(t, src, "unified_transcript_asc_20251123_150000.txt", "unified")
	writeFile(t, src, "empty-en.txt", "   \n")

	var calls []call
	s := newTest(t, []string{"k1"}, Options{Language: "en"}, func(_ context.Context, key, model, prompt string) (string, error) {
		calls = append(calls, call{key, model})
		assert.Contains(t, prompt, "we agreed to ship")
		return "## Overview\n\n- **Ship** it\n", nil
	})

	stats, err := s.SummarizeAll(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, Stats{Succeeded: 1, Skipped: 1}, stats)
	assert.Equal(t, []call{{"k1", DefaultModel}}, calls)

	md, err := os.ReadFile(filepath.Join(dest, "2025-11-23-14-30-Standup-en.md"))
	require.NoError(t, err)
	assert.Equal(t, "# 2025-11-23-14-30-Standup-en\n\n_2025-11-23 15:00_\n\n## Overview\n\n- **Ship** it\n", string(md))

	assert.FileExists(t, filepath.Join(src, "2025-11-23-14-30-Standup-en.txt"), "transcripts stay in place")
	assert.NoFileExists(t, filepath.Join(dest, "2025-11-23-14-30-Standup-he.md"))
}

func TestSummarizeAllSkipsExisting(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, src, "a-en.txt", "alpha")
	writeFile(t, src, "b-en.txt", "beta")
	writeFile(t, dest, "a-en.md", "kept")

	s := newTest(t, []string{"k1"}, Options{}, func(_ context.Context, _, _, prompt string) (string, error) {
		assert.NotContains(t, prompt, "alpha")
		return "summary", nil
	})

	stats, err := s.SummarizeAll(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, Stats{Succeeded: 1, Skipped: 1}, stats)

	kept, err := os.ReadFile(filepath.Join(dest, "a-en.md"))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(kept))
}

func TestSummarizeAllDocx(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, src, "a-en.txt", "alpha")

	s := newTest(t, []string{"k1"}, Options{Docx: true}, func(context.Context, string, string, string) (string, error) {
		return "# Title\n\ntext", nil
	})

	_, err := s.SummarizeAll(context.Background(), src, dest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "a-en.docx"))
}

func TestSummarizeAllCountsFailures(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, src, "a-en.txt", "alpha")

	s := newTest(t, []string{"k1"}, Options{}, func(context.Context, string, string, string) (string, error) {
		return "", errors.New("permission denied")
	})

	stats, err := s.SummarizeAll(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, Stats{Failed: 1}, stats)
	assert.NoFileExists(t, filepath.Join(dest, "a-en.md"))
}

func TestCallGeminiRotatesKeys(t *testing.T) {
	var used []string
	s := newTest(t, []string{"k1", "k2", "k3"}, Options{Model: "gemini-test"}, func(_ context.Context, key, model, _ string) (string, error) {
		used = append(used, key)
		assert.Equal(t, "gemini-test", model)
		if key != "k3" {
			return "", errors.New("Error 429, RESOURCE_EXHAUSTED")
		}
		return "ok", nil
	})

	text, err := s.callGemini(context.Background(), "transcript")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, []string{"k1", "k2", "k3"}, used)
	assert.Equal(t, 2, s.currentKey, "the working key stays selected")
}

func TestCallGeminiAllKeysExhausted(t *testing.T) {
	calls := 0
	s := newTest(t, []string{"k1", "k2"}, Options{}, func(context.Context, string, string, string) (string, error) {
		calls++
		return "", errors.New("quota exceeded")
	})

	_, err := s.callGemini(context.Background(), "transcript")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "all API keys exhausted"))
	assert.Equal(t, 2, calls)
}

func TestCallGeminiStopsOnOtherErrors(t *testing.T) {
	calls := 0
	s := newTest(t, []string{"k1", "k2"}, Options{}, func(context.Context, string, string, string) (string, error) {
		calls++
		return "", errors.New("invalid argument")
	})

	_, err := s.callGemini(context.Background(), "transcript")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

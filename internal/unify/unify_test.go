package unify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
)

var fixed = func() time.Time { return time.Date(2025, 11, 23, 14, 30, 5, 0, time.Local) }

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func setup(t *testing.T) string {
	dir := t.TempDir()
	write(t, dir, "2025-11-23-14-30-Standup.m4a", "audio")
	write(t, dir, "2025-11-23-14-30-Standup-en.txt", "standup en")
	write(t, dir, "2025-11-23-14-30-Standup-he.txt", "standup he")
	write(t, dir, "2025-11-24-09-00-Review-en.txt", "review en")
	write(t, dir, "unified_transcript_asc_20250101_000000.txt", "old")
	write(t, dir, "notes.md", "ignored")
	return dir
}

func TestUnifyAscending(t *testing.T) {
	dir := setup(t)

	res, err := Unify(context.Background(), dir, Options{Language: "en", Now: fixed}, logger.Discard())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "unified_transcript_asc_en_20251123_143005.txt"), res.Path)
	assert.Equal(t, 2, res.Parts)
	assert.Empty(t, res.DocxPath)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	banner := strings.Repeat("=", 60)
	want := "\n\n" + banner + "\nPART 1/2: 2025-11-23-14-30-Standup.m4a\n" + banner + "\n\nstandup en\n\n" +
		"\n\n" + banner + "\nPART 2/2: Unknown\n" + banner + "\n\nreview en\n\n"
	assert.Equal(t, want, string(data))
}

func TestUnifyDescendingAllLanguages(t *testing.T) {
	dir := setup(t)

	res, err := Unify(context.Background(), dir, Options{Order: "DESC", Now: fixed}, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Parts)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	text := string(data)
	review := strings.Index(text, "review en")
	he := strings.Index(text, "standup he")
	en := strings.Index(text, "standup en")
	assert.True(t, review < he && he < en, "descending order expected:\n%s", text)
	assert.NotContains(t, text, "old")
}

func TestUnifyDocx(t *testing.T) {
	dir := setup(t)

	res, err := Unify(context.Background(), dir, Options{Language: "he", Docx: true, Now: fixed}, logger.Discard())
	require.NoError(t, err)
	assert.FileExists(t, res.DocxPath)
	assert.Equal(t, ".docx", filepath.Ext(res.DocxPath))
}

func TestUnifyNothingToDo(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "unified_transcript_asc_20250101_000000.txt", "old")

	_, err := Unify(context.Background(), dir, Options{}, logger.Discard())
	assert.ErrorIs(t, err, ErrNoTranscripts)
}

func TestUnifyBadOrder(t *testing.T) {
	_, err := Unify(context.Background(), t.TempDir(), Options{Order: "random"}, logger.Discard())
	assert.Error(t, err)
}

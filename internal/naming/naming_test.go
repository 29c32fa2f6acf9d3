package naming

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces become hyphens", "Team Standup", "Team-Standup"},
		{"keeps allowed punctuation", "a.b_c-d", "a.b_c-d"},
		{"strips special characters", "Q&A (final)!", "QA-final"},
		{"strips unicode", "Café ישיבה", "Caf-"},
		{"all special", "!!!", ""},
		{"empty", "", ""},
		{"digits kept", "2025 plan v2", "2025-plan-v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"Team Standup",
		"  leading and trailing  ",
		"שלום world",
		"weird/\\:*?\"<>|name",
		"already-clean_name.v1",
		"tab\tand\nnewline",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
		for _, r := range once {
			allowed := r == '.' || r == '_' || r == '-' ||
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			assert.True(t, allowed, "unexpected rune %q in %q", r, once)
		}
	}
}

func TestBaseNameDeterministic(t *testing.T) {
	ts := time.Date(2025, 11, 23, 14, 30, 59, 0, time.Local)
	first := BaseName("Team Standup", ts)
	second := BaseName("Team Standup", ts)

	assert.Equal(t, "2025-11-23-14-30-Team-Standup", first)
	assert.Equal(t, first, second)
}

func TestLayoutPaths(t *testing.T) {
	ts := time.Date(2025, 11, 23, 14, 30, 0, 0, time.Local)
	dir := filepath.Join("data", "output")
	layout := Layout{OutputDir: dir, AudioFormat: "m4a", Languages: []string{"en", "he"}}

	p := layout.Paths(filepath.Join("data", "input", "Team Standup.mp4"), ts)

	assert.Equal(t, "2025-11-23-14-30-Team-Standup", p.Base)
	assert.Equal(t, filepath.Join(dir, "2025-11-23-14-30-Team-Standup.m4a"), p.Audio)
	require.Len(t, p.Transcripts, 2)
	assert.Equal(t, Transcript{Language: "en", Path: filepath.Join(dir, "2025-11-23-14-30-Team-Standup-en.txt")}, p.Transcripts[0])
	assert.Equal(t, Transcript{Language: "he", Path: filepath.Join(dir, "2025-11-23-14-30-Team-Standup-he.txt")}, p.Transcripts[1])
	assert.Equal(t, dir, p.Dir())
}

func TestLayoutPathsDefaultsToInputDir(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 0, 0, time.Local)
	layout := Layout{AudioFormat: ".mp3", Languages: []string{"en"}}

	p := layout.Paths(filepath.Join("in", "clip.mov"), ts)

	assert.Equal(t, filepath.Join("in", "2025-01-02-03-04-clip.mp3"), p.Audio)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2025-11-23-14-30")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-23-14-30", FormatTimestamp(ts))

	_, err = ParseTimestamp("2025/11/23 14:30")
	assert.Error(t, err)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "Team Standup", Stem("/a/b/Team Standup.mp4"))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
	assert.Equal(t, "noext", Stem("noext"))
}

func TestLayoutIsOutput(t *testing.T) {
	layout := Layout{AudioFormat: "m4a", Languages: []string{"en", "he"}}

	tests := []struct {
		path string
		want bool
	}{
		{"/in/2025-11-23-14-30-Team-Standup.m4a", true},
		{"/in/2025-11-23-14-30-2025-11-23-14-30-Team-Standup.M4A", true},
		{"/in/2025-11-23-14-30-Team-Standup-en.txt", true},
		{"/in/2025-11-23-14-30-Team-Standup.mp4", false},
		{"/in/Team Standup.m4a", false},
		{"/in/2025-13-40-99-99-bad.m4a", false},
		{"/in/2025-11-23-14-30.m4a", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, layout.IsOutput(tt.path), tt.path)
	}
}

package preflight

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/transcribe-flow/internal/config"
)

type fakeResolver map[string]string

func (f fakeResolver) LookPath(name string) (string, error) {
	if p, ok := f[name]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func TestCheck(t *testing.T) {
	r := fakeResolver{"ffmpeg": "/usr/bin/ffmpeg"}
	reqs := []Requirement{
		{Name: "FFmpeg", Command: " ffmpeg "},
		{Name: "Whisper", Command: "whisper"},
		{Name: "Blank", Command: ""},
	}

	results := Check(r, reqs)
	require.Len(t, results, 3)

	assert.True(t, results[0].Available)
	assert.Equal(t, "ffmpeg", results[0].Command)
	assert.Equal(t, "/usr/bin/ffmpeg", results[0].Path)
	assert.Empty(t, results[0].Detail)

	assert.False(t, results[1].Available)
	assert.Equal(t, `binary "whisper" not found`, results[1].Detail)

	assert.Equal(t, "command not configured", results[2].Detail)
}

func TestVerify(t *testing.T) {
	cfg := config.Default()
	reqs := Requirements(cfg)

	all := fakeResolver{"ffmpeg": "/bin/ffmpeg", "whisper": "/bin/whisper", "ffprobe": "/bin/ffprobe"}
	assert.NoError(t, Verify(Check(all, reqs)))

	noProbe := fakeResolver{"ffmpeg": "/bin/ffmpeg", "whisper": "/bin/whisper"}
	assert.NoError(t, Verify(Check(noProbe, reqs)), "ffprobe is optional")

	noWhisper := fakeResolver{"ffmpeg": "/bin/ffmpeg"}
	err := Verify(Check(noWhisper, reqs))
	assert.ErrorIs(t, err, ErrMissingRequired)
	assert.Contains(t, err.Error(), "whisper")
}

func TestRender(t *testing.T) {
	results := Check(fakeResolver{"ffmpeg": "/bin/ffmpeg"}, Requirements(config.Default()))

	var buf bytes.Buffer
	Render(&buf, results)
	out := buf.String()

	assert.Contains(t, out, "TOOL")
	assert.Contains(t, out, "/bin/ffmpeg")
	assert.Contains(t, out, "missing (optional)")
	assert.Contains(t, out, `binary "whisper" not found`)
}

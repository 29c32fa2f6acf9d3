package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is the minute-resolution prefix shared by a job's outputs.
const TimestampLayout = "2006-01-02-15-04"

// Transcript is the canonical location of one language's transcript.
type Transcript struct {
	Language string
	Path     string
}

// Paths holds every canonical output of a job. All paths are siblings
// derived from Base.
type Paths struct {
	Base        string
	Audio       string
	Transcripts []Transcript
}

// Layout describes where and in which format outputs are written.
type Layout struct {
	OutputDir   string
	AudioFormat string
	Languages   []string
}

// Sanitize turns spaces into hyphens and drops every character outside
// [A-Za-z0-9._-]. Applying it twice yields the same result.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Stem returns the filename of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FormatTimestamp renders ts with TimestampLayout.
func FormatTimestamp(ts time.Time) string {
	return ts.Format(TimestampLayout)
}

// ParseTimestamp parses a YYYY-MM-DD-HH-MM value in local time.
func ParseTimestamp(value string) (time.Time, error) {
	ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}

// BaseName prefixes the sanitized original name with the job timestamp.
func BaseName(originalName string, ts time.Time) string {
	return FormatTimestamp(ts) + "-" + Sanitize(originalName)
}

// Paths computes the canonical outputs for inputPath at ts. The base name
// is derived once and reused for every path.
func (l Layout) Paths(inputPath string, ts time.Time) Paths {
	dir := l.OutputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	base := BaseName(Stem(inputPath), ts)

	p := Paths{
		Base:        base,
		Audio:       filepath.Join(dir, base+"."+strings.TrimPrefix(l.AudioFormat, ".")),
		Transcripts: make([]Transcript, 0, len(l.Languages)),
	}
	for _, lang := range l.Languages {
		p.Transcripts = append(p.Transcripts, Transcript{
			Language: lang,
			Path:     TranscriptPath(dir, base, lang),
		})
	}
	return p
}

// TranscriptPath returns {dir}/{base}-{lang}.txt.
func TranscriptPath(dir, base, lang string) string {
	return filepath.Join(dir, base+"-"+lang+".txt")
}

// IsOutput reports whether path is named like one of the canonical outputs
// l produces: a timestamp-prefixed file in the audio format or a transcript.
func (l Layout) IsOutput(path string) bool {
	name := filepath.Base(path)
	if len(name) <= len(TimestampLayout)+1 || name[len(TimestampLayout)] != '-' {
		return false
	}
	if _, err := time.Parse(TimestampLayout, name[:len(TimestampLayout)]); err != nil {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return strings.EqualFold(ext, strings.TrimPrefix(l.AudioFormat, ".")) || strings.EqualFold(ext, "txt")
}

// Dir returns the shared output directory of p.
func (p Paths) Dir() string {
	return filepath.Dir(p.Audio)
}

// Package unify concatenates transcripts in a folder into one document,
// ordered by file name, each part framed by a banner naming its audio.
package unify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/nguyentantai21042004/transcribe-flow/internal/docx"
	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
)

// Prefix marks unified outputs, which are never picked up as input.
const Prefix = "unified_transcript"

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ErrNoTranscripts is returned when the folder has nothing to unify.
var ErrNoTranscripts = errors.New("no transcript files found")

var (
	audioExtensions = []string{".m4a", ".opus", ".mp3", ".wav"}
	reLangSuffix    = regexp.MustCompile(`-[a-z]{2,3}$`)
	banner          = strings.Repeat("=", 60)
)

// Options controls which transcripts are unified and how.
type Options struct {
	Order string
	// Language keeps only {base}-{lang}.txt transcripts when set.
	Language string
	Docx     bool
	Now      func() time.Time
}

// Result describes the written files.
type Result struct {
	Path     string
	DocxPath string
	Parts    int
}

type part struct {
	audio      string
	transcript string
}

// Unify writes {Prefix}_{order}[_{lang}]_{YYYYmmdd_HHMMSS}.txt into dir.
func Unify(ctx context.Context, dir string, opts Options, log logger.Logger) (*Result, error) {
	order := strings.ToLower(opts.Order)
	if order == "" {
		order = OrderAsc
	}
	if order != OrderAsc && order != OrderDesc {
		return nil, fmt.Errorf("unknown sort order %q", opts.Order)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	files, err := Discover(dir, opts.Language)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoTranscripts)
	}
	sort.Slice(files, func(i, j int) bool {
		if order == OrderDesc {
			return naming.Stem(files[i]) > naming.Stem(files[j])
		}
		return naming.Stem(files[i]) < naming.Stem(files[j])
	})
	log.Info(ctx, "Found %d transcript files (%s order)", len(files), order)

	parts := make([]part, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn(ctx, "Error reading %s: %v", path, err)
			continue
		}
		parts = append(parts, part{audio: audioFor(path), transcript: string(data)})
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoTranscripts)
	}

	name := Prefix + "_" + order
	if opts.Language != "" {
		name += "_" + opts.Language
	}
	name += "_" + now().Format("20060102_150405")

	content := render(parts)
	result := &Result{Path: filepath.Join(dir, name+".txt"), Parts: len(parts)}
	if err := renameio.WriteFile(result.Path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("write unified transcript: %w", err)
	}
	log.Info(ctx, "Unified transcript saved to: %s", result.Path)

	if opts.Docx {
		result.DocxPath = filepath.Join(dir, name+".docx")
		if err := docx.FromTranscript(name, content, result.DocxPath); err != nil {
			return result, fmt.Errorf("write unified docx: %w", err)
		}
		log.Info(ctx, "Unified docx saved to: %s", result.DocxPath)
	}
	return result, nil
}

// Discover lists transcript files in dir, skipping earlier unified
// outputs. With lang set only {base}-{lang}.txt files are returned.
func Discover(dir, lang string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, Prefix) {
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != ".txt" {
			continue
		}
		if lang != "" && !strings.HasSuffix(naming.Stem(name), "-"+lang) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// audioFor guesses the audio file a transcript came from, trying both the
// transcript stem and the stem without its language suffix.
func audioFor(transcriptPath string) string {
	dir := filepath.Dir(transcriptPath)
	stem := naming.Stem(transcriptPath)
	candidates := []string{stem}
	if trimmed := reLangSuffix.ReplaceAllString(stem, ""); trimmed != stem {
		candidates = append(candidates, trimmed)
	}
	for _, c := range candidates {
		for _, ext := range audioExtensions {
			if _, err := os.Stat(filepath.Join(dir, c+ext)); err == nil {
				return c + ext
			}
		}
	}
	return "Unknown"
}

func render(parts []part) string {
	var b strings.Builder
	for i, p := range parts {
		fmt.Fprintf(&b, "\n\n%s\n", banner)
		fmt.Fprintf(&b, "PART %d/%d: %s\n", i+1, len(parts), p.audio)
		fmt.Fprintf(&b, "%s\n\n", banner)
		b.WriteString(p.transcript)
		b.WriteString("\n\n")
	}
	return b.String()
}

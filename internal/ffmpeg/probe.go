package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
	"github.com/nguyentantai21042004/transcribe-flow/pkg/executor"
)

// Prober reads container metadata with ffprobe.
type Prober struct {
	exec   executor.Executor
	binary string
}

// NewProber creates a Prober running binary (usually "ffprobe").
func NewProber(exec executor.Executor, binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{exec: exec, binary: binary}
}

// Duration returns the container duration of path.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	out, err := p.exec.Execute(ctx, p.binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// Splitter cuts audio into fixed-length segments without re-encoding.
type Splitter struct {
	exec   executor.Executor
	binary string
	prober *Prober
	logger logger.Logger
}

// NewSplitter creates a Splitter.
func NewSplitter(exec executor.Executor, ffmpegBinary string, prober *Prober, log logger.Logger) *Splitter {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Splitter{exec: exec, binary: ffmpegBinary, prober: prober, logger: log}
}

// SegmentCount is ceil(total/segment), at least one.
func SegmentCount(total, segment time.Duration) int {
	if segment <= 0 || total <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(segment)))
}

// SegmentPath names part i (zero-based) as {stem}_part{NNN}.{format}.
func SegmentPath(source, outputDir, format string, i int) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_part%03d.%s", naming.Stem(source), i+1, format))
}

// SplitExtensions are the audio containers SplitDir picks up.
var SplitExtensions = []string{".m4a", ".opus", ".mp3", ".wav"}

// Split writes the segments of source into outputDir and returns their paths.
// An empty format keeps the source's container.
func (s *Splitter) Split(ctx context.Context, source, outputDir string, segment time.Duration, format string) ([]string, error) {
	format = strings.TrimPrefix(format, ".")
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(source), "."))
	}
	if segment <= 0 {
		return nil, fmt.Errorf("segment length must be positive")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	total, err := s.prober.Duration(ctx, source)
	if err != nil {
		return nil, err
	}
	count := SegmentCount(total, segment)
	s.logger.Info(ctx, "Splitting %s (%.1fs) into %d segments", filepath.Base(source), total.Seconds(), count)

	paths := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out := SegmentPath(source, outputDir, format, i)
		start := time.Duration(i) * segment
		args := []string{
			"-i", source,
			"-ss", formatSeconds(start),
			"-t", formatSeconds(segment),
			"-c", "copy",
			"-y",
			out,
		}
		if _, err := s.exec.Execute(ctx, s.binary, args...); err != nil {
			return paths, fmt.Errorf("split segment %d: %w", i+1, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// SplitDir splits every audio file directly inside dir, in name order. A
// failing file is logged and the rest still run; the failures are joined
// into the returned error.
func (s *Splitter) SplitDir(ctx context.Context, dir, outputDir string, segment time.Duration, format string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var sources []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if slices.Contains(SplitExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			sources = append(sources, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(sources)
	if len(sources) == 0 {
		s.logger.Info(ctx, "No audio files to split in %s", dir)
		return nil, nil
	}
	s.logger.Info(ctx, "Found %d audio files to split", len(sources))

	var (
		paths []string
		errs  []error
	)
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		s.logger.Info(ctx, "[%d/%d] %s", i+1, len(sources), filepath.Base(source))
		parts, err := s.Split(ctx, source, outputDir, segment, format)
		paths = append(paths, parts...)
		if err != nil {
			s.logger.Warn(ctx, "Failed to split %s: %v", source, err)
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(source), err))
		}
	}
	return paths, errors.Join(errs...)
}

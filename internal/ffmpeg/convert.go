package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
	"github.com/nguyentantai21042004/transcribe-flow/pkg/executor"
)

var codecs = map[string]string{
	"m4a":  "aac",
	"mp3":  "libmp3lame",
	"opus": "libopus",
	"wav":  "pcm_s16le",
}

// CodecFor returns the ffmpeg audio codec for a container, defaulting to aac.
func CodecFor(format string) string {
	if codec, ok := codecs[strings.ToLower(format)]; ok {
		return codec
	}
	return "aac"
}

// Converter extracts the audio track of a media file.
type Converter struct {
	exec   executor.Executor
	binary string
	logger logger.Logger
}

// NewConverter creates a Converter running binary (usually "ffmpeg").
func NewConverter(exec executor.Executor, binary string, log logger.Logger) *Converter {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Converter{exec: exec, binary: binary, logger: log}
}

// OutputPath is where Extract writes: the source stem, unsanitized, with
// the target extension inside targetDir.
func OutputPath(source, targetDir, format string) string {
	return filepath.Join(targetDir, naming.Stem(source)+"."+format)
}

// Extract converts source to format at bitrate, writing OutputPath.
func (c *Converter) Extract(ctx context.Context, source, targetDir, format, bitrate string) error {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}
	out := OutputPath(source, targetDir, format)

	// -vn: drop video, -y: overwrite a partial output from an earlier crash
	args := []string{
		"-i", source,
		"-vn",
		"-acodec", CodecFor(format),
		"-y",
	}
	// wav is uncompressed PCM, bitrate does not apply
	if format != "wav" && bitrate != "" {
		args = append(args, "-b:a", bitrate)
	}
	args = append(args, out)

	c.logger.Debug(ctx, "ffmpeg %s", strings.Join(args, " "))
	if _, err := c.exec.Execute(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

// OutputPath reports where Extract writes for source.
func (c *Converter) OutputPath(source, targetDir, format string) string {
	return OutputPath(source, targetDir, format)
}

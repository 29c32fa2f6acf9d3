package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/transcribe-flow/internal/config"
	"github.com/nguyentantai21042004/transcribe-flow/internal/ffmpeg"
	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
	"github.com/nguyentantai21042004/transcribe-flow/internal/processor"
	"github.com/nguyentantai21042004/transcribe-flow/internal/whisper"
	"github.com/nguyentantai21042004/transcribe-flow/pkg/executor"
)

// commandContext carries the flags shared by every command and lazily
// builds the objects they need.
type commandContext struct {
	configFlag    string
	configChanged bool
	timestampFlag string

	cfg    *config.Config
	log    logger.Logger
	closer io.Closer
	exec   executor.Executor
}

// setup loads configuration and opens the log sink.
func (c *commandContext) setup() error {
	cfg, err := config.LoadOrDefault(c.configFlag, c.configChanged)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, closer, err := logger.Open(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.log = log
	c.closer = closer
	c.exec = executor.New(executor.WithSearchPaths(cfg.Tools.SearchPaths...))
	return nil
}

func (c *commandContext) close() {
	if c.closer != nil {
		_ = c.closer.Close()
	}
}

func (c *commandContext) newProcessor() (processor.Processor, error) {
	var opts []processor.Option
	if ts := strings.TrimSpace(c.timestampFlag); ts != "" {
		parsed, err := naming.ParseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		opts = append(opts, processor.WithTimestamp(parsed))
	}

	extractor := ffmpeg.NewConverter(c.exec, c.cfg.Tools.FFmpeg, c.log)
	recognizer := whisper.New(c.exec, c.cfg.Whisper.BinaryPath, c.log)
	return processor.New(c.cfg, extractor, recognizer, c.log, opts...), nil
}

func (c *commandContext) newSplitter() *ffmpeg.Splitter {
	prober := ffmpeg.NewProber(c.exec, c.cfg.Tools.FFprobe)
	return ffmpeg.NewSplitter(c.exec, c.cfg.Tools.FFmpeg, prober, c.log)
}

func (c *commandContext) banner(ctx context.Context, title string) {
	c.log.Info(ctx, "========================================")
	c.log.Info(ctx, "%s", title)
	c.log.Info(ctx, "========================================")
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func elapsedSince(start time.Time) string {
	return time.Since(start).Round(time.Second).String()
}

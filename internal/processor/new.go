package processor

import (
	"time"

	"github.com/nguyentantai21042004/transcribe-flow/internal/config"
	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
)

type implProcessor struct {
	cfg        *config.Config
	extractor  Extractor
	recognizer Recognizer
	logger     logger.Logger
	exists     ExistsFunc
	now        func() time.Time
	timestamp  time.Time
}

// Option customizes a Processor.
type Option func(*implProcessor)

// WithExists replaces the filesystem idempotency check.
func WithExists(fn ExistsFunc) Option {
	return func(p *implProcessor) {
		if fn != nil {
			p.exists = fn
		}
	}
}

// WithClock replaces the wall clock used for job timestamps and timings.
func WithClock(now func() time.Time) Option {
	return func(p *implProcessor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithTimestamp pins the job timestamp, so a manual re-run resumes the job
// that started at ts.
func WithTimestamp(ts time.Time) Option {
	return func(p *implProcessor) {
		p.timestamp = ts
	}
}

// New creates a new Processor instance
func New(cfg *config.Config, ext Extractor, rec Recognizer, log logger.Logger, opts ...Option) Processor {
	p := &implProcessor{
		cfg:        cfg,
		extractor:  ext,
		recognizer: rec,
		logger:     log,
		exists:     fileExists,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *implProcessor) layout() naming.Layout {
	return naming.Layout{
		OutputDir:   p.cfg.Paths.Output,
		AudioFormat: p.cfg.Audio.Format,
		Languages:   p.cfg.Whisper.Languages,
	}
}

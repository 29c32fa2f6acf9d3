package summarizer

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
)

// ErrNoAPIKeys is returned by New when no Gemini key is configured.
var ErrNoAPIKeys = errors.New("no Gemini API keys configured")

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// generateFunc sends prompt to model using key and returns the reply text.
type generateFunc func(ctx context.Context, key, model, prompt string) (string, error)

// Options tune a Summarizer.
type Options struct {
	Model string
	// Language restricts input to {base}-{lang}.txt transcripts.
	Language string
	// Docx also writes a Word copy of every summary.
	Docx bool
}

type implSummarizer struct {
	apiKeys    []string
	currentKey int
	logger     logger.Logger
	opts       Options
	generate   generateFunc
	now        func() time.Time
}

// New creates a Summarizer that rotates through the supplied Gemini API keys.
func New(apiKeys []string, opts Options, log logger.Logger) (Summarizer, error) {
	if len(apiKeys) == 0 {
		return nil, ErrNoAPIKeys
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	return &implSummarizer{
		apiKeys:  apiKeys,
		logger:   log,
		opts:     opts,
		generate: geminiGenerate,
		now:      time.Now,
	}, nil
}

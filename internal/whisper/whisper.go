// Package whisper runs the whisper speech recognition CLI.
package whisper

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/transcribe-flow/internal/logger"
	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
	"github.com/nguyentantai21042004/transcribe-flow/pkg/executor"
)

// Recognizer produces a plain-text transcript beside an audio file.
type Recognizer struct {
	exec   executor.Executor
	binary string
	logger logger.Logger
}

// New creates a Recognizer running binary (usually "whisper").
func New(exec executor.Executor, binary string, log logger.Logger) *Recognizer {
	if binary == "" {
		binary = "whisper"
	}
	return &Recognizer{exec: exec, binary: binary, logger: log}
}

// OutputPath is the transcript whisper writes for audioPath: the audio
// stem with a .txt extension in the same directory. It does not depend on
// the language.
func OutputPath(audioPath string) string {
	return filepath.Join(filepath.Dir(audioPath), naming.Stem(audioPath)+".txt")
}

// Transcribe runs whisper on audioPath with model and language.
func (r *Recognizer) Transcribe(ctx context.Context, audioPath, model, language string) error {
	// --fp16 False: CPU inference, half precision is unsupported there
	args := []string{
		audioPath,
		"--model", model,
		"--language", language,
		"--output_format", "txt",
		"--output_dir", filepath.Dir(audioPath),
		"--fp16", "False",
		"--verbose", "False",
	}

	r.logger.Debug(ctx, "%s %s", r.binary, strings.Join(args, " "))
	if _, err := r.exec.Execute(ctx, r.binary, args...); err != nil {
		return fmt.Errorf("whisper transcribe: %w", err)
	}
	return nil
}

// OutputPath reports where Transcribe writes for audioPath.
func (r *Recognizer) OutputPath(audioPath string) string {
	return OutputPath(audioPath)
}

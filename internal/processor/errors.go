package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrInputNotFound means the input is missing or not a regular file.
	ErrInputNotFound = errors.New("input not found")
	// ErrConversionFailed means the audio stage produced no usable output.
	ErrConversionFailed = errors.New("conversion failed")
	// ErrTranscriptionFailed means a transcription stage produced no transcript.
	ErrTranscriptionFailed = errors.New("transcription failed")
)

// StageError describes the stage that stopped a job.
type StageError struct {
	Stage    string
	Language string
	// Expected is the path the stage was waiting for.
	Expected string
	Err      error
}

func (e *StageError) Error() string {
	if e.Language != "" {
		return fmt.Sprintf("%s (%s): %v", e.Stage, e.Language, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage, lang, expected string, kind, cause error) *StageError {
	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind, cause)
	}
	return &StageError{Stage: stage, Language: lang, Expected: expected, Err: err}
}

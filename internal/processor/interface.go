package processor

import "context"

// Processor runs the stage pipeline for one input file.
type Processor interface {
	// Process runs the pipeline and reports only the error. It matches the
	// watcher's event handler signature.
	Process(ctx context.Context, inputPath string) error
	// Run runs the pipeline and returns the per-stage report.
	Run(ctx context.Context, inputPath string) (*Report, error)
}

// Extractor converts a media file into an audio container. The produced
// file lands at OutputPath, named after the source's own stem.
type Extractor interface {
	Extract(ctx context.Context, source, targetDir, format, bitrate string) error
	OutputPath(source, targetDir, format string) string
}

// Recognizer writes a plain-text transcript for an audio file at
// OutputPath. The output name does not depend on the language, so a
// Recognizer must not be invoked again before its previous output has
// been moved away.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath, model, language string) error
	OutputPath(audioPath string) string
}

// ExistsFunc reports whether a stage output is already present.
type ExistsFunc func(path string) bool

package processor

import (
	"context"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/transcribe-flow/internal/config"
)

// transcribeStage returns the stage producing the lang transcript.
func (p *implProcessor) transcribeStage(lang string) func(ctx context.Context, job *Job) (Status, error) {
	return func(ctx context.Context, job *Job) (Status, error) {
		target := job.transcriptPath(lang)
		name := config.LanguageName(lang)

		if p.exists(target) {
			p.logger.Info(ctx, "%s transcript already exists, skipping: %s", name, target)
			return StatusSkipped, nil
		}

		p.logger.Info(ctx, "Transcribing %s (model %s): %s", name, p.cfg.Whisper.Model, job.Audio)
		if err := p.recognize(ctx, job.Audio, lang, target); err != nil {
			return StatusFailed, err
		}

		p.logger.Info(ctx, "%s transcript ready: %s", name, target)
		return StatusSucceeded, nil
	}
}

// recognize runs the recognizer once and consumes its output: the
// intermediate file is moved to target before returning, so the next
// invocation cannot overwrite it or be mistaken for it. A leftover
// intermediate from an interrupted run is removed first.
func (p *implProcessor) recognize(ctx context.Context, audioPath, lang, target string) error {
	stage := TranscriptStage(lang)
	intermediate := p.recognizer.OutputPath(audioPath)

	if fileExists(intermediate) {
		p.logger.Warn(ctx, "Removing stale transcript before transcribing: %s", intermediate)
		if err := os.Remove(intermediate); err != nil {
			p.logger.Error(ctx, "Failed to remove stale transcript %s: %v", intermediate, err)
			return stageError(stage, lang, intermediate, ErrTranscriptionFailed, err)
		}
	}

	if err := p.recognizer.Transcribe(ctx, audioPath, p.cfg.Whisper.Model, lang); err != nil {
		p.logger.Error(ctx, "Transcription (%s) failed for %s: expected %s, canonical %s: %v", lang, audioPath, intermediate, target, err)
		return stageError(stage, lang, intermediate, ErrTranscriptionFailed, err)
	}
	if !fileExists(intermediate) {
		p.logger.Error(ctx, "Transcription (%s) produced no output: expected %s, canonical %s", lang, intermediate, target)
		return stageError(stage, lang, intermediate, ErrTranscriptionFailed, fmt.Errorf("missing %s", intermediate))
	}

	if err := moveFile(intermediate, target); err != nil {
		p.logger.Error(ctx, "Failed to move %s to %s: %v", intermediate, target, err)
		return stageError(stage, lang, target, ErrTranscriptionFailed, err)
	}
	return nil
}

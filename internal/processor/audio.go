package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// audioStage places the normalized audio at job.Audio, either by copying
// an input that is already in the target container or by running the
// extractor and moving its output into place.
func (p *implProcessor) audioStage(ctx context.Context, job *Job) (Status, error) {
	if p.exists(job.Audio) {
		p.logger.Info(ctx, "Audio already exists, skipping: %s", job.Audio)
		return StatusSkipped, nil
	}

	dir := job.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		p.logger.Error(ctx, "Failed to create output directory %s: %v", dir, err)
		return StatusFailed, stageError(StageAudio, "", job.Audio, ErrConversionFailed, err)
	}

	format := p.cfg.Audio.Format
	if strings.EqualFold(strings.TrimPrefix(filepath.Ext(job.InputPath), "."), format) {
		p.logger.Info(ctx, "Input is already %s, copying: %s -> %s", format, job.InputPath, job.Audio)
		if err := copyFile(job.InputPath, job.Audio); err != nil {
			p.logger.Error(ctx, "Failed to copy %s to %s: %v", job.InputPath, job.Audio, err)
			return StatusFailed, stageError(StageAudio, "", job.Audio, ErrConversionFailed, err)
		}
		p.logger.Info(ctx, "Audio ready: %s", job.Audio)
		return StatusSucceeded, nil
	}

	produced := p.extractor.OutputPath(job.InputPath, dir, format)
	p.logger.Info(ctx, "Extracting audio (%s, %s): %s", format, p.cfg.Audio.Bitrate, job.InputPath)

	if err := p.extractor.Extract(ctx, job.InputPath, dir, format, p.cfg.Audio.Bitrate); err != nil {
		p.logger.Error(ctx, "Audio conversion failed for %s: expected %s, canonical %s: %v", job.InputPath, produced, job.Audio, err)
		return StatusFailed, stageError(StageAudio, "", produced, ErrConversionFailed, err)
	}
	if !fileExists(produced) {
		p.logger.Error(ctx, "Audio conversion produced no output: expected %s, canonical %s", produced, job.Audio)
		return StatusFailed, stageError(StageAudio, "", produced, ErrConversionFailed, fmt.Errorf("missing %s", produced))
	}

	if err := moveFile(produced, job.Audio); err != nil {
		p.logger.Error(ctx, "Failed to move %s to %s: %v", produced, job.Audio, err)
		return StatusFailed, stageError(StageAudio, "", job.Audio, ErrConversionFailed, err)
	}

	p.logger.Info(ctx, "Audio ready: %s", job.Audio)
	return StatusSucceeded, nil
}

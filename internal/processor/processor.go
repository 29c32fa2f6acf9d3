package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/transcribe-flow/internal/config"
	"github.com/nguyentantai21042004/transcribe-flow/internal/metrics"
	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
)

type stage struct {
	name     string
	language string
	run      func(ctx context.Context, job *Job) (Status, error)
}

// Process orchestrates the pipeline and drops the report.
func (p *implProcessor) Process(ctx context.Context, inputPath string) error {
	_, err := p.Run(ctx, inputPath)
	return err
}

// Run validates the input, then runs the audio stage followed by one
// transcription stage per configured language. The first failing stage
// stops the job; completed outputs are left in place so the next run
// resumes from the first missing one.
func (p *implProcessor) Run(ctx context.Context, inputPath string) (*Report, error) {
	startTime := p.now()

	job, err := p.newJob(inputPath)
	if err != nil {
		p.logger.Error(ctx, "Input file not found: %s (%v)", inputPath, err)
		metrics.ObserveJob(false)
		return &Report{Stages: []StageResult{{Name: StageValidate, Status: StatusFailed, Err: err}}}, err
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting job %s: %s", job.ID, job.InputPath)
	p.logger.Info(ctx, "Base name: %s", job.Base)
	p.logger.Info(ctx, "========================================")

	stages := p.stages()
	report := &Report{Job: job, Stages: make([]StageResult, len(stages))}
	for i, s := range stages {
		report.Stages[i] = StageResult{Name: s.name, Language: s.language, Status: StatusPending}
	}

	for i, s := range stages {
		report.Stages[i].Status = StatusRunning
		began := p.now()

		status, err := s.run(ctx, job)

		elapsed := p.now().Sub(began)
		report.Stages[i].Status = status
		report.Stages[i].Elapsed = elapsed
		report.Stages[i].Err = err
		metrics.ObserveStage(s.name, string(status), status != StatusSkipped, elapsed)

		if err != nil {
			p.logger.Info(ctx, "Job %s stopped at stage %s after %s", job.ID, s.name, p.now().Sub(startTime))
			metrics.ObserveJob(false)
			return report, err
		}
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Audio: %s", job.Audio)
	for _, t := range job.Transcripts {
		p.logger.Info(ctx, "Transcript (%s): %s", config.LanguageName(t.Language), t.Path)
	}
	p.logger.Info(ctx, "Processing time: %s", p.now().Sub(startTime))
	p.logger.Info(ctx, "========================================")
	metrics.ObserveJob(true)

	return report, nil
}

func (p *implProcessor) stages() []stage {
	stages := []stage{{name: StageAudio, run: p.audioStage}}
	for _, lang := range p.cfg.Whisper.Languages {
		stages = append(stages, stage{
			name:     TranscriptStage(lang),
			language: lang,
			run:      p.transcribeStage(lang),
		})
	}
	return stages
}

// newJob validates the input and fixes the timestamp and every output path.
func (p *implProcessor) newJob(inputPath string) (*Job, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, stageError(StageValidate, "", inputPath, ErrInputNotFound, fmt.Errorf("empty input path"))
	}
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, stageError(StageValidate, "", inputPath, ErrInputNotFound, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, stageError(StageValidate, "", abs, ErrInputNotFound, err)
	}
	if !info.Mode().IsRegular() {
		return nil, stageError(StageValidate, "", abs, ErrInputNotFound, fmt.Errorf("not a regular file"))
	}

	ts := p.jobTimestamp(info)
	return &Job{
		ID:           uuid.NewString(),
		InputPath:    abs,
		OriginalName: naming.Stem(abs),
		Timestamp:    ts,
		Paths:        p.layout().Paths(abs, ts),
	}, nil
}

func (p *implProcessor) jobTimestamp(info os.FileInfo) time.Time {
	ts := p.timestamp
	if ts.IsZero() {
		if p.cfg.Naming.TimestampSource == config.TimestampMtime {
			ts = info.ModTime()
		} else {
			ts = p.now()
		}
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), 0, 0, ts.Location())
}

package processor

import (
	"time"

	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
)

// Status is the state of one stage within a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSkipped   Status = "skipped"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Stage names.
const (
	StageValidate = "validate"
	StageAudio    = "audio"
)

// TranscriptStage names the transcription stage for lang.
func TranscriptStage(lang string) string {
	return "transcript-" + lang
}

// Job is one pipeline run over one input file. Every path derives from
// the base name computed when the job is created.
type Job struct {
	ID           string
	InputPath    string
	OriginalName string
	Timestamp    time.Time
	naming.Paths
}

func (j *Job) transcriptPath(lang string) string {
	for _, t := range j.Transcripts {
		if t.Language == lang {
			return t.Path
		}
	}
	return naming.TranscriptPath(j.Dir(), j.Base, lang)
}

// StageResult is the outcome of one stage.
type StageResult struct {
	Name     string
	Language string
	Status   Status
	Elapsed  time.Duration
	Err      error
}

// Report is the outcome of a run. Job is nil when validation failed.
type Report struct {
	Job    *Job
	Stages []StageResult
}

// Succeeded reports whether every stage succeeded or was skipped.
func (r *Report) Succeeded() bool {
	if r == nil || r.Job == nil {
		return false
	}
	for _, s := range r.Stages {
		if s.Status != StatusSucceeded && s.Status != StatusSkipped {
			return false
		}
	}
	return true
}

// Stage looks up a stage result by name.
func (r *Report) Stage(name string) (StageResult, bool) {
	if r == nil {
		return StageResult{}, false
	}
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

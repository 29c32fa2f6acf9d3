package summarizer

import "context"

// Summarizer reads transcripts and produces LLM-generated markdown summaries.
type Summarizer interface {
	SummarizeAll(ctx context.Context, transcriptDir, destDir string) (Stats, error)
}

// Stats counts the outcome of one SummarizeAll pass.
type Stats struct {
	Succeeded int
	Skipped   int
	Failed    int
}

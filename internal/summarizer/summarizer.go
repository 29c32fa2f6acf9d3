package summarizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/transcribe-flow/internal/docx"
	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
	"github.com/nguyentantai21042004/transcribe-flow/internal/unify"
)

const summaryPrompt = `You are an expert at analysing recorded meetings and lectures. Based on the transcript below, write a DETAILED summary in the same language as the transcript.

Requirements:
- Start with a one-sentence overview heading describing the topic
- List ALL main points and decisions in the order they appear
- Explain each point in detail, including caveats, tips and important warnings
- Keep technical terms as spoken
- Use markdown: headings, bullet points, bold for key terms
- Finish with an "Action items" section if any were mentioned

Transcript:
---
%s
---`

// SummarizeAll reads every transcript in transcriptDir, calls Gemini for
// each, and writes {stem}.md into destDir. Summaries that already exist are
// left alone so a rerun only fills gaps.
func (s *implSummarizer) SummarizeAll(ctx context.Context, transcriptDir, destDir string) (Stats, error) {
	var stats Stats

	files, err := unify.Discover(transcriptDir, s.opts.Language)
	if err != nil {
		return stats, fmt.Errorf("discover transcripts: %w", err)
	}
	sort.Strings(files)

	if len(files) == 0 {
		s.logger.Info(ctx, "No transcript files found in %s", transcriptDir)
		return stats, nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return stats, fmt.Errorf("create dest dir: %w", err)
	}

	s.logger.Info(ctx, "Found %d transcript files to summarize", len(files))

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		name := naming.Stem(path)
		mdPath := filepath.Join(destDir, name+".md")
		if _, err := os.Stat(mdPath); err == nil {
			s.logger.Info(ctx, "[%d/%d] Summary exists, skipping: %s", i+1, len(files), mdPath)
			stats.Skipped++
			continue
		}
		s.logger.Info(ctx, "[%d/%d] Summarizing: %s", i+1, len(files), name)

		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn(ctx, "Failed to read %s: %v", path, err)
			stats.Failed++
			continue
		}
		if strings.TrimSpace(string(content)) == "" {
			s.logger.Warn(ctx, "Transcript is empty, skipping: %s", path)
			stats.Skipped++
			continue
		}

		summary, err := s.callGemini(ctx, string(content))
		if err != nil {
			s.logger.Warn(ctx, "Failed to summarize %s: %v", name, err)
			stats.Failed++
			continue
		}
		summary = strings.TrimSpace(summary)

		md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
			name,
			s.now().Format("2006-01-02 15:04"),
			summary,
		)
		if err := renameio.WriteFile(mdPath, []byte(md), 0644); err != nil {
			s.logger.Warn(ctx, "Failed to write %s: %v", mdPath, err)
			stats.Failed++
			continue
		}

		if s.opts.Docx {
			docxPath := filepath.Join(destDir, name+".docx")
			if err := docx.FromMarkdown(name, summary, docxPath); err != nil {
				s.logger.Warn(ctx, "Failed to write %s: %v", docxPath, err)
			}
		}

		s.logger.Info(ctx, "[DONE] %s -> %s", name, mdPath)
		stats.Succeeded++
	}

	s.logger.Info(ctx, "Summary complete: %d success, %d skipped, %d failed",
		stats.Succeeded, stats.Skipped, stats.Failed)
	return stats, nil
}

// callGemini sends the transcript to Gemini and returns the summary text.
// Rotates API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, transcript string) (string, error) {
	prompt := fmt.Sprintf(summaryPrompt, transcript)

	var lastErr error
	for range len(s.apiKeys) {
		text, err := s.generate(ctx, s.apiKeys[s.currentKey], s.opts.Model, prompt)
		if err == nil {
			return text, nil
		}
		if !isRateLimited(err) {
			return "", err
		}
		s.logger.Warn(ctx, "Key %d rate limited, rotating...", s.currentKey+1)
		s.rotateKey()
		lastErr = err
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) rotateKey() {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func geminiGenerate(ctx context.Context, key, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		return text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

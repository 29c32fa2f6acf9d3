package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/transcribe-flow/internal/config"
	"github.com/nguyentantai21042004/transcribe-flow/internal/ffmpeg"
	"github.com/nguyentantai21042004/transcribe-flow/internal/preflight"
	"github.com/nguyentantai21042004/transcribe-flow/internal/summarizer"
	"github.com/nguyentantai21042004/transcribe-flow/internal/unify"
)

const defaultSplitDir = "split_audio"

func newUnifyCommand(app *commandContext) *cobra.Command {
	var (
		order string
		lang  string
		asDoc bool
	)
	cmd := &cobra.Command{
		Use:   "unify <dir>",
		Short: "Concatenate the transcripts in a folder into one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if lang != "" {
				normalized, err := config.NormalizeLanguage(lang)
				if err != nil {
					return err
				}
				lang = normalized
			}

			res, err := unify.Unify(ctx, args[0], unify.Options{Order: order, Language: lang, Docx: asDoc}, app.log)
			if errors.Is(err, unify.ErrNoTranscripts) {
				app.log.Info(ctx, "No transcript files found in %s", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			app.log.Info(ctx, "Combined %d transcripts", res.Parts)
			return nil
		},
	}
	cmd.Flags().StringVar(&order, "order", unify.OrderAsc, "Sort order by file name: asc or desc")
	cmd.Flags().StringVar(&lang, "lang", "", "Only unify transcripts in this language")
	cmd.Flags().BoolVar(&asDoc, "docx", false, "Also write a Word document")
	return cmd
}

func newSummarizeCommand(app *commandContext) *cobra.Command {
	var (
		dest  string
		lang  string
		asDoc bool
	)
	cmd := &cobra.Command{
		Use:   "summarize <dir>",
		Short: "Write a Gemini summary for every transcript in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dest == "" {
				dest = filepath.Join(args[0], "summaries")
			}
			s, err := summarizer.New(app.cfg.Gemini.APIKeys, summarizer.Options{
				Model:    app.cfg.Gemini.Model,
				Language: lang,
				Docx:     asDoc,
			}, app.log)
			if err != nil {
				return err
			}

			start := time.Now()
			app.banner(ctx, "Transcript Summaries")
			stats, err := s.SummarizeAll(ctx, args[0], dest)
			if err != nil {
				return err
			}
			app.log.Info(ctx, "Finished in %s", elapsedSince(start))
			if stats.Failed > 0 {
				return fmt.Errorf("%d transcripts could not be summarized", stats.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "Destination folder (default <dir>/summaries)")
	cmd.Flags().StringVar(&lang, "lang", "", "Only summarize transcripts in this language")
	cmd.Flags().BoolVar(&asDoc, "docx", false, "Also write Word documents")
	return cmd
}

func newSplitCommand(app *commandContext) *cobra.Command {
	var (
		segment int
		format  string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "split <file|dir>",
		Short: "Cut long recordings into fixed-length parts",
		Long: "Cut one recording, or every " + strings.Join(ffmpeg.SplitExtensions, " ") +
			" file in a folder, into fixed-length parts without re-encoding.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if segment <= 0 {
				return fmt.Errorf("segment must be positive, got %d", segment)
			}
			info, err := os.Stat(args[0])
			if err != nil {
				app.log.Error(ctx, "Input not found: %s (%v)", args[0], err)
				return err
			}
			if output == "" {
				base := args[0]
				if !info.IsDir() {
					base = filepath.Dir(base)
				}
				output = filepath.Join(base, defaultSplitDir)
			}

			length := time.Duration(segment) * time.Second
			var parts []string
			if info.IsDir() {
				parts, err = app.newSplitter().SplitDir(ctx, args[0], output, length, format)
			} else {
				parts, err = app.newSplitter().Split(ctx, args[0], output, length, format)
			}
			if err != nil {
				app.log.Error(ctx, "Split failed: %v", err)
				return err
			}
			app.log.Info(ctx, "Split into %d parts in %s", len(parts), output)
			return nil
		},
	}
	cmd.Flags().IntVar(&segment, "segment", 600, "Length of each part in seconds")
	cmd.Flags().StringVar(&format, "format", "", "Container of the parts (default: keep the source's)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination folder (default <input dir>/"+defaultSplitDir+")")
	return cmd
}

func newCheckCommand(app *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the external tools can be found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := preflight.Check(app.exec, preflight.Requirements(app.cfg))
			preflight.Render(os.Stdout, results)
			return preflight.Verify(results)
		},
	}
}

// Package docx renders transcripts and markdown summaries as Word documents.
package docx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	wml "github.com/gomutex/godocx/docx"
	"github.com/google/renameio/v2"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reBanner   = regexp.MustCompile(`^={3,}$`)
	rePartLine = regexp.MustCompile(`^PART \d+/\d+: `)
)

// FromMarkdown converts markdown text to a styled docx file at outputPath.
func FromMarkdown(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}

		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}

		addRichText(doc.AddParagraph(""), trimmed)
	}

	return save(doc, outputPath)
}

// FromTranscript writes a plain transcript with one paragraph per line.
// Unified transcript banners become bold headings.
func FromTranscript(title, transcript, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	for _, line := range TranscriptLines(transcript) {
		if rePartLine.MatchString(line) {
			addStyledRun(doc.AddParagraph(""), line, true, headingSize(2))
			continue
		}
		doc.AddParagraph("").AddText(line).Font(fontName).Size(fontSize).Color("000000")
	}

	return save(doc, outputPath)
}

// TranscriptLines returns the non-empty lines of a transcript, dropping
// the "=====" frames around unified transcript banners.
func TranscriptLines(transcript string) []string {
	var lines []string
	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || reBanner.MatchString(trimmed) {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines
}

// save writes through a pending file so a reader never sees a partial docx.
func save(doc *wml.RootDoc, outputPath string) error {
	pending, err := renameio.NewPendingFile(outputPath, renameio.WithPermissions(0644))
	if err != nil {
		return fmt.Errorf("create pending docx: %w", err)
	}
	defer pending.Cleanup()

	if err := doc.SaveTo(pending.Name()); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace docx: %w", err)
	}
	return nil
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *wml.Paragraph, text string, bold bool, size uint64) {
	text = cleanMarkdownInline(text)
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *wml.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}

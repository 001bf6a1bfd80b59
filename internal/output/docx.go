package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/video-digest/internal/models"
	"github.com/nguyentantai21042004/video-digest/internal/textproc"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reNumbered = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	// "[MM:SS] " or "[HH:MM:SS] " at the start of a transcript line.
	reLineStamp = regexp.MustCompile(`^[\[(]\d{1,2}:\d{2}(?::\d{2})?[\])]\s*`)
)

// WriteDocx renders the markdown document, with the same header as the .md file, to .docx.
func (w *implWriter) WriteDocx(path string, result models.SynthesisResult, info Info) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), "YouTube Video Summary", true, 16)
	addRichText(doc.AddParagraph(""), "**Video URL:** "+orNA(result.VideoURL))
	if result.Duration > 0 {
		addRichText(doc.AddParagraph(""), "**Duration:** "+textproc.FormatDuration(result.Duration))
	}
	addRichText(doc.AddParagraph(""), fmt.Sprintf("**Provider:** %s (%s)", info.Provider, info.Model))

	for _, line := range strings.Split(result.Document, "\n") {
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
		if reNumbered.MatchString(trimmed) {
			addRichText(doc.AddParagraph(""), trimmed)
			continue
		}
		addRichText(doc.AddParagraph(""), trimmed)
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

// WriteTranscriptDocx exports the transcript as plain dialogue: line timestamps are
// stripped and repeated lines dropped.
func (w *implWriter) WriteTranscriptDocx(path, title, transcript string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	for _, line := range TranscriptLines(transcript) {
		doc.AddParagraph("").AddText(line).Font(fontName).Size(fontSize).Color("000000")
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

// TranscriptLines returns the dialogue lines of a formatted transcript, first occurrence only.
func TranscriptLines(transcript string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, line := range strings.Split(transcript, "\n") {
		t := strings.TrimSpace(reLineStamp.ReplaceAllString(strings.TrimSpace(line), ""))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
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

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

// addRichText keeps **bold** spans as bold runs.
func addRichText(p *docx.Paragraph, text string) {
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

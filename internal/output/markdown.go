package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func (w *implWriter) Save(ctx context.Context, result models.SynthesisResult, info Info) ([]string, error) {
	if err := os.MkdirAll(w.opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if info.Generated.IsZero() {
		info.Generated = time.Now()
	}

	base := filepath.Join(w.opts.Dir, BaseName(result))
	var written []string

	if w.opts.Markdown {
		path := base + "_summary.md"
		if err := w.WriteMarkdown(path, result, info); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if w.opts.Docx {
		path := base + "_summary.docx"
		if err := w.WriteDocx(path, result, info); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if w.opts.Transcript && info.Transcript != "" {
		path := base + "_transcript.docx"
		if err := w.WriteTranscriptDocx(path, "Transcript: "+result.VideoURL, info.Transcript); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	for _, p := range written {
		w.logger.Info(ctx, "Saved %s", p)
	}
	return written, nil
}

// WriteMarkdown writes the document under a header naming the source, time and provider.
func (w *implWriter) WriteMarkdown(path string, result models.SynthesisResult, info Info) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Markdown(result, info)), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// Markdown renders the saved form of a result.
func Markdown(result models.SynthesisResult, info Info) string {
	generated := info.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	var b strings.Builder
	b.WriteString("# YouTube Video Summary\n\n")
	fmt.Fprintf(&b, "**Video URL:** %s\n", orNA(result.VideoURL))
	fmt.Fprintf(&b, "**Generated:** %s\n", generated.Format(timeLayout))
	fmt.Fprintf(&b, "**Provider:** %s (%s)\n\n", info.Provider, info.Model)
	b.WriteString("---\n\n")
	b.WriteString(result.Document)
	if !strings.HasSuffix(result.Document, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// BaseName is a filesystem-safe stem for a result's files.
func BaseName(result models.SynthesisResult) string {
	id := result.VideoID
	if id == "" || id == "N/A" {
		return "summary"
	}
	id = strings.Trim(unsafeName.ReplaceAllString(id, "_"), "_.")
	if id == "" {
		return "summary"
	}
	return id
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

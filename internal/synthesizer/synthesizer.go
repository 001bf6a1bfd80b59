package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/video-digest/internal/llm"
	"github.com/nguyentantai21042004/video-digest/internal/models"
	"github.com/nguyentantai21042004/video-digest/internal/textproc"
)

var (
	// ErrNoSummaries means no chunk was summarized, so there is nothing to synthesize.
	ErrNoSummaries = errors.New("no successful chunk summaries")
	errEmptyOutput = errors.New("model returned an empty document")
)

const notAvailable = "N/A"

const systemPrompt = `You are an expert at creating comprehensive video summaries.
Your task is to combine multiple chunk summaries into one well-structured, hierarchical summary.

Create a summary with the following structure:

# Video Summary

## Overview
[2-3 paragraph narrative overview of the entire video]

## Key Topics
[Organize content into main topics with hierarchical structure]

### Topic 1: [Topic Name] (HH:MM:SS - HH:MM:SS)
- Key point 1
- Key point 2
- Key point 3

[1-2 paragraph narrative explanation of this topic]

### Topic 2: [Topic Name] (HH:MM:SS - HH:MM:SS)
...

## Key Takeaways
- Main takeaway 1
- Main takeaway 2
- Main takeaway 3

Use clear headings, bullet points, and narrative paragraphs for comprehensive coverage.`

const userPrompt = `Here are summaries of different parts of a YouTube video:

Video URL: %s
Duration: %s

Chunk Summaries:
%s

Create a comprehensive, hierarchical summary of this entire video following the structure specified in the system prompt.
Organize the content logically by topics, include timestamps, use both bullet points and narrative paragraphs.`

// Synthesize builds the final document. The bool result reports whether the fallback
// document was used.
func (s *implSynthesizer) Synthesize(ctx context.Context, summaries []models.ChunkSummary, meta models.VideoMetadata) (string, bool) {
	combined := CombineSummaries(summaries)
	if combined == "" {
		s.logger.Warn(ctx, "Skipping synthesis: %v", ErrNoSummaries)
		return FallbackDocument(ErrNoSummaries, combined), true
	}

	text, err := s.generator.Generate(ctx, llm.Request{
		Prompt:       fmt.Sprintf(userPrompt, displayURL(meta), displayDuration(meta), combined),
		SystemPrompt: systemPrompt,
		Temperature:  s.opts.Temperature,
		MaxTokens:    s.opts.MaxTokens,
	})
	if err == nil {
		if doc := strings.TrimSpace(text); doc != "" {
			return doc, false
		}
		err = errEmptyOutput
	}

	s.logger.Warn(ctx, "Synthesis failed, using chunk summaries: %v", err)
	return FallbackDocument(err, combined), true
}

// CreateResult synthesizes and wraps the document with run metadata. SuccessfulChunks
// counts map-stage successes, independent of whether synthesis itself succeeded.
func (s *implSynthesizer) CreateResult(ctx context.Context, summaries []models.ChunkSummary, meta models.VideoMetadata) models.SynthesisResult {
	doc, fallback := s.Synthesize(ctx, summaries, meta)
	return models.SynthesisResult{
		VideoURL:         orNA(meta.URL),
		VideoID:          orNA(meta.VideoID),
		Duration:         meta.DurationSeconds,
		Document:         doc,
		ChunkCount:       len(summaries),
		SuccessfulChunks: models.CountSucceeded(summaries),
		Fallback:         fallback,
	}
}

// CombineSummaries formats each successful summary as "[start - end]\ntext" and joins them
// with a blank line, keeping input order. Failed summaries are skipped.
func CombineSummaries(summaries []models.ChunkSummary) string {
	blocks := make([]string, 0, len(summaries))
	for _, cs := range summaries {
		if !cs.Succeeded {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[%s - %s]\n%s", cs.StartTimestamp, cs.EndTimestamp, cs.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// FallbackDocument is the model-free document used when synthesis fails.
func FallbackDocument(cause error, combined string) string {
	var b strings.Builder
	b.WriteString("# Video Summary\n\n")
	b.WriteString("## Error\n")
	fmt.Fprintf(&b, "Failed to synthesize final summary: %v\n\n", cause)
	b.WriteString("## Chunk Summaries\n\n")
	if combined == "" {
		b.WriteString("_No chunk summaries were produced._\n")
	} else {
		b.WriteString(combined)
		b.WriteString("\n")
	}
	return b.String()
}

func displayURL(meta models.VideoMetadata) string {
	return orNA(meta.URL)
}

func displayDuration(meta models.VideoMetadata) string {
	if meta.DurationSeconds <= 0 {
		return notAvailable
	}
	return textproc.FormatDuration(meta.DurationSeconds)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

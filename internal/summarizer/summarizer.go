package summarizer

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/video-digest/internal/llm"
	"github.com/nguyentantai21042004/video-digest/internal/models"
)

// ErrorPrefix starts the text of every failed chunk summary.
const ErrorPrefix = "Error: "

const systemPrompt = `You are an expert at summarizing video content.
Your task is to write a concise but complete summary of the video transcript chunk provided.

Instructions:
- Extract the main topics and key points discussed
- Keep the chronological order of the transcript
- Preserve important details and context
- Use clear, professional language
- If timestamps are present, note the time range covered`

const userPrompt = `Summarize this video transcript chunk:

Time Range: %s - %s

Transcript:
%s

Provide a clear summary highlighting the main topics and key points.`

// Summarize asks the model for one chunk's summary. Any generation error becomes a failed
// ChunkSummary; identity and time range are always copied from the chunk.
func (s *implSummarizer) Summarize(ctx context.Context, chunk models.Chunk) models.ChunkSummary {
	summary := models.ChunkSummary{
		SequenceID:     chunk.SequenceID,
		StartTimestamp: chunk.StartTimestamp,
		EndTimestamp:   chunk.EndTimestamp,
	}

	text, err := s.generator.Generate(ctx, llm.Request{
		Prompt:       fmt.Sprintf(userPrompt, chunk.StartTimestamp, chunk.EndTimestamp, chunk.Text),
		SystemPrompt: systemPrompt,
		Temperature:  s.opts.Temperature,
		MaxTokens:    s.opts.MaxTokens,
	})
	if err != nil {
		summary.Text = ErrorPrefix + err.Error()
		return summary
	}

	summary.Text = strings.TrimSpace(text)
	summary.Succeeded = true
	return summary
}

// SummarizeAll summarizes every chunk. With Concurrency 1 chunks run strictly one after
// another; otherwise up to Concurrency calls overlap and results are slotted by position.
func (s *implSummarizer) SummarizeAll(ctx context.Context, chunks []models.Chunk) ([]models.ChunkSummary, error) {
	results := make([]models.ChunkSummary, len(chunks))

	if s.opts.Concurrency == 1 {
		for i, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = s.summarizeLogged(ctx, i, len(chunks), chunk)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Concurrency)

		for i, chunk := range chunks {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = s.summarizeLogged(gctx, i, len(chunks), chunk)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Summarized %d/%d chunks", models.CountSucceeded(results), len(chunks))
	return results, nil
}

func (s *implSummarizer) summarizeLogged(ctx context.Context, i, total int, chunk models.Chunk) models.ChunkSummary {
	s.logger.Debug(ctx, "[%d/%d] Summarizing chunk %d (%s - %s, %d chars)",
		i+1, total, chunk.SequenceID, chunk.StartTimestamp, chunk.EndTimestamp, chunk.CharCount)

	summary := s.Summarize(ctx, chunk)
	if !summary.Succeeded {
		s.logger.Warn(ctx, "Chunk %d failed: %s", chunk.SequenceID, strings.TrimPrefix(summary.Text, ErrorPrefix))
	}
	return summary
}

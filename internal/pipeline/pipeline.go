package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/chunker"
	"github.com/nguyentantai21042004/video-digest/internal/models"
	"github.com/nguyentantai21042004/video-digest/internal/output"
	"github.com/nguyentantai21042004/video-digest/internal/store"
	"github.com/nguyentantai21042004/video-digest/internal/textproc"
	"github.com/nguyentantai21042004/video-digest/internal/transcript"
)

// ErrNoChunks means the transcript produced nothing to summarize.
var ErrNoChunks = errors.New("transcript produced no chunks")

func (p *implPipeline) Chunk(text string) ([]models.Chunk, models.ChunkStats) {
	chunks := p.deps.Chunker.Chunk(text)
	return chunks, chunker.Stats(chunks)
}

func (p *implPipeline) SummarizeAll(ctx context.Context, chunks []models.Chunk) ([]models.ChunkSummary, error) {
	return p.deps.Summarizer.SummarizeAll(ctx, chunks)
}

func (p *implPipeline) Synthesize(ctx context.Context, summaries []models.ChunkSummary, meta models.VideoMetadata) models.SynthesisResult {
	return p.deps.Synthesizer.CreateResult(ctx, summaries, meta)
}

// Run fails only on extraction errors and cancellation. Chunk and synthesis failures are
// carried in the result.
func (p *implPipeline) Run(ctx context.Context, ref string) (*Result, error) {
	startTime := time.Now()

	p.logger.Info(ctx, "Extracting transcript: %s", ref)
	t, err := p.deps.Source.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("extract transcript: %w", err)
	}
	if strings.TrimSpace(t.Text) == "" {
		return nil, fmt.Errorf("extract transcript: %w", transcript.ErrEmptyTranscript)
	}
	p.logger.Info(ctx, "Transcript extracted (%s duration, %d characters)",
		textproc.FormatDuration(t.Meta.DurationSeconds), len(t.Text))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks, stats := p.Chunk(t.Text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("chunk transcript: %w", ErrNoChunks)
	}
	p.logger.Info(ctx, "Created %d chunks (avg %d chars, %s - %s)",
		stats.TotalChunks, stats.AverageChunkSize, stats.FirstTimestamp, stats.LastTimestamp)

	summaries, err := p.SummarizeAll(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("summarize chunks: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Info(ctx, "Synthesizing final summary")
	synthesis := p.Synthesize(ctx, summaries, t.Meta)
	// An interrupted reduce call must not be saved as a fallback document.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if synthesis.Fallback {
		p.logger.Warn(ctx, "Final summary assembled from chunk summaries only")
	}

	return &Result{
		Reference:  ref,
		Transcript: t,
		Chunks:     chunks,
		Stats:      stats,
		Summaries:  summaries,
		Synthesis:  synthesis,
		Elapsed:    time.Since(startTime),
	}, nil
}

func (p *implPipeline) Digest(ctx context.Context, ref string) (*Result, error) {
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting digest: %s", ref)
	p.logger.Info(ctx, "========================================")

	res, err := p.Run(ctx, ref)
	if err != nil {
		return nil, err
	}

	if p.deps.Writer != nil {
		files, err := p.deps.Writer.Save(ctx, res.Synthesis, output.Info{
			Provider:   p.deps.Provider,
			Model:      p.deps.Model,
			Generated:  time.Now(),
			Transcript: res.Transcript.Text,
		})
		res.Files = files
		if err != nil {
			return res, fmt.Errorf("write output: %w", err)
		}
	}

	if p.deps.History != nil {
		run := &store.Run{
			Reference: ref,
			Provider:  p.deps.Provider,
			Model:     p.deps.Model,
			Elapsed:   res.Elapsed,
			Result:    res.Synthesis,
			Summaries: res.Summaries,
		}
		if err := p.deps.History.SaveRun(ctx, run); err != nil {
			p.logger.Warn(ctx, "Failed to record run history: %v", err)
		} else {
			res.RunID = run.ID
		}
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Digest completed: %d/%d chunks summarized", res.Synthesis.SuccessfulChunks, res.Synthesis.ChunkCount)
	for _, f := range res.Files {
		p.logger.Info(ctx, "Output: %s", f)
	}
	p.logger.Info(ctx, "Processing time: %s", res.Elapsed.Round(time.Millisecond))
	p.logger.Info(ctx, "========================================")
	return res, nil
}

func (p *implPipeline) Process(ctx context.Context, ref string) error {
	_, err := p.Digest(ctx, ref)
	return err
}

package pipeline

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/models"
	"github.com/nguyentantai21042004/video-digest/internal/store"
	"github.com/nguyentantai21042004/video-digest/internal/transcript"
)

// Pipeline sequences extraction, chunking, the map stage and the reduce stage.
type Pipeline interface {
	Chunk(text string) ([]models.Chunk, models.ChunkStats)
	SummarizeAll(ctx context.Context, chunks []models.Chunk) ([]models.ChunkSummary, error)
	Synthesize(ctx context.Context, summaries []models.ChunkSummary, meta models.VideoMetadata) models.SynthesisResult
	// Run digests one reference without persisting anything.
	Run(ctx context.Context, ref string) (*Result, error)
	// Digest runs and then writes output files and history.
	Digest(ctx context.Context, ref string) (*Result, error)
	// Process is Digest shaped as a watcher handler.
	Process(ctx context.Context, ref string) error
}

// History records finished runs.
type History interface {
	SaveRun(ctx context.Context, run *store.Run) error
}

// Result is everything one run produced.
type Result struct {
	Reference  string
	Transcript *transcript.Transcript
	Chunks     []models.Chunk
	Stats      models.ChunkStats
	Summaries  []models.ChunkSummary
	Synthesis  models.SynthesisResult
	Elapsed    time.Duration
	// Set by Digest.
	Files []string
	RunID string
}

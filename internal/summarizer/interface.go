package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/video-digest/internal/models"
)

// Summarizer is the map stage: one model call per chunk, failures captured per chunk.
type Summarizer interface {
	Summarize(ctx context.Context, chunk models.Chunk) models.ChunkSummary
	// SummarizeAll returns one summary per chunk in input order. It only fails when ctx is
	// cancelled; generation failures are reported through ChunkSummary.Succeeded.
	SummarizeAll(ctx context.Context, chunks []models.Chunk) ([]models.ChunkSummary, error)
}

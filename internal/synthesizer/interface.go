package synthesizer

import (
	"context"

	"github.com/nguyentantai21042004/video-digest/internal/models"
)

// Synthesizer is the reduce stage: one model call over every successful chunk summary.
// It never fails; when the call fails the document is a deterministic fallback.
type Synthesizer interface {
	Synthesize(ctx context.Context, summaries []models.ChunkSummary, meta models.VideoMetadata) (document string, fallback bool)
	CreateResult(ctx context.Context, summaries []models.ChunkSummary, meta models.VideoMetadata) models.SynthesisResult
}

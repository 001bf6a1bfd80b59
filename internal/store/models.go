// Package store keeps a SQLite history of digest runs.
package store

import (
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/models"
)

// Run is one completed pipeline run.
type Run struct {
	ID        string
	Reference string
	Provider  string
	Model     string
	Elapsed   time.Duration
	CreatedAt time.Time
	Result    models.SynthesisResult
	// Summaries is only loaded by GetRun.
	Summaries []models.ChunkSummary
}

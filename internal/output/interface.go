package output

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/models"
)

// Writer persists the final document of a run.
type Writer interface {
	// Save writes every enabled format to the output directory and returns the written paths.
	Save(ctx context.Context, result models.SynthesisResult, info Info) ([]string, error)
	WriteMarkdown(path string, result models.SynthesisResult, info Info) error
	WriteDocx(path string, result models.SynthesisResult, info Info) error
	WriteTranscriptDocx(path, title, transcript string) error
}

// Info is run context shown in the document header.
type Info struct {
	Provider  string
	Model     string
	Generated time.Time
	// Transcript is only exported when the transcript format is enabled.
	Transcript string
}

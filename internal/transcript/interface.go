package transcript

import (
	"context"

	"github.com/nguyentantai21042004/video-digest/internal/models"
)

// Source fetches a transcript for a reference (URL, video ID or file path).
type Source interface {
	Fetch(ctx context.Context, ref string) (*Transcript, error)
}

// Segment is one caption cue. Start and Duration are in seconds.
type Segment struct {
	Text     string
	Start    float64
	Duration float64
}

// Transcript is the timestamped text handed to the pipeline, plus what is known about its source.
type Transcript struct {
	Text     string
	Segments []Segment
	Meta     models.VideoMetadata
}

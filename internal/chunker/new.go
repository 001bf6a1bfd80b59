package chunker

import (
	"github.com/nguyentantai21042004/video-digest/internal/config"
)

type implChunker struct {
	maxChunkSize int
	overlap      int
}

// New creates a Chunker. It fails with config.ErrInvalidChunking when overlap is not
// strictly between 0 (inclusive) and maxChunkSize.
func New(maxChunkSize, overlap int) (Chunker, error) {
	if err := config.ValidateChunking(maxChunkSize, overlap); err != nil {
		return nil, err
	}
	return &implChunker{
		maxChunkSize: maxChunkSize,
		overlap:      overlap,
	}, nil
}

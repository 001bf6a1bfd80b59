package chunker

import "github.com/nguyentantai21042004/video-digest/internal/models"

// Chunker turns a raw transcript into timestamp-tagged chunks.
type Chunker interface {
	Chunk(transcript string) []models.Chunk
}

package chunker

import (
	"unicode/utf8"

	"github.com/nguyentantai21042004/video-digest/internal/models"
	"github.com/nguyentantai21042004/video-digest/internal/textproc"
)

// Chunk cleans the transcript, splits it into windows and tags each window with its
// 1-based sequence id and first/last timestamp.
func (c *implChunker) Chunk(transcript string) []models.Chunk {
	cleaned := textproc.Clean(transcript)
	if cleaned == "" {
		return nil
	}

	windows, err := textproc.Split(cleaned, c.maxChunkSize, c.overlap)
	if err != nil {
		// sizes were validated in New
		return nil
	}
	chunks := make([]models.Chunk, 0, len(windows))
	for _, text := range windows {
		chunks = append(chunks, Build(len(chunks)+1, text))
	}
	return chunks
}

// Build wraps one window of text into a Chunk.
func Build(sequenceID int, text string) models.Chunk {
	start, end := models.NoTimestamp, models.NoTimestamp
	if ts := textproc.ExtractTimestamps(text); len(ts) > 0 {
		start, end = ts[0], ts[len(ts)-1]
	}
	return models.Chunk{
		SequenceID:     sequenceID,
		Text:           text,
		StartTimestamp: start,
		EndTimestamp:   end,
		CharCount:      utf8.RuneCountInString(text),
	}
}

// Stats aggregates a chunk sequence. Average size uses integer division.
func Stats(chunks []models.Chunk) models.ChunkStats {
	stats := models.ChunkStats{
		TotalChunks:    len(chunks),
		FirstTimestamp: models.NoTimestamp,
		LastTimestamp:  models.NoTimestamp,
	}
	if len(chunks) == 0 {
		return stats
	}

	for _, ch := range chunks {
		stats.TotalCharacters += ch.CharCount
	}
	stats.AverageChunkSize = stats.TotalCharacters / len(chunks)
	stats.FirstTimestamp = chunks[0].StartTimestamp
	stats.LastTimestamp = chunks[len(chunks)-1].EndTimestamp
	return stats
}

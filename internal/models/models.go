// Package models holds the value objects that flow through the digest pipeline.
package models

// NoTimestamp is used as a chunk time bound when its text has no timestamp tokens.
const NoTimestamp = "00:00"

// Chunk is one bounded, timestamp-tagged slice of transcript text.
type Chunk struct {
	SequenceID     int    `json:"sequence_id"`
	Text           string `json:"text"`
	StartTimestamp string `json:"start_timestamp"`
	EndTimestamp   string `json:"end_timestamp"`
	CharCount      int    `json:"char_count"`
}

// ChunkStats aggregates a chunk sequence for reporting.
type ChunkStats struct {
	TotalChunks      int    `json:"total_chunks"`
	TotalCharacters  int    `json:"total_characters"`
	AverageChunkSize int    `json:"average_chunk_size"`
	FirstTimestamp   string `json:"first_timestamp"`
	LastTimestamp    string `json:"last_timestamp"`
}

// ChunkSummary is the map-stage result for one Chunk.
// Succeeded is the only failure signal: a failed summary still carries an error text.
type ChunkSummary struct {
	SequenceID     int    `json:"sequence_id"`
	StartTimestamp string `json:"start_timestamp"`
	EndTimestamp   string `json:"end_timestamp"`
	Text           string `json:"summary"`
	Succeeded      bool   `json:"succeeded"`
}

// CountSucceeded returns how many summaries were produced by the model.
func CountSucceeded(summaries []ChunkSummary) int {
	n := 0
	for _, s := range summaries {
		if s.Succeeded {
			n++
		}
	}
	return n
}

// VideoMetadata describes the transcript source. The pipeline treats it as opaque.
type VideoMetadata struct {
	VideoID         string  `json:"video_id"`
	URL             string  `json:"url"`
	DurationSeconds float64 `json:"duration_seconds"`
	SegmentCount    int     `json:"segment_count"`
	Source          string  `json:"source"`
}

// SynthesisResult is the terminal artifact of one pipeline run.
type SynthesisResult struct {
	VideoURL         string  `json:"video_url"`
	VideoID          string  `json:"video_id"`
	Duration         float64 `json:"duration"`
	Document         string  `json:"document"`
	ChunkCount       int     `json:"chunk_count"`
	SuccessfulChunks int     `json:"successful_chunks"`
	// Fallback is set when the document was assembled without the model.
	Fallback bool `json:"fallback"`
}

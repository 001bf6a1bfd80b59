package pipeline

import (
	"github.com/nguyentantai21042004/video-digest/internal/chunker"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/output"
	"github.com/nguyentantai21042004/video-digest/internal/summarizer"
	"github.com/nguyentantai21042004/video-digest/internal/synthesizer"
	"github.com/nguyentantai21042004/video-digest/internal/transcript"
)

// Deps are the stages and collaborators a Pipeline drives. Writer and History are optional.
type Deps struct {
	Source      transcript.Source
	Chunker     chunker.Chunker
	Summarizer  summarizer.Summarizer
	Synthesizer synthesizer.Synthesizer
	Writer      output.Writer
	History     History
	// Provider and Model label saved documents and history rows.
	Provider string
	Model    string
}

type implPipeline struct {
	deps   Deps
	logger logger.Logger
}

// New creates a new Pipeline instance
func New(deps Deps, log logger.Logger) Pipeline {
	return &implPipeline{deps: deps, logger: log}
}

package synthesizer

import (
	"github.com/nguyentantai21042004/video-digest/internal/llm"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

// Options tune the synthesis call. Zero values take the defaults.
type Options struct {
	Temperature float32
	MaxTokens   int
}

type implSynthesizer struct {
	generator llm.Generator
	logger    logger.Logger
	opts      Options
}

// New creates a Synthesizer backed by the given generator.
func New(gen llm.Generator, log logger.Logger, opts Options) Synthesizer {
	if opts.Temperature == 0 {
		opts.Temperature = 0.4
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 2000
	}
	return &implSynthesizer{
		generator: gen,
		logger:    log,
		opts:      opts,
	}
}

package summarizer

import (
	"github.com/nguyentantai21042004/video-digest/internal/llm"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

// Options tune the per-chunk generation call.
type Options struct {
	Temperature float32
	MaxTokens   int
	// Concurrency > 1 summarizes that many chunks at once; results keep input order.
	Concurrency int
}

type implSummarizer struct {
	generator llm.Generator
	logger    logger.Logger
	opts      Options
}

// New creates a Summarizer backed by the given generator.
func New(gen llm.Generator, log logger.Logger, opts Options) Summarizer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.3
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 500
	}
	return &implSummarizer{
		generator: gen,
		logger:    log,
		opts:      opts,
	}
}

package output

import (
	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

// Options selects which files Save produces.
type Options struct {
	Dir        string
	Markdown   bool
	Docx       bool
	Transcript bool
}

type implWriter struct {
	opts   Options
	logger logger.Logger
}

// New creates a new Writer instance
func New(opts Options, log logger.Logger) Writer {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	return &implWriter{opts: opts, logger: log}
}

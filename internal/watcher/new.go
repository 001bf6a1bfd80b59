package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

// Options tunes which files are handled and how many run at once.
type Options struct {
	MaxConcurrent int
	// Accept filters paths; nil accepts everything.
	Accept func(path string) bool
	// SettleDelay waits for writers to finish before a file is handled.
	SettleDelay time.Duration
	// ScanExisting handles files already in the directory when Start is called.
	ScanExisting bool
}

// New creates a new Watcher instance with concurrency control
func New(inputDir string, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fw.Add(inputDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.Accept == nil {
		opts.Accept = func(string) bool { return true }
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}

	return &implWatcher{
		inputDir:  inputDir,
		handler:   handler,
		logger:    log,
		watcher:   fw,
		opts:      opts,
		semaphore: make(chan struct{}, opts.MaxConcurrent),
		inFlight:  make(map[string]bool),
	}, nil
}

package transcript

import (
	"github.com/nguyentantai21042004/video-digest/internal/config"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/pkg/executor"
)

// New returns a Source that routes each reference to the YouTube, file or media source.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Source {
	return NewRouter(
		NewYouTube(exec, log, YouTubeOptions{
			YtDlpPath:  cfg.Transcript.YtDlpPath,
			Languages:  cfg.Transcript.Languages,
			MaxRetries: cfg.Transcript.MaxRetries,
			TempDir:    cfg.Paths.Temp,
		}),
		NewFile(log),
		NewWhisper(exec, log, WhisperOptions{
			BinaryPath: cfg.Whisper.BinaryPath,
			ModelPath:  cfg.Whisper.ModelPath,
			Language:   cfg.Whisper.Language,
			Threads:    cfg.Whisper.Threads,
			TempDir:    cfg.Paths.Temp,
		}),
	)
}

func NewRouter(youtube, file, media Source) Source {
	return &router{youtube: youtube, file: file, media: media}
}

func NewYouTube(exec executor.Executor, log logger.Logger, opts YouTubeOptions) Source {
	if opts.YtDlpPath == "" {
		opts.YtDlpPath = "yt-dlp"
	}
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"en"}
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.TempDir == "" {
		opts.TempDir = "data/temp"
	}
	return &youtubeSource{executor: exec, logger: log, opts: opts, newBackOff: defaultBackOff}
}

func NewFile(log logger.Logger) Source {
	return &fileSource{logger: log}
}

func NewWhisper(exec executor.Executor, log logger.Logger, opts WhisperOptions) Source {
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.Threads <= 0 {
		opts.Threads = 4
	}
	if opts.TempDir == "" {
		opts.TempDir = "data/temp"
	}
	return &whisperSource{executor: exec, logger: log, opts: opts}
}

package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/models"
	"github.com/nguyentantai21042004/video-digest/pkg/executor"
)

// YouTubeOptions configures caption download through yt-dlp.
type YouTubeOptions struct {
	YtDlpPath  string
	Languages  []string
	MaxRetries int
	TempDir    string
}

type youtubeSource struct {
	executor executor.Executor
	logger   logger.Logger
	opts     YouTubeOptions
	// newBackOff is swapped in tests to avoid real waits.
	newBackOff func() backoff.BackOff
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	return b
}

// Fetch downloads manual or automatic captions for a YouTube URL or video ID.
func (s *youtubeSource) Fetch(ctx context.Context, ref string) (*Transcript, error) {
	videoID, ok := ExtractVideoID(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}

	attempt := 0
	segments, err := backoff.Retry(ctx, func() ([]Segment, error) {
		attempt++
		segs, err := s.download(ctx, videoID)
		if err != nil {
			s.logger.Warn(ctx, "Transcript attempt %d/%d for %s failed: %v", attempt, s.opts.MaxRetries, videoID, err)
		}
		return segs, err
	},
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(uint(s.opts.MaxRetries)),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript %s: %w", videoID, err)
	}

	t, err := fromSegments(segments, models.VideoMetadata{
		VideoID: videoID,
		URL:     WatchURL(videoID),
		Source:  SourceYouTube,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transcript %s: %w", videoID, err)
	}

	s.logger.Info(ctx, "Fetched transcript for %s: %d segments", videoID, len(segments))
	return t, nil
}

// download runs one yt-dlp attempt in a scratch directory and parses the best caption file.
func (s *youtubeSource) download(ctx context.Context, videoID string) ([]Segment, error) {
	if err := os.MkdirAll(s.opts.TempDir, 0755); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create temp dir: %w", err))
	}
	dir, err := os.MkdirTemp(s.opts.TempDir, "yt-*")
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create temp dir: %w", err))
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", strings.Join(s.opts.Languages, ","),
		"--sub-format", "vtt",
		"--no-warnings",
		"-o", "%(id)s.%(ext)s",
		"--", WatchURL(videoID),
	}
	if _, err := s.executor.ExecuteInDir(ctx, dir, s.opts.YtDlpPath, args...); err != nil {
		return nil, classify(err)
	}

	path, err := s.pickCaptionFile(dir, videoID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}

	segments := ParseVTT(string(data))
	if len(segments) == 0 {
		return nil, errors.New("transcript fetch returned empty data")
	}
	return segments, nil
}

// pickCaptionFile prefers the configured languages in order, then any caption file.
func (s *youtubeSource) pickCaptionFile(dir, videoID string) (string, error) {
	for _, lang := range s.opts.Languages {
		matches, _ := filepath.Glob(filepath.Join(dir, videoID+"."+lang+"*.vtt"))
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0], nil
		}
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.vtt"))
	if len(matches) == 0 {
		return "", backoff.Permanent(ErrNoTranscript)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// classify maps yt-dlp failures onto sentinel errors. Those are permanent and end the retry loop.
func classify(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return backoff.Permanent(fmt.Errorf("yt-dlp not installed: %w", err))
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "private video"),
		strings.Contains(msg, "video unavailable"),
		strings.Contains(msg, "is unavailable"):
		return backoff.Permanent(fmt.Errorf("%w: %v", ErrVideoUnavailable, err))
	case strings.Contains(msg, "disabled"):
		return backoff.Permanent(fmt.Errorf("%w: %v", ErrTranscriptsDisabled, err))
	case strings.Contains(msg, "no subtitles"), strings.Contains(msg, "no transcript"):
		return backoff.Permanent(fmt.Errorf("%w: %v", ErrNoTranscript, err))
	}
	return err
}

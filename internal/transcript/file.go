package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/models"
	"github.com/nguyentantai21042004/video-digest/internal/textproc"
)

const (
	SourceYouTube = "youtube"
	SourceFile    = "file"
	SourceWhisper = "whisper"
)

var (
	transcriptExts = []string{".srt", ".vtt", ".txt"}
	mediaExts      = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv", ".mp3", ".m4a", ".wav"}
)

// IsTranscriptFile reports whether path has a subtitle or plain-text transcript extension.
func IsTranscriptFile(path string) bool {
	return hasExt(path, transcriptExts)
}

// IsMediaFile reports whether path is audio or video that can be transcribed locally.
func IsMediaFile(path string) bool {
	return hasExt(path, mediaExts)
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

type fileSource struct {
	logger logger.Logger
}

// Fetch reads .srt, .vtt or .txt files. Plain text is used as-is and should already
// carry [MM:SS] style timestamps.
func (s *fileSource) Fetch(ctx context.Context, path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript file: %w", err)
	}

	meta := models.VideoMetadata{
		VideoID: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		URL:     path,
		Source:  SourceFile,
	}

	var t *Transcript
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		t, err = fromSegments(ParseSRT(string(data)), meta)
	case ".vtt":
		t, err = fromSegments(ParseVTT(string(data)), meta)
	case ".txt":
		t, err = fromText(string(data), meta)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidReference, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	s.logger.Info(ctx, "Loaded transcript file %s (%d characters)", path, len(t.Text))
	return t, nil
}

func fromText(text string, meta models.VideoMetadata) (*Transcript, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyTranscript
	}
	if ts := textproc.ExtractTimestamps(text); len(ts) > 0 {
		if d, err := ParseClock(ts[len(ts)-1]); err == nil {
			meta.DurationSeconds = d
		}
	}
	return &Transcript{Text: text, Meta: meta}, nil
}

package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/models"
	"github.com/nguyentantai21042004/video-digest/pkg/executor"
)

// WhisperOptions configures local transcription with ffmpeg and whisper.cpp.
type WhisperOptions struct {
	BinaryPath string
	ModelPath  string
	Language   string
	Threads    int
	TempDir    string
}

type whisperSource struct {
	executor executor.Executor
	logger   logger.Logger
	opts     WhisperOptions
}

// Fetch transcribes a local audio or video file.
func (s *whisperSource) Fetch(ctx context.Context, mediaPath string) (*Transcript, error) {
	if s.opts.ModelPath == "" || s.opts.BinaryPath == "" {
		return nil, errors.New("whisper binary_path and model_path must be configured for media files")
	}
	if err := os.MkdirAll(s.opts.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	audioPath, err := s.extractAudio(ctx, mediaPath)
	if err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}
	defer s.cleanupTempFile(ctx, audioPath)

	srtPath, err := s.transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	defer s.cleanupTempFile(ctx, srtPath)

	data, err := os.ReadFile(srtPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	t, err := fromSegments(ParseSRT(string(data)), models.VideoMetadata{
		VideoID: strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath)),
		URL:     mediaPath,
		Source:  SourceWhisper,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", mediaPath, err)
	}
	return t, nil
}

// extractAudio converts the input to 16kHz mono PCM WAV, the format whisper expects.
func (s *whisperSource) extractAudio(ctx context.Context, mediaPath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	audioPath := filepath.Join(s.opts.TempDir, base+"_temp.wav")

	s.logger.Info(ctx, "Extracting audio: %s", mediaPath)

	args := []string{
		"-i", mediaPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}
	if _, err := s.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return audioPath, nil
}

// transcribe runs whisper.cpp and returns the SRT it wrote next to the audio file.
func (s *whisperSource) transcribe(ctx context.Context, audioPath string) (string, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	s.logger.Info(ctx, "Starting transcription with %d threads: %s", s.opts.Threads, audioPath)

	// -ml/-mc 0 lift segment and context limits for long recordings.
	args := []string{
		"-m", s.opts.ModelPath,
		"-f", audioPath,
		"-osrt",
		"-l", s.opts.Language,
		"-t", strconv.Itoa(s.opts.Threads),
		"-ml", "0",
		"-mc", "0",
		"-bo", "5",
		"--output-file", outputPrefix,
	}
	if _, err := s.executor.Execute(ctx, s.opts.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	srtPath := outputPrefix + ".srt"
	s.logger.Info(ctx, "Transcription completed: %s", srtPath)
	return srtPath, nil
}

func (s *whisperSource) cleanupTempFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
		return
	}
	s.logger.Debug(ctx, "Cleaned up temp file: %s", path)
}

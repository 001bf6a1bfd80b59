package transcript

import "errors"

var (
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrNoTranscript        = errors.New("no transcript found for this video")
	ErrVideoUnavailable    = errors.New("video is unavailable or private")
	ErrInvalidReference    = errors.New("invalid video reference")
	ErrEmptyTranscript     = errors.New("transcript is empty")
)

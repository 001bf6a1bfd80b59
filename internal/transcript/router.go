package transcript

import (
	"context"
	"fmt"
	"os"
)

type router struct {
	youtube Source
	file    Source
	media   Source
}

// Fetch dispatches on the reference: existing subtitle/text files, existing media files,
// then anything that looks like a YouTube URL or video ID.
func (r *router) Fetch(ctx context.Context, ref string) (*Transcript, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		switch {
		case IsTranscriptFile(ref):
			return r.file.Fetch(ctx, ref)
		case IsMediaFile(ref):
			return r.media.Fetch(ctx, ref)
		default:
			return nil, fmt.Errorf("%w: unsupported file %q", ErrInvalidReference, ref)
		}
	}

	if _, ok := ExtractVideoID(ref); ok {
		return r.youtube.Fetch(ctx, ref)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
}

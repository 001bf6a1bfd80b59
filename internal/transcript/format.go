package transcript

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/video-digest/internal/models"
	"github.com/nguyentantai21042004/video-digest/internal/textproc"
)

var (
	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
	}
	bareVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID accepts watch, youtu.be, embed and /v/ URLs, or a bare 11 character ID.
func ExtractVideoID(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(ref); m != nil {
			return m[1], true
		}
	}
	if bareVideoID.MatchString(ref) {
		return ref, true
	}
	return "", false
}

// WatchURL is the canonical URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Format renders segments one per line as "[MM:SS] text", or "[HH:MM:SS] text" past the first hour.
func Format(segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", textproc.FormatDuration(s.Start), text))
	}
	return strings.Join(lines, "\n")
}

// Duration is the end of the last segment.
func Duration(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	last := segments[len(segments)-1]
	return last.Start + last.Duration
}

func fromSegments(segments []Segment, meta models.VideoMetadata) (*Transcript, error) {
	text := Format(segments)
	if text == "" {
		return nil, ErrEmptyTranscript
	}
	meta.DurationSeconds = Duration(segments)
	meta.SegmentCount = len(segments)
	return &Transcript{Text: text, Segments: segments, Meta: meta}, nil
}

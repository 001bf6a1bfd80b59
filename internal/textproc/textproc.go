// Package textproc normalizes transcript text and splits it into overlapping,
// sentence-aware windows.
package textproc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/video-digest/internal/config"
)

// sentenceLookback is how far back from a window's end a sentence terminator is searched.
const sentenceLookback = 200

var reTimestamp = regexp.MustCompile(`[\[(]?(\d{1,2}:\d{2}(?::\d{2})?)[\])]?`)

// Clean collapses every whitespace run, newlines included, to one space and trims the ends.
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Split partitions text into windows of at most maxSize characters, consecutive windows
// sharing overlap characters. Windows end just after a ". ", "! " or "? " when one occurs in
// the last sentenceLookback characters of the window.
// It fails with config.ErrInvalidChunking unless 0 <= overlap < maxSize.
func Split(text string, maxSize, overlap int) ([]string, error) {
	if err := config.ValidateChunking(maxSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	if len(runes) <= maxSize {
		return []string{text}, nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + maxSize
		if end < len(runes) {
			from := max(end-sentenceLookback, start)
			if idx := lastSentenceEnd(runes, from, end); idx > start {
				end = idx + 1
			}
		} else {
			end = len(runes)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}

// lastSentenceEnd returns the index of the last terminator in runes[from:to] that is followed
// by a space also inside the range, or -1.
func lastSentenceEnd(runes []rune, from, to int) int {
	for i := to - 2; i >= from; i-- {
		switch runes[i] {
		case '.', '!', '?':
			if runes[i+1] == ' ' {
				return i
			}
		}
	}
	return -1
}

// ExtractTimestamps returns every MM:SS or HH:MM:SS token in text, left to right,
// without surrounding brackets or parentheses.
func ExtractTimestamps(text string) []string {
	matches := reTimestamp.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// FormatDuration renders seconds as HH:MM:SS, or MM:SS under one hour.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

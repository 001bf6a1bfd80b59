package transcript

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var cueTag = regexp.MustCompile(`<[^>]*>`)

// ParseSRT reads SubRip cues:
//
//	1
//	00:00:00,000 --> 00:00:01,830
//	I'm happy to
//	have you here today.
func ParseSRT(data string) []Segment {
	var segments []Segment
	for _, cue := range cues(data) {
		text := strings.Join(cue.lines, " ")
		if strings.TrimSpace(text) == "" {
			continue
		}
		segments = append(segments, Segment{Text: text, Start: cue.start, Duration: cue.end - cue.start})
	}
	return segments
}

// ParseVTT reads WebVTT cues. Inline tags are stripped and lines repeated from the
// previous cue are dropped, which flattens YouTube's rolling auto-captions.
func ParseVTT(data string) []Segment {
	var segments []Segment
	last := ""
	for _, c := range cues(data) {
		var fresh []string
		for _, line := range c.lines {
			line = strings.TrimSpace(html.UnescapeString(cueTag.ReplaceAllString(line, "")))
			if line == "" || line == last {
				continue
			}
			fresh = append(fresh, line)
			last = line
		}
		if len(fresh) == 0 {
			continue
		}
		segments = append(segments, Segment{Text: strings.Join(fresh, " "), Start: c.start, Duration: c.end - c.start})
	}
	return segments
}

type cue struct {
	start, end float64
	lines      []string
}

// cues splits blank-line separated blocks and keeps those with a timing line.
// Sequence numbers, cue identifiers, WEBVTT headers and NOTE blocks are skipped.
func cues(data string) []cue {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.TrimPrefix(data, "\ufeff")

	var out []cue
	for _, block := range strings.Split(data, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		for i, line := range lines {
			if !strings.Contains(line, "-->") {
				continue
			}
			start, end, ok := parseTiming(line)
			if !ok {
				break
			}
			c := cue{start: start, end: end}
			for _, text := range lines[i+1:] {
				if text = strings.TrimSpace(text); text != "" {
					c.lines = append(c.lines, text)
				}
			}
			out = append(out, c)
			break
		}
	}
	return out
}

// parseTiming reads "start --> end [settings]".
func parseTiming(line string) (float64, float64, bool) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	right := strings.Fields(parts[1])
	if len(right) == 0 {
		return 0, 0, false
	}
	start, err := ParseClock(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	end, err := ParseClock(right[0])
	if err != nil {
		return 0, 0, false
	}
	if end < start {
		end = start
	}
	return start, end, true
}

// ParseClock converts HH:MM:SS(,|.)mmm, MM:SS.mmm, HH:MM:SS or MM:SS to seconds.
func ParseClock(s string) (float64, error) {
	s = strings.Replace(s, ",", ".", 1)
	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, strconv.ErrSyntax
	}

	var total float64
	for i, f := range fields {
		var (
			v   float64
			err error
		)
		if i == len(fields)-1 {
			v, err = strconv.ParseFloat(f, 64)
		} else {
			var n int
			n, err = strconv.Atoi(f)
			v = float64(n)
		}
		if err != nil || v < 0 {
			return 0, strconv.ErrSyntax
		}
		total = total*60 + v
	}
	return total, nil
}

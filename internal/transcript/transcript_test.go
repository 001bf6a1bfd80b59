package transcript

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v5"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

type fakeExecutor struct {
	mu    sync.Mutex
	calls []string
	// run handles every call; dir is empty for Execute.
	run func(dir, name string, args []string) (string, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteInDir(ctx, "", name, args...)
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.run == nil {
		return "", nil
	}
	return f.run(dir, name, args)
}

func (f *fakeExecutor) LookPath(name string) (string, error) { return "/usr/bin/" + name, nil }

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

const sampleSRT = `1
00:00:00,000 --> 00:00:01,830
I'm happy to
have you here today.

2
00:00:01,910 --> 00:00:03,610
As I'm sure you're all aware.

3
01:00:05,500 --> 01:00:07,000
Final words.
`

const sampleVTT = "WEBVTT\nKind: captions\nLanguage: en\n\n" +
	"NOTE generated by a captioning tool\n\n" +
	"00:00:01.000 --> 00:00:03.000 align:start position:0%\n" +
	"welcome<00:00:01.500><c> to</c><c> the</c> show\n\n" +
	"00:00:03.000 --> 00:00:03.010 align:start position:0%\n" +
	"welcome to the show\n\n" +
	"00:00:03.010 --> 00:00:06.000 align:start position:0%\n" +
	"welcome to the show\n" +
	"today we talk &amp; learn\n"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		ref    string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"  dQw4w9WgXcQ\n", "dQw4w9WgXcQ", true},
		{"not a video", "", false},
		{"https://example.com/watch", "", false},
		{"short", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.ref)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ExtractVideoID(%q) = %q, %v; want %q, %v", tt.ref, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	got := Format([]Segment{
		{Text: " hello ", Start: 0},
		{Text: "", Start: 3},
		{Text: "later", Start: 125.7},
		{Text: "much later", Start: 3725},
	})
	want := "[00:00] hello\n[02:05] later\n[01:02:05] much later"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(nil); got != 0 {
		t.Errorf("Duration(nil) = %v", got)
	}
	got := Duration([]Segment{{Start: 1, Duration: 2}, {Start: 10, Duration: 4.5}})
	if got != 14.5 {
		t.Errorf("Duration() = %v, want 14.5", got)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:00:01,830", 1.83, false},
		{"01:00:05.500", 3605.5, false},
		{"02:03.250", 123.25, false},
		{"12:05", 725, false},
		{"1:02:03", 3723, false},
		{"5", 0, true},
		{"aa:bb", 0, true},
		{"1:2:3:4", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSRT(t *testing.T) {
	segs := ParseSRT(strings.ReplaceAll(sampleSRT, "\n", "\r\n"))
	if len(segs) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(segs), segs)
	}
	if segs[0].Text != "I'm happy to have you here today." {
		t.Errorf("segs[0].Text = %q", segs[0].Text)
	}
	if math.Abs(segs[1].Start-1.91) > 1e-9 || math.Abs(segs[1].Duration-1.7) > 1e-9 {
		t.Errorf("segs[1] timing = %v+%v", segs[1].Start, segs[1].Duration)
	}
	if segs[2].Start != 3605.5 {
		t.Errorf("segs[2].Start = %v", segs[2].Start)
	}
}

func TestParseSRTEmpty(t *testing.T) {
	if segs := ParseSRT(""); len(segs) != 0 {
		t.Errorf("ParseSRT(\"\") = %+v", segs)
	}
}

func TestParseVTT(t *testing.T) {
	segs := ParseVTT(sampleVTT)
	if len(segs) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(segs), segs)
	}
	if segs[0].Text != "welcome to the show" || segs[0].Start != 1 {
		t.Errorf("segs[0] = %+v", segs[0])
	}
	if segs[1].Text != "today we talk & learn" {
		t.Errorf("segs[1].Text = %q", segs[1].Text)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	srt := filepath.Join(dir, "lecture.srt")
	vtt := filepath.Join(dir, "talk.vtt")
	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, srt, sampleSRT)
	writeFile(t, vtt, sampleVTT)
	writeFile(t, txt, "[00:00] Intro.\n[12:30] Outro.\n")

	src := NewFile(logger.NewNop())
	ctx := context.Background()

	got, err := src.Fetch(ctx, srt)
	if err != nil {
		t.Fatalf("Fetch(srt) error = %v", err)
	}
	if !strings.HasPrefix(got.Text, "[00:00] I'm happy to have you here today.\n[00:01]") {
		t.Errorf("srt text = %q", got.Text)
	}
	if got.Meta.VideoID != "lecture" || got.Meta.Source != SourceFile || got.Meta.SegmentCount != 3 {
		t.Errorf("srt meta = %+v", got.Meta)
	}
	if got.Meta.DurationSeconds != 3607 {
		t.Errorf("srt duration = %v, want 3607", got.Meta.DurationSeconds)
	}

	got, err = src.Fetch(ctx, vtt)
	if err != nil {
		t.Fatalf("Fetch(vtt) error = %v", err)
	}
	if got.Text != "[00:01] welcome to the show\n[00:03] today we talk & learn" {
		t.Errorf("vtt text = %q", got.Text)
	}

	got, err = src.Fetch(ctx, txt)
	if err != nil {
		t.Fatalf("Fetch(txt) error = %v", err)
	}
	if got.Text != "[00:00] Intro.\n[12:30] Outro." || got.Meta.DurationSeconds != 750 {
		t.Errorf("txt = %q, duration %v", got.Text, got.Meta.DurationSeconds)
	}
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	other := filepath.Join(dir, "doc.pdf")
	writeFile(t, empty, "  \n")
	writeFile(t, other, "x")

	src := NewFile(logger.NewNop())
	if _, err := src.Fetch(context.Background(), empty); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("Fetch(empty) error = %v, want ErrEmptyTranscript", err)
	}
	if _, err := src.Fetch(context.Background(), other); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Fetch(pdf) error = %v, want ErrInvalidReference", err)
	}
	if _, err := src.Fetch(context.Background(), filepath.Join(dir, "missing.srt")); err == nil {
		t.Error("Fetch(missing) error = nil")
	}
}

func newTestYouTube(exec *fakeExecutor, langs ...string) *youtubeSource {
	src := NewYouTube(exec, logger.NewNop(), YouTubeOptions{
		Languages:  langs,
		MaxRetries: 3,
		TempDir:    os.TempDir(),
	}).(*youtubeSource)
	src.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return src
}

func TestYouTubeFetch(t *testing.T) {
	exec := &fakeExecutor{run: func(dir, name string, args []string) (string, error) {
		if name != "yt-dlp" {
			t.Errorf("ran %q, want yt-dlp", name)
		}
		if args[len(args)-1] != WatchURL("dQw4w9WgXcQ") {
			t.Errorf("url arg = %q", args[len(args)-1])
		}
		writeFile(t, filepath.Join(dir, "dQw4w9WgXcQ.en.vtt"), sampleVTT)
		writeFile(t, filepath.Join(dir, "dQw4w9WgXcQ.de.vtt"), "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhallo\n")
		return "", nil
	}}

	got, err := newTestYouTube(exec, "de", "en").Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got.Text != "[00:00] hallo" {
		t.Errorf("Text = %q, want preferred language", got.Text)
	}
	if got.Meta.VideoID != "dQw4w9WgXcQ" || got.Meta.URL != WatchURL("dQw4w9WgXcQ") || got.Meta.Source != SourceYouTube {
		t.Errorf("Meta = %+v", got.Meta)
	}
}

func TestYouTubeFetchRetriesTransientErrors(t *testing.T) {
	attempts := 0
	exec := &fakeExecutor{run: func(dir, name string, args []string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("command 'yt-dlp' failed: HTTP Error 429: Too Many Requests")
		}
		writeFile(t, filepath.Join(dir, "dQw4w9WgXcQ.en.vtt"), sampleVTT)
		return "", nil
	}}

	got, err := newTestYouTube(exec, "en").Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if got.Meta.SegmentCount != 2 {
		t.Errorf("SegmentCount = %d, want 2", got.Meta.SegmentCount)
	}
}

func TestYouTubeFetchGivesUp(t *testing.T) {
	exec := &fakeExecutor{run: func(dir, name string, args []string) (string, error) {
		return "", errors.New("connection reset by peer")
	}}

	_, err := newTestYouTube(exec, "en").Fetch(context.Background(), "dQw4w9WgXcQ")
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("Fetch() error = %v", err)
	}
	if len(exec.calls) != 3 {
		t.Errorf("calls = %d, want 3", len(exec.calls))
	}
}

func TestYouTubeFetchPermanentErrors(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"private", "ERROR: [youtube] abc: Private video. Sign in if you've been granted access", ErrVideoUnavailable},
		{"unavailable", "ERROR: [youtube] abc: Video unavailable", ErrVideoUnavailable},
		{"disabled", "ERROR: Subtitles are disabled for this video", ErrTranscriptsDisabled},
		{"none", "ERROR: There are no subtitles for the requested languages", ErrNoTranscript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{run: func(dir, name string, args []string) (string, error) {
				return "", fmt.Errorf("command 'yt-dlp' failed: exit status 1\nstderr: %s", tt.stderr)
			}}

			_, err := newTestYouTube(exec, "en").Fetch(context.Background(), "dQw4w9WgXcQ")
			if !errors.Is(err, tt.want) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.want)
			}
			if len(exec.calls) != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", len(exec.calls))
			}
		})
	}
}

func TestYouTubeFetchNoCaptionFile(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := newTestYouTube(exec, "en").Fetch(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, ErrNoTranscript) {
		t.Errorf("Fetch() error = %v, want ErrNoTranscript", err)
	}
	if len(exec.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(exec.calls))
	}
}

func TestYouTubeFetchInvalidReference(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := newTestYouTube(exec, "en").Fetch(context.Background(), "https://vimeo.com/123")
	if !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Fetch() error = %v, want ErrInvalidReference", err)
	}
	if len(exec.calls) != 0 {
		t.Errorf("executor called %d times", len(exec.calls))
	}
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestWhisperFetch(t *testing.T) {
	tmp := t.TempDir()
	var srtPath string
	exec := &fakeExecutor{run: func(dir, name string, args []string) (string, error) {
		switch name {
		case "ffmpeg":
			writeFile(t, args[len(args)-1], "RIFF")
		case "whisper-cli":
			if got := argAfter(args, "-m"); got != "models/ggml-base.bin" {
				t.Errorf("model arg = %q", got)
			}
			srtPath = argAfter(args, "--output-file") + ".srt"
			writeFile(t, srtPath, sampleSRT)
		default:
			t.Errorf("unexpected command %q", name)
		}
		return "", nil
	}}

	src := NewWhisper(exec, logger.NewNop(), WhisperOptions{
		BinaryPath: "whisper-cli",
		ModelPath:  "models/ggml-base.bin",
		TempDir:    tmp,
	})
	got, err := src.Fetch(context.Background(), "/videos/lesson one.mp4")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got.Meta.VideoID != "lesson one" || got.Meta.Source != SourceWhisper || got.Meta.SegmentCount != 3 {
		t.Errorf("Meta = %+v", got.Meta)
	}
	if strings.Join(exec.calls, ",") != "ffmpeg,whisper-cli" {
		t.Errorf("calls = %v", exec.calls)
	}
	if _, err := os.Stat(srtPath); !os.IsNotExist(err) {
		t.Errorf("temp SRT %s not cleaned up", srtPath)
	}
}

func TestWhisperFetchNotConfigured(t *testing.T) {
	exec := &fakeExecutor{}
	src := NewWhisper(exec, logger.NewNop(), WhisperOptions{TempDir: t.TempDir()})
	if _, err := src.Fetch(context.Background(), "a.mp4"); err == nil {
		t.Error("Fetch() error = nil, want configuration error")
	}
	if len(exec.calls) != 0 {
		t.Errorf("executor called %d times", len(exec.calls))
	}
}

type recordingSource struct {
	name string
	refs []string
}

func (r *recordingSource) Fetch(ctx context.Context, ref string) (*Transcript, error) {
	r.refs = append(r.refs, ref)
	return &Transcript{Text: r.name}, nil
}

func TestRouter(t *testing.T) {
	dir := t.TempDir()
	srt := filepath.Join(dir, "a.srt")
	mp4 := filepath.Join(dir, "b.mp4")
	pdf := filepath.Join(dir, "c.pdf")
	for _, p := range []string{srt, mp4, pdf} {
		writeFile(t, p, "x")
	}

	yt, file, media := &recordingSource{name: "youtube"}, &recordingSource{name: "file"}, &recordingSource{name: "media"}
	r := NewRouter(yt, file, media)

	tests := []struct {
		ref     string
		want    string
		wantErr error
	}{
		{srt, "file", nil},
		{mp4, "media", nil},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "youtube", nil},
		{"dQw4w9WgXcQ", "youtube", nil},
		{pdf, "", ErrInvalidReference},
		{"hello world", "", ErrInvalidReference},
	}

	for _, tt := range tests {
		got, err := r.Fetch(context.Background(), tt.ref)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got.Text != tt.want {
			t.Errorf("Fetch(%q) = %v, %v; want %s", tt.ref, got, err, tt.want)
		}
	}
}

func TestFileKinds(t *testing.T) {
	if !IsTranscriptFile("a/b.SRT") || !IsTranscriptFile("x.vtt") || IsTranscriptFile("x.mp4") {
		t.Error("IsTranscriptFile misclassified")
	}
	if !IsMediaFile("clip.MKV") || !IsMediaFile("talk.m4a") || IsMediaFile("notes.txt") {
		t.Error("IsMediaFile misclassified")
	}
}

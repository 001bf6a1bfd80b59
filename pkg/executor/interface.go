package executor

import "context"

// Executor runs external tools (yt-dlp, ffmpeg, whisper) and returns their stdout.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// LookPath reports where name resolves on PATH.
	LookPath(name string) (string, error)
}

package logger

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug level", "debug", "text"},
		{"info level", "info", "text"},
		{"warn level", "warn", "json"},
		{"error level", "error", "json"},
		{"invalid level", "invalid", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.level, tt.format)
			if log == nil {
				t.Error("New() returned nil")
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	ctx := context.Background()
	log := New("info", "text")

	// These should not panic
	log.Debug(ctx, "debug message")
	log.Info(ctx, "info message")
	log.Warn(ctx, "warn message")
	log.Error(ctx, "error message")

	log.Info(ctx, "formatted message: %s %d", "test", 123)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  []string
	}{
		{"debug", "debug", []string{"d", "i", "w", "e"}},
		{"info", "info", []string{"i", "w", "e"}},
		{"warn", "warn", []string{"w", "e"}},
		{"error", "error", []string{"e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(parseLevel(tt.level))
			log := fromZap(zap.New(core))
			ctx := context.Background()

			log.Debug(ctx, "d")
			log.Info(ctx, "i")
			log.Warn(ctx, "w")
			log.Error(ctx, "e")

			var got []string
			for _, e := range logs.All() {
				got = append(got, e.Message)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("logged %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatting(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := fromZap(zap.New(core))

	log.Info(context.Background(), "processed %d of %s", 3, "chunks")
	if all := logs.All(); len(all) != 1 || all[0].Message != "processed 3 of chunks" {
		t.Errorf("entries = %+v", all)
	}
}

package main

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range cases {
		logger := newLogger(tc.level)
		if !logger.Enabled(context.Background(), tc.want) {
			t.Errorf("level %q: logger should be enabled at %v", tc.level, tc.want)
		}
		if tc.want > slog.LevelDebug && logger.Enabled(context.Background(), tc.want-4) {
			t.Errorf("level %q: logger should not be enabled below %v", tc.level, tc.want)
		}
	}
}

func TestDBProbeName(t *testing.T) {
	if got := (dbProbe{}).Name(); got != "database" {
		t.Errorf("Name() = %q, want database", got)
	}
}

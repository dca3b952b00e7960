package logging

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":    slog.LevelError,
		" WARN ":   slog.LevelWarn,
		"warning":  slog.LevelWarn,
		"Info":     slog.LevelInfo,
		"debug":    slog.LevelDebug,
		"anything": slog.LevelDebug,
	}
	for in, want := range cases {
		if got := LevelFromString(in); got != want {
			t.Fatalf("LevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown", "component", "test")

	out := buf.String()
	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Fatalf("info record leaked at warn level: %s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("component=test")) {
		t.Fatalf("expected warn record with attrs, got: %s", out)
	}
}

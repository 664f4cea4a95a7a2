package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"info":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"":        slog.LevelDebug,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithFormatJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithFormat(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("run finished", "saved", 3)

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug record leaked at info level: %s", line)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", line, err)
	}
	if rec["msg"] != "run finished" || rec["saved"] != float64(3) {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNewWithFormatText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithFormat(&buf, "debug", "text").Debug("hello", "component", "test")
	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "component=test") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}

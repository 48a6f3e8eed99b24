package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerWithWriter("warn", &buf)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()

	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn leaked through:\n%s", out)
	}

	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("warn/error messages missing:\n%s", out)
	}
}

func TestLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerWithWriter("verbose", &buf)

	log.Debug("debug message")
	log.Info("info message")

	out := buf.String()

	if strings.Contains(out, "debug message") {
		t.Errorf("debug logged at default level:\n%s", out)
	}

	if !strings.Contains(out, "info message") {
		t.Errorf("info message missing:\n%s", out)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerWithWriter("info", &buf).With("run_id", "abc123")

	log.Info("started")

	if out := buf.String(); !strings.Contains(out, "run_id=abc123") {
		t.Errorf("child logger attribute missing:\n%s", out)
	}
}

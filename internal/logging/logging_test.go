package logging

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(42), "unknown(42)"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestForComponentTagsOutput(t *testing.T) {
	// Redirects the global log writer; not parallel-safe.
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	ForComponent("scanner").Info("walked %d files", 7)
	if got := buf.String(); !strings.Contains(got, "[INFO] [scanner] walked 7 files") {
		t.Errorf("tagged output = %q, want component tag between level and message", got)
	}

	buf.Reset()
	Info("starting up")
	if got := buf.String(); !strings.Contains(got, "[INFO] starting up") {
		t.Errorf("untagged output = %q, want bare level prefix", got)
	}
}

func TestLevelOrdering(t *testing.T) {
	t.Parallel()

	if !(LevelDebug < LevelInfo && LevelInfo < LevelWarn && LevelWarn < LevelError) {
		t.Error("log levels are not ordered by severity")
	}
}

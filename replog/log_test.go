package replog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerWritesLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Warn("report rejected", "tag", "bad_signature")

	out := buf.String()
	if !strings.Contains(out, "report rejected") || !strings.Contains(out, "bad_signature") {
		t.Fatalf("expected message and kv pair in output, got %q", out)
	}
}

func TestCritAppendsCallerFrame(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Crit("encoder invariant violated")

	if !strings.Contains(buf.String(), "at=") {
		t.Fatalf("expected Crit to append a caller frame, got %q", buf.String())
	}
}

func TestSetVerbosityDropsDebugBelowThreshold(t *testing.T) {
	SetVerbosity("warn")
	defer SetVerbosity("info")

	Debug("should not appear")
	Warn("should appear")

	if root.slog.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug level to be disabled at warn verbosity")
	}
	if !root.slog.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("expected warn level to be enabled at warn verbosity")
	}
}

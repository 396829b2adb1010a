package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})
	sl := NewStructuredLogger(logger)
	ctx := context.Background()

	sl.LogTransactionCreated(ctx, "01J0", "u1", "expense", "food", 4200, true, 0.7)
	out := buf.String()
	for _, want := range []string{"level=WARN", "component=http", "transaction_id=01J0", "is_outlier=true", "confidence=0.7"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}

	buf.Reset()
	sl.LogError(ctx, "boom", errors.New("disk full"), ErrorTypeDatabase, OpCreate, nil)
	if !strings.Contains(buf.String(), "error_type=database_error") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFromContextFallback(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Errorf("component = %q", got.Component())
	}
	l := New(DefaultConfig())
	if got := FromContext(NewContext(context.Background(), l)); got != l {
		t.Errorf("expected stored logger")
	}
}

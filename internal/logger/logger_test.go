package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewDefaultsToInfoTextHandler(t *testing.T) {
	l := New("bogus-level", "bogus-format")
	if l == nil {
		t.Fatal("expected a non-nil logger")
	}
	impl, ok := l.(*logger)
	if !ok {
		t.Fatalf("New returned %T, want *logger", l)
	}
	if _, ok := impl.slog.Handler().(*slog.TextHandler); !ok {
		t.Errorf("handler = %T, want *slog.TextHandler", impl.slog.Handler())
	}
	ctx := context.Background()
	if !impl.slog.Enabled(ctx, slog.LevelInfo) || impl.slog.Enabled(ctx, slog.LevelDebug) {
		t.Error("expected the level to default to info")
	}
	// These calls should be safe regardless of the handler chosen.
	l.Info("hello", "key", "value")
	op := l.StartOperation("test-op")
	op.Update("working")
	op.Complete("done")
}

func TestNullLoggerDiscardsEverything(t *testing.T) {
	l := NewNullLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	op := l.StartOperation("noop")
	op.Update("x")
	op.Complete("x")
	op.Fail("x")
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("reduced") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("reduced") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("reduced") }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("reduced") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Treemap done")

	out := buf.String()
	if !strings.Contains(out, "Treemap done (") {
		t.Errorf("progress output %q lacks message and duration", out)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield the default logger")
	}

	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext did not return the attached logger")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnCacheMiss(ctx, "reduce")
	h.OnCacheSet(ctx, "reduce", 128)
	h.OnCacheHit(ctx, "reduce")
	h.OnCacheHit(ctx, "reduce")
	if h.hits != 2 || h.misses != 1 {
		t.Errorf("hits, misses = %d, %d, want 2, 1", h.hits, h.misses)
	}

	h.OnReduceComplete(ctx, 3, "one-patch", 12, 1, time.Millisecond, nil)
	h.OnRenderComplete(ctx, "treemap", "png", 2048, time.Millisecond, nil)
	h.OnLoadComplete(ctx, 0, time.Millisecond, errors.New("no such file"))

	out := buf.String()
	for _, want := range []string{"reduced year", "one-patch", "rendered", "treemap"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug log lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "loaded inputs") {
		t.Error("failed load was logged as loaded")
	}
}

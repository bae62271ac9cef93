package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mchxo/fates-visualization/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 12 frames (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// logHooks writes pipeline events to the debug log and counts cache use for
// the summary line.
type logHooks struct {
	observability.NoopPipelineHooks
	logger *log.Logger

	hits, misses int
}

func (h *logHooks) OnLoadComplete(_ context.Context, restarts int, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Debug("loaded inputs", "restarts", restarts, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnReduceComplete(_ context.Context, year int, mode string, cohorts, patches int, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Debug("reduced year", "year", year, "mode", mode, "cohorts", cohorts, "patches", patches, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnRenderComplete(_ context.Context, kind, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "kind", kind, "format", format, "error", err)
		return
	}
	h.logger.Debug("rendered", "kind", kind, "format", format, "bytes", size, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *logHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *logHooks) OnCacheSet(context.Context, string, int) {}

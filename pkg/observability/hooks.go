// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Callers that own a pipeline runner pass
// their hooks in through [Hooks]; anything left nil falls back to a no-op.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Hand the hooks to the runner that emits the events
//
// Hooks are owned by the runner instance rather than registered globally, so
// two runners in one process (or in parallel tests) never see each other's
// events.
//
// # Usage
//
//	hooks := observability.Hooks{Pipeline: &myPipelineHooks{}}
//	runner := pipeline.NewRunner(nil, nil, logger, hooks)
//
// The runner emits events around each stage:
//
//	hooks.Pipeline.OnReduceStart(ctx, year, mode)
//	// ... reduce ...
//	hooks.Pipeline.OnReduceComplete(ctx, year, mode, cohorts, patches, duration, err)
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the visualization pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, paths []string)
	OnLoadComplete(ctx context.Context, restarts int, duration time.Duration, err error)

	// Reduce events
	OnReduceStart(ctx context.Context, year int, mode string)
	OnReduceComplete(ctx context.Context, year int, mode string, cohorts, patches int, duration time.Duration, err error)

	// OnFrame records one finished animation frame.
	OnFrame(ctx context.Context, index, total int, duration time.Duration)

	// Render events
	OnRenderStart(ctx context.Context, kind, format string)
	OnRenderComplete(ctx context.Context, kind, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the reduction cache.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, []string)                     {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnReduceStart(context.Context, int, string)                {}
func (NoopPipelineHooks) OnReduceComplete(context.Context, int, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnFrame(context.Context, int, int, time.Duration)   {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Hook Set
// =============================================================================

// Hooks bundles the hooks of one runner.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
}

// WithDefaults returns h with nil members replaced by no-ops.
func (h Hooks) WithDefaults() Hooks {
	if h.Pipeline == nil {
		h.Pipeline = NoopPipelineHooks{}
	}
	if h.Cache == nil {
		h.Cache = NoopCacheHooks{}
	}
	return h
}

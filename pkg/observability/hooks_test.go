package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, []string{"restarts", "param.nc"})
	p.OnLoadComplete(ctx, 12, time.Second, nil)
	p.OnReduceStart(ctx, 3, "basic")
	p.OnReduceComplete(ctx, 3, "basic", 40, 5, time.Second, nil)
	p.OnFrame(ctx, 1, 12, time.Second)
	p.OnRenderStart(ctx, "treemap", "png")
	p.OnRenderComplete(ctx, "treemap", "png", 1024, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "reduce")
	c.OnCacheMiss(ctx, "reduce")
	c.OnCacheSet(ctx, "reduce", 1024)
}

func TestWithDefaults(t *testing.T) {
	h := Hooks{}.WithDefaults()
	if _, ok := h.Pipeline.(NoopPipelineHooks); !ok {
		t.Error("nil Pipeline should become NoopPipelineHooks")
	}
	if _, ok := h.Cache.(NoopCacheHooks); !ok {
		t.Error("nil Cache should become NoopCacheHooks")
	}

	custom := &testPipelineHooks{}
	h = Hooks{Pipeline: custom}.WithDefaults()
	if h.Pipeline != custom {
		t.Error("WithDefaults should keep custom pipeline hooks")
	}
}

func TestHooksAreInstanceOwned(t *testing.T) {
	a := Hooks{Pipeline: &testPipelineHooks{}}.WithDefaults()
	b := Hooks{Pipeline: &testPipelineHooks{}}.WithDefaults()

	a.Pipeline.OnFrame(context.Background(), 1, 2, time.Millisecond)
	if a.Pipeline.(*testPipelineHooks).frames != 1 {
		t.Error("frame not recorded")
	}
	if b.Pipeline.(*testPipelineHooks).frames != 0 {
		t.Error("frame leaked into another hook set")
	}
}

// Test implementations
type testPipelineHooks struct {
	NoopPipelineHooks
	frames int
}

func (h *testPipelineHooks) OnFrame(context.Context, int, int, time.Duration) { h.frames++ }

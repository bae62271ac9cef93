package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerCancel(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinnerWithContext(ctx, "Animation")
			s.w = &bytes.Buffer{}
			s.Start()
			time.Sleep(60 * time.Millisecond)
			if !s.Cancelled() {
				t.Error("spinner not cancelled by its context")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := newSpinner("Treemap")
	s.w = &bytes.Buffer{}
	s.Start()
	s.Stop()
	s.Stop()
	if !s.Cancelled() {
		t.Error("stopped spinner reports not cancelled")
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	var out bytes.Buffer
	s := newSpinner("Animation")
	s.w = &out
	s.Start()
	s.SetMessage("Animation: year 0003 (3/12)")
	time.Sleep(3 * spinnerTick)
	s.SetMessage("Animation")
	s.Stop()

	if s.widest != len("Animation: year 0003 (3/12)") {
		t.Errorf("widest = %d, want the longest message", s.widest)
	}
	if !strings.Contains(out.String(), "year 0003") {
		t.Errorf("spinner output lacks the updated message: %q", out.String())
	}
}

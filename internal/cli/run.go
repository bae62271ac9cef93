package cli

import (
	"context"
	"fmt"

	"github.com/mchxo/fates-visualization/pkg/pipeline"
)

// job is one pipeline call of a command.
type job func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options) ([]*pipeline.Artifact, error)

// single adapts a pipeline method writing one artifact.
func single(fn func(*pipeline.Runner, context.Context, pipeline.Options) (*pipeline.Artifact, error)) job {
	return func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options) ([]*pipeline.Artifact, error) {
		art, err := fn(r, ctx, opts)
		if err != nil {
			return nil, err
		}
		return []*pipeline.Artifact{art}, nil
	}
}

// run executes fn with a runner, shows a spinner with the frame progress and
// prints the written files.
func (c *CLI) run(ctx context.Context, label string, noCache bool, opts pipeline.Options, fn job) error {
	logger := loggerFromContext(ctx)
	runner, hooks, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = logger
	prog := newProgress(logger)

	var spin *Spinner
	if !c.verbose() {
		spin = newSpinnerWithContext(ctx, label)
		spin.Start()
		defer spin.Stop()
		opts.OnFrame = func(year string, done, total int) {
			spin.SetMessage(fmt.Sprintf("%s: year %s (%d/%d)", label, year, done, total))
		}
	}

	arts, err := fn(ctx, runner, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	frames := 0
	for _, a := range arts {
		frames = max(frames, a.Frames)
	}
	prog.done(fmt.Sprintf("%s done", label))
	for _, a := range arts {
		printFile(a.Path)
	}
	printStats(frames, hooks.hits, hooks.misses)
	return nil
}

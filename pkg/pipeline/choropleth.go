package pipeline

import (
	"context"

	"github.com/mchxo/fates-visualization/pkg/render/choropleth"
)

// Choropleth maps opts.Variable of the history file at opts.TimeIndex onto
// the grid cells of the parameter file.
func (r *Runner) Choropleth(ctx context.Context, opts Options) (*Artifact, error) {
	if err := opts.ValidateForMap(); err != nil {
		return nil, err
	}
	b, err := r.Load(ctx, Options{ParamPath: opts.ParamPath, HistPath: opts.HistPath, Open: opts.Open})
	if err != nil {
		return nil, err
	}
	defer b.Close()

	param, err := b.Param()
	if err != nil {
		return nil, err
	}
	hist, err := b.Hist()
	if err != nil {
		return nil, err
	}
	cells, err := choropleth.Cells(param, hist, opts.Variable, opts.TimeIndex)
	if err != nil {
		return nil, wrap(err, "map %s", opts.Variable)
	}
	r.Logger.Debug("collected map cells", "variable", opts.Variable, "cells", len(cells))

	title := opts.Title
	if title == "" {
		title = opts.Variable
	}
	mapOpts := []choropleth.Option{
		choropleth.WithTitle(title),
		choropleth.WithCenter(opts.CenterLat, opts.CenterLon),
		choropleth.WithZoom(opts.Zoom),
		choropleth.WithToken(opts.MapToken),
	}
	if opts.Width > 0 && opts.Height > 0 {
		mapOpts = append(mapOpts, choropleth.WithSize(int(opts.Width), int(opts.Height)))
	}
	art, err := r.write(ctx, "map", opts.Format, opts.OutputPath(), func() ([]byte, error) {
		return choropleth.Render(cells, opts.Format, mapOpts...)
	})
	if err != nil {
		return nil, err
	}
	art.Frames = 1
	return art, nil
}

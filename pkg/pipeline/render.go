package pipeline

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/mchxo/fates-visualization/pkg/errors"
	tables "github.com/mchxo/fates-visualization/pkg/io"
	"github.com/mchxo/fates-visualization/pkg/reduce"
	"github.com/mchxo/fates-visualization/pkg/render"
	"github.com/mchxo/fates-visualization/pkg/render/treemap"
)

// Treemap draws the treemap of opts.Year.
func (r *Runner) Treemap(ctx context.Context, opts Options) (*Artifact, error) {
	if err := opts.ValidateForTreemap(); err != nil {
		return nil, err
	}
	b, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	res, err := r.Reduce(ctx, b, opts.Year, opts)
	if err != nil {
		return nil, err
	}
	art, err := r.write(ctx, "treemap", opts.Format, opts.OutputPath(), func() ([]byte, error) {
		return treemap.Render(res, opts.Format, treemapOptions(opts)...)
	})
	if err != nil {
		return nil, err
	}
	art.Frames = 1
	return art, nil
}

func treemapOptions(opts Options) []treemap.Option {
	var out []treemap.Option
	if opts.Width > 0 && opts.Height > 0 {
		out = append(out, treemap.WithSize(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch))
	}
	if len(opts.TypeNames) > 0 {
		out = append(out, treemap.WithTypeNames(opts.TypeNames...))
	}
	if opts.Title != "" {
		out = append(out, treemap.WithTitle(opts.Title))
	}
	return out
}

// AnimateTreemap draws one treemap per restart year and assembles them.
//
// For gif output every frame is written as <year>.png into
// <OutputDir>/<FramesFolder> and read back from there. The frames folder is
// removed afterwards unless KeepFrames is set, also when a frame fails. A
// frames folder that existed before the run is kept; only the frames are
// removed from it. For html output the frames are inline SVG behind a year
// slider and nothing is written besides the page.
func (r *Runner) AnimateTreemap(ctx context.Context, opts Options) (*Artifact, error) {
	if err := opts.ValidateForAnimation(); err != nil {
		return nil, err
	}
	b, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	years := b.Years()
	frame := func(year int, format string) ([]byte, error) {
		res, err := r.Reduce(ctx, b, year, opts)
		if err != nil {
			return nil, err
		}
		return treemap.Render(res, format, treemapOptions(opts)...)
	}

	var art *Artifact
	if opts.Format == render.FormatHTML {
		art, err = r.sliderPage(ctx, opts, years, frame)
	} else {
		art, err = r.gifFromFrames(ctx, opts, years, frame)
	}
	if err != nil {
		return nil, err
	}
	art.Frames = len(years)
	return art, nil
}

// frameFunc renders the frame of one year in a format.
type frameFunc func(year int, format string) ([]byte, error)

func (r *Runner) sliderPage(ctx context.Context, opts Options, years []int, frame frameFunc) (*Artifact, error) {
	page := render.SliderPage{Title: opts.FileName, Prefix: "Year: "}
	for i, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		svg, err := frame(year, render.FormatSVG)
		if err != nil {
			return nil, err
		}
		page.Frames = append(page.Frames, render.SliderFrame{Label: strconv.Itoa(year), SVG: svg})
		r.frameDone(ctx, opts, strconv.Itoa(year), i+1, len(years), start)
	}
	return r.write(ctx, "animation", opts.Format, opts.OutputPath(), page.Render)
}

func (r *Runner) gifFromFrames(ctx context.Context, opts Options, years []int, frame frameFunc) (*Artifact, error) {
	dir, err := acquireFramesDir(filepath.Join(opts.OutputDir, opts.FramesFolder), opts.KeepFrames)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := dir.release(); err != nil {
			r.Logger.Warn("could not remove frames", "dir", dir.path, "error", err)
		}
	}()

	for i, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		data, err := frame(year, render.FormatPNG)
		if err != nil {
			return nil, err
		}
		if err := dir.write(year, data); err != nil {
			return nil, err
		}
		r.frameDone(ctx, opts, strconv.Itoa(year), i+1, len(years), start)
	}

	return r.write(ctx, "animation", opts.Format, opts.OutputPath(), func() ([]byte, error) {
		frames := make([]image.Image, 0, len(years))
		for _, year := range years {
			img, err := render.ReadPNG(framePath(dir.path, year))
			if err != nil {
				return nil, err
			}
			frames = append(frames, img)
		}
		return render.GIF(frames, opts.FPS)
	})
}

func framePath(dir string, year int) string {
	return filepath.Join(dir, strconv.Itoa(year)+"."+render.FormatPNG)
}

// framesDir is the folder the PNG frames of an animation are written to.
type framesDir struct {
	path    string
	created bool
	keep    bool
	written []string
}

// acquireFramesDir creates path if needed. On release a folder created here
// is removed entirely; in a pre-existing folder only the frames written
// through it are removed.
func acquireFramesDir(path string, keep bool) (*framesDir, error) {
	_, statErr := os.Stat(path)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutputWrite, err, "create frames folder %s", path)
	}
	return &framesDir{path: path, created: statErr != nil, keep: keep}, nil
}

func (d *framesDir) write(year int, data []byte) error {
	p := framePath(d.path, year)
	if err := render.WriteFile(p, data); err != nil {
		return err
	}
	d.written = append(d.written, p)
	return nil
}

func (d *framesDir) release() error {
	switch {
	case d.keep:
		return nil
	case d.created:
		return os.RemoveAll(d.path)
	}
	for _, p := range d.written {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (r *Runner) frameDone(ctx context.Context, opts Options, label string, done, total int, start time.Time) {
	r.Hooks.Pipeline.OnFrame(ctx, done, total, time.Since(start))
	r.Logger.Debug("rendered frame", "year", label, "frame", done, "of", total, "duration", time.Since(start))
	if opts.OnFrame != nil {
		opts.OnFrame(label, done, total)
	}
}

// =============================================================================
// Export
// =============================================================================

// Export writes the reduced tables of opts.Year, or of every year when Year
// is 0. JSON output is one file; CSV output is a <name>_cohorts.csv and a
// <name>_patches.csv file.
func (r *Runner) Export(ctx context.Context, opts Options) ([]*Artifact, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}
	b, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	years := b.Years()
	if opts.Year != 0 {
		years = []int{opts.Year}
	}
	results := make([]*reduce.Result, 0, len(years))
	for i, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		res, err := r.Reduce(ctx, b, year, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		r.frameDone(ctx, opts, strconv.Itoa(year), i+1, len(years), start)
	}
	return r.writeTables(ctx, opts, results)
}

func (r *Runner) writeTables(ctx context.Context, opts Options, results []*reduce.Result) ([]*Artifact, error) {
	type table struct {
		path  string
		write func(w *bytes.Buffer) error
	}
	var out []table
	switch opts.Format {
	case FormatJSON:
		out = []table{{opts.OutputPath(), func(w *bytes.Buffer) error { return tables.WriteJSON(w, results...) }}}
	case FormatCSV:
		out = []table{
			{render.OutputPath(opts.OutputDir, opts.FileName+"_cohorts", FormatCSV), func(w *bytes.Buffer) error { return tables.WriteCohortsCSV(w, results...) }},
			{render.OutputPath(opts.OutputDir, opts.FileName+"_patches", FormatCSV), func(w *bytes.Buffer) error { return tables.WritePatchesCSV(w, results...) }},
		}
	}

	var arts []*Artifact
	for _, t := range out {
		art, err := r.write(ctx, "tables", opts.Format, t.path, func() ([]byte, error) {
			var buf bytes.Buffer
			if err := t.write(&buf); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		})
		if err != nil {
			return nil, err
		}
		art.Frames = len(results)
		arts = append(arts, art)
	}
	return arts, nil
}

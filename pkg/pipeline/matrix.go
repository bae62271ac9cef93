package pipeline

import (
	"context"
	"image"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/plot/vg"

	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/render"
	"github.com/mchxo/fates-visualization/pkg/render/sunburst"
)

// Matrix is the grid of model runs drawn by a sunburst figure. It is read
// from a TOML file:
//
//	title = "Fire experiments"
//	types = ["Pine", "Cedar"]
//
//	[[variables]]
//	label = "Mortality"
//	name  = "FATES_MORTALITY_CANOPY_SZPF"
//
//	[[rows]]
//	runs = [
//	  { name = "control", hist = "control.h0.nc" },
//	  { name = "burned",  hist = "burned.h0.nc" },
//	]
type Matrix struct {
	Title     string              `toml:"title"`
	Types     []string            `toml:"types"`
	Variables []sunburst.Variable `toml:"variables"`
	Rows      []Row               `toml:"rows"`
}

// Row is one row of the matrix.
type Row struct {
	Runs []Run `toml:"runs"`
}

// Run is one model run: a display name and its history file.
type Run struct {
	Name string `toml:"name"`
	Hist string `toml:"hist"`
}

// LoadMatrix reads a run matrix. Relative history paths are resolved
// against the folder of the matrix file.
func LoadMatrix(path string) (*Matrix, error) {
	var m Matrix
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read run matrix %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "run matrix %s: unknown keys %s", path, strings.Join(names, ", "))
	}

	base := filepath.Dir(path)
	for i := range m.Rows {
		for j, run := range m.Rows[i].Runs {
			if run.Hist != "" && !filepath.IsAbs(run.Hist) {
				m.Rows[i].Runs[j].Hist = filepath.Join(base, run.Hist)
			}
		}
	}
	return &m, m.Validate()
}

// Validate checks that the matrix names at least one run, type and
// variable, and that every run has a history file.
func (m *Matrix) Validate() error {
	if len(m.Types) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "run matrix has no functional types")
	}
	if len(m.Variables) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "run matrix has no variables")
	}
	for _, v := range m.Variables {
		if v.Name == "" {
			return errors.New(errors.ErrCodeInvalidInput, "variable %q has no history name", v.Label)
		}
	}
	runs := 0
	for i, row := range m.Rows {
		for j, run := range row.Runs {
			if run.Hist == "" {
				return errors.New(errors.ErrCodeMissingPath, "run %d,%d (%q) has no history file", i+1, j+1, run.Name)
			}
			runs++
		}
	}
	if runs == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "run matrix has no runs")
	}
	return nil
}

// =============================================================================
// Sunburst
// =============================================================================

// Sunburst draws the run matrix. gif and html output hold one frame per
// year common to every run; png, svg and pdf draw opts.Year, defaulting to
// the first year.
func (r *Runner) Sunburst(ctx context.Context, opts Options) (*Artifact, error) {
	if err := opts.ValidateForSunburst(); err != nil {
		return nil, err
	}
	cells, years, err := r.loadMatrix(ctx, opts)
	if err != nil {
		return nil, err
	}

	var sbOpts []sunburst.Option
	if opts.Width > 0 && opts.Height > 0 {
		sbOpts = append(sbOpts, sunburst.WithSize(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch))
	}
	frame := func(year int, format string) ([]byte, error) {
		return sunburst.Render(cells, year, format, sbOpts...)
	}

	var art *Artifact
	switch opts.Format {
	case render.FormatHTML:
		page := render.SliderPage{Title: opts.Matrix.Title, Prefix: "Year: "}
		if page.Title == "" {
			page.Title = opts.FileName
		}
		for y := 1; y <= years; y++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start := time.Now()
			svg, err := frame(y, render.FormatSVG)
			if err != nil {
				return nil, err
			}
			page.Frames = append(page.Frames, render.SliderFrame{Label: strconv.Itoa(y), SVG: svg})
			r.frameDone(ctx, opts, strconv.Itoa(y), y, years, start)
		}
		art, err = r.write(ctx, "sunburst", opts.Format, opts.OutputPath(), page.Render)
	case render.FormatGIF:
		art, err = r.write(ctx, "sunburst", opts.Format, opts.OutputPath(), func() ([]byte, error) {
			return r.sunburstGIF(ctx, opts, years, frame)
		})
	default:
		year := max(opts.Year, 1)
		art, err = r.write(ctx, "sunburst", opts.Format, opts.OutputPath(), func() ([]byte, error) {
			return frame(year, opts.Format)
		})
		years = 1
	}
	if err != nil {
		return nil, err
	}
	art.Frames = years
	return art, nil
}

func (r *Runner) sunburstGIF(ctx context.Context, opts Options, years int, frame frameFunc) ([]byte, error) {
	frames := make([]image.Image, 0, years)
	for y := 1; y <= years; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		data, err := frame(y, render.FormatPNG)
		if err != nil {
			return nil, err
		}
		img, err := render.DecodePNG(data)
		if err != nil {
			return nil, err
		}
		frames = append(frames, img)
		r.frameDone(ctx, opts, strconv.Itoa(y), y, years, start)
	}
	return render.GIF(frames, opts.FPS)
}

// loadMatrix processes the history file of every run and returns the cells
// with the number of years all runs share.
func (r *Runner) loadMatrix(ctx context.Context, opts Options) ([][]sunburst.Cell, int, error) {
	m := opts.Matrix
	cells := make([][]sunburst.Cell, len(m.Rows))
	years := -1
	for i, row := range m.Rows {
		for _, run := range row.Runs {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
			series, err := r.processRun(ctx, run, m, opts.Open)
			if err != nil {
				return nil, 0, err
			}
			if years < 0 || series.Years() < years {
				years = series.Years()
			}
			cells[i] = append(cells[i], sunburst.Cell{Name: run.Name, Series: series})
		}
	}
	if years <= 0 {
		return nil, 0, errors.New(errors.ErrCodeYearNotFound, "history files hold no year after the initial step")
	}
	r.Logger.Debug("loaded run matrix", "rows", len(cells), "years", years)
	return cells, years, nil
}

func (r *Runner) processRun(ctx context.Context, run Run, m *Matrix, open dataset.Opener) (*sunburst.Series, error) {
	r.Hooks.Pipeline.OnLoadStart(ctx, []string{run.Hist})
	start := time.Now()
	b, err := dataset.Open(dataset.Options{HistPath: run.Hist, Open: open})
	r.Hooks.Pipeline.OnLoadComplete(ctx, 0, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	hist, err := b.Hist()
	if err != nil {
		return nil, err
	}
	series, err := sunburst.Process(hist, m.Variables, m.Types)
	if err != nil {
		return nil, wrap(err, "run %q", run.Name)
	}
	return series, nil
}

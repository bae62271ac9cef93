package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mchxo/fates-visualization/pkg/allometry"
	"github.com/mchxo/fates-visualization/pkg/cache"
	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
	tables "github.com/mchxo/fates-visualization/pkg/io"
	"github.com/mchxo/fates-visualization/pkg/observability"
	"github.com/mchxo/fates-visualization/pkg/reduce"
	"github.com/mchxo/fates-visualization/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, logger and hooks - it
// doesn't store pipeline results. Every figure method opens its own
// datasets and closes them before returning.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Hooks  observability.Hooks
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, hooks observability.Hooks) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Hooks:  hooks.WithDefaults(),
	}
}

// Artifact describes one written output file.
type Artifact struct {
	Path   string
	Format string
	Size   int
	Frames int // number of years drawn
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// =============================================================================
// Load
// =============================================================================

// Load opens the datasets named by opts. The caller closes the bundle.
func (r *Runner) Load(ctx context.Context, opts Options) (*dataset.Bundle, error) {
	paths := []string{opts.RestartDir, opts.ParamPath, opts.HistPath}
	r.Hooks.Pipeline.OnLoadStart(ctx, paths)
	start := time.Now()

	b, err := dataset.Open(opts.datasetOptions())
	n := 0
	if b != nil {
		n = len(b.Years())
	}
	r.Hooks.Pipeline.OnLoadComplete(ctx, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if opts.RestartDir != "" && n == 0 {
		b.Close()
		return nil, errors.New(errors.ErrCodeInvalidInput, "no restart files in %s", opts.RestartDir)
	}
	r.Logger.Debug("opened datasets", "restarts", n, "duration", time.Since(start))
	return b, nil
}

// =============================================================================
// Reduce
// =============================================================================

// Reduce computes the cohort and patch tables of one restart year. Results
// of file-backed bundles are cached by input fingerprint and options.
func (r *Runner) Reduce(ctx context.Context, b *dataset.Bundle, year int, opts Options) (*reduce.Result, error) {
	ro := opts.ReduceOptions()
	r.Hooks.Pipeline.OnReduceStart(ctx, year, string(ro.Mode))
	start := time.Now()

	res, err := r.reduce(ctx, b, year, opts.ParamPath, ro)
	cohorts, patches := 0, 0
	if res != nil {
		cohorts, patches = len(res.Cohorts), len(res.Patches)
	}
	r.Hooks.Pipeline.OnReduceComplete(ctx, year, string(ro.Mode), cohorts, patches, time.Since(start), err)
	if err != nil {
		return nil, wrap(err, "reduce year %d", year)
	}
	return res, nil
}

func (r *Runner) reduce(ctx context.Context, b *dataset.Bundle, year int, paramPath string, ro reduce.Options) (*reduce.Result, error) {
	key := r.reduceKey(b, year, paramPath, ro)
	if key != "" {
		if res, ok := r.cached(ctx, key); ok {
			return res, nil
		}
	}

	restart, err := b.Restart(year)
	if err != nil {
		return nil, err
	}
	param, err := b.Param()
	if err != nil {
		return nil, err
	}
	in, err := reduce.InputFrom(restart, param, year)
	if err != nil {
		return nil, err
	}
	res, err := reduce.Reduce(in, ro)
	if err != nil {
		return nil, err
	}
	if res.Shape == reduce.ShapeNeedsPadding {
		r.Logger.Debug("padded patch ages", "year", year)
	}
	if res.Merge.Count > 0 {
		r.Logger.Debug("merged small patches", "year", year, "count", res.Merge.Count, "area", res.Merge.Area)
	}

	if key != "" {
		var buf bytes.Buffer
		if err := tables.WriteJSON(&buf, res); err == nil {
			if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLReduce); err == nil {
				r.Hooks.Cache.OnCacheSet(ctx, "reduce", buf.Len())
			}
		}
	}
	return res, nil
}

// reduceKey returns the cache key of a reduction, or "" if the inputs are
// not files on disk.
func (r *Runner) reduceKey(b *dataset.Bundle, year int, paramPath string, ro reduce.Options) string {
	if _, ok := r.Cache.(*cache.NullCache); ok || paramPath == "" {
		return ""
	}
	for _, f := range b.Files() {
		if f.Year != year || f.Path == "" {
			continue
		}
		fp, err := cache.Fingerprint(f.Path, paramPath)
		if err != nil {
			return ""
		}
		return r.Keyer.ReduceKey(fp, cache.ReduceKeyOpts{
			Year:           year,
			Mode:           string(ro.Mode),
			MergeThreshold: ro.MergeThreshold,
		})
	}
	return ""
}

func (r *Runner) cached(ctx context.Context, key string) (*reduce.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		r.Hooks.Cache.OnCacheMiss(ctx, "reduce")
		return nil, false
	}
	results, err := tables.ReadJSON(bytes.NewReader(data))
	if err != nil || len(results) != 1 {
		r.Hooks.Cache.OnCacheMiss(ctx, "reduce")
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	r.Hooks.Cache.OnCacheHit(ctx, "reduce")
	return results[0], true
}

// =============================================================================
// Render
// =============================================================================

// write renders one artifact and writes it to path.
func (r *Runner) write(ctx context.Context, kind, format, path string, draw func() ([]byte, error)) (*Artifact, error) {
	r.Hooks.Pipeline.OnRenderStart(ctx, kind, format)
	start := time.Now()

	data, err := draw()
	if err == nil {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			err = errors.Wrap(errors.ErrCodeOutputWrite, mkErr, "create output folder for %s", path)
		}
	}
	if err == nil {
		err = render.WriteFile(path, data)
	}
	r.Hooks.Pipeline.OnRenderComplete(ctx, kind, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("wrote artifact", "kind", kind, "path", path, "bytes", len(data), "duration", time.Since(start))
	return &Artifact{Path: path, Format: format, Size: len(data)}, nil
}

// =============================================================================
// Inspect
// =============================================================================

// Summary lists what a set of input files holds.
type Summary struct {
	Restarts  []dataset.RestartFile
	ParamVars []string
	HistVars  []string
	TypeCount int
	Allometry error // nil if the parameter file supports crown areas
	FirstYear *reduce.Result
}

// Inspect opens the inputs and summarizes them. The first restart year is
// reduced so structural problems show up before a long animation.
func (r *Runner) Inspect(ctx context.Context, opts Options) (*Summary, error) {
	opts.SetDefaults()
	b, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	s := &Summary{Restarts: b.Files()}
	if param, err := b.Param(); err == nil {
		s.ParamVars = param.Variables()
		s.TypeCount, s.Allometry = typeCount(param)
	}
	if hist, err := b.Hist(); err == nil {
		s.HistVars = hist.Variables()
	}
	if years := b.Years(); len(years) > 0 && s.Allometry == nil {
		res, err := r.Reduce(ctx, b, years[0], opts)
		if err != nil {
			return nil, err
		}
		s.FirstYear = res
	}
	return s, nil
}

func typeCount(param dataset.Dataset) (int, error) {
	p, err := allometry.ParamsFrom(param)
	if err != nil {
		return 0, err
	}
	if err := p.Validate(); err != nil {
		return p.NumTypes(), err
	}
	return p.NumTypes(), nil
}

// wrap adds context to err, keeping its code if it has one.
func wrap(err error, format string, args ...any) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, format, args...)
}

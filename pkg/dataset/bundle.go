package dataset

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/mchxo/fates-visualization/pkg/errors"
)

// restartPattern matches the model year embedded in restart file names,
// e.g. "run.clm2.r.0012-01-01-00000.nc".
var restartPattern = regexp.MustCompile(`\.(\d{4})-`)

// Options configures [Open].
type Options struct {
	// RestartDir is a folder of restart files. Only names containing
	// ".YYYY-" are read. Requires ParamPath.
	RestartDir string
	// ParamPath is the parameter file.
	ParamPath string
	// HistPath is an optional history file.
	HistPath string
	// Open opens a single file. Defaults to OpenFile.
	Open Opener
}

// RestartFile describes one discovered restart file.
type RestartFile struct {
	Year      int    // 1-based position in sorted file order
	ModelYear int    // year parsed from the file name
	Path      string // absolute path
}

// Bundle holds the datasets of one model run. It owns every handle it
// opened; Close releases them.
type Bundle struct {
	restart map[int]Dataset
	files   []RestartFile
	param   Dataset
	hist    Dataset
}

// Open discovers and opens the files named by opts.
//
// At least one path must be set, and a RestartDir requires a ParamPath. On any failure the files opened so far are closed.
func Open(opts Options) (*Bundle, error) {
	if opts.RestartDir == "" && opts.ParamPath == "" && opts.HistPath == "" {
		return nil, errors.New(errors.ErrCodeMissingPath, "no file path specified")
	}
	if opts.RestartDir != "" && opts.ParamPath == "" {
		return nil, errors.New(errors.ErrCodeMissingPath, "no parameter file specified")
	}
	open := opts.Open
	if open == nil {
		open = OpenFile
	}

	b := &Bundle{restart: make(map[int]Dataset)}
	ok := false
	defer func() {
		if !ok {
			b.Close()
		}
	}()

	if opts.RestartDir != "" {
		files, err := DiscoverRestarts(opts.RestartDir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			ds, err := open(f.Path)
			if err != nil {
				return nil, openErr(err, f.Path)
			}
			b.restart[f.Year] = ds
			b.files = append(b.files, f)
		}
	}
	if opts.ParamPath != "" {
		ds, err := open(opts.ParamPath)
		if err != nil {
			return nil, openErr(err, opts.ParamPath)
		}
		b.param = ds
	}
	if opts.HistPath != "" {
		ds, err := open(opts.HistPath)
		if err != nil {
			return nil, openErr(err, opts.HistPath)
		}
		b.hist = ds
	}

	ok = true
	return b, nil
}

func openErr(err error, path string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeDatasetOpen, err, "open %s", path)
}

// DiscoverRestarts lists dir, sorts the entries by name and returns the ones
// whose name carries a model year, numbered 1..N in that order.
func DiscoverRestarts(dir string) ([]RestartFile, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "restart folder %s", dir)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatasetOpen, err, "read restart folder %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	var files []RestartFile
	for _, name := range names {
		m := restartPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		modelYear, _ := strconv.Atoi(m[1])
		files = append(files, RestartFile{
			Year:      len(files) + 1,
			ModelYear: modelYear,
			Path:      filepath.Join(abs, name),
		})
	}
	return files, nil
}

// NewBundle assembles a bundle from already opened datasets. Restart
// datasets are numbered 1..N in the given order. The bundle takes ownership
// of every non-nil dataset.
func NewBundle(restarts []Dataset, param, hist Dataset) *Bundle {
	b := &Bundle{restart: make(map[int]Dataset, len(restarts)), param: param, hist: hist}
	for i, ds := range restarts {
		b.restart[i+1] = ds
		b.files = append(b.files, RestartFile{Year: i + 1})
	}
	return b
}

// Years returns the available restart years in ascending order.
func (b *Bundle) Years() []int {
	years := make([]int, 0, len(b.files))
	for _, f := range b.files {
		years = append(years, f.Year)
	}
	return years
}

// Files returns the discovered restart files.
func (b *Bundle) Files() []RestartFile { return slices.Clone(b.files) }

// Restart returns the restart dataset for year.
func (b *Bundle) Restart(year int) (Dataset, error) {
	ds, ok := b.restart[year]
	if !ok {
		return nil, errors.New(errors.ErrCodeYearNotFound, "no restart file for year %d (have %d)", year, len(b.restart))
	}
	return ds, nil
}

// Param returns the parameter dataset.
func (b *Bundle) Param() (Dataset, error) {
	if b.param == nil {
		return nil, errors.New(errors.ErrCodeMissingPath, "no parameter file loaded")
	}
	return b.param, nil
}

// Hist returns the history dataset.
func (b *Bundle) Hist() (Dataset, error) {
	if b.hist == nil {
		return nil, errors.New(errors.ErrCodeMissingPath, "no history file loaded")
	}
	return b.hist, nil
}

// Close closes every dataset in the bundle and returns the first error.
func (b *Bundle) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	for _, f := range b.files {
		if ds := b.restart[f.Year]; ds != nil {
			keep(ds.Close())
		}
	}
	if b.param != nil {
		keep(b.param.Close())
	}
	if b.hist != nil {
		keep(b.hist.Close())
	}
	b.restart = map[int]Dataset{}
	b.files = nil
	b.param, b.hist = nil, nil
	return first
}

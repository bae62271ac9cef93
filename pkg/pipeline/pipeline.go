// Package pipeline provides the core visualization pipeline for fatesviz.
//
// This package implements the complete load → reduce → render pipeline the
// CLI commands run. By centralizing this logic, every figure gets the same
// option defaults, dataset handling and artifact writing.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Open the restart files, parameter file and history file
//  2. Reduce: Turn the arrays of one restart year into cohort and patch
//     tables (cached between runs)
//  3. Render: Draw the figure and write it atomically into the output dir
//
// # Usage
//
// Create a Runner and render a figure:
//
//	runner := pipeline.NewRunner(nil, nil, logger, observability.Hooks{})
//	opts := pipeline.Options{
//	    RestartDir: "restart",
//	    ParamPath:  "params.nc",
//	    Format:     "png",
//	    Year:       3,
//	}
//	art, err := runner.Treemap(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(art.Path)
//
// Run individual stages:
//
//	b, err := runner.Load(ctx, opts)
//	defer b.Close()
//	res, err := runner.Reduce(ctx, b, 3, opts)
package pipeline

import (
	"io"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/reduce"
	"github.com/mchxo/fates-visualization/pkg/render"
	"github.com/mchxo/fates-visualization/pkg/render/choropleth"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI and library callers
// =============================================================================

const (
	// DefaultOutputDir is where artifacts are written.
	DefaultOutputDir = "."

	// DefaultFramesFolder is the folder, inside the output dir, holding the
	// per-year frames of an animation.
	DefaultFramesFolder = "individuals"

	// DefaultFPS is the animation frame rate.
	DefaultFPS = render.DefaultFPS

	// DefaultYear is the restart year drawn by a single treemap.
	DefaultYear = 1
)

// Default artifact names per figure.
const (
	DefaultTreemapName   = "treemap"
	DefaultAnimationName = "treemap_animation"
	DefaultSunburstName  = "sunburst"
	DefaultMapName       = "map"
	DefaultExportName    = "tables"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Formats accepted by each figure. The first entry is the default.
var (
	TreemapFormats   = []string{render.FormatPNG, render.FormatSVG, render.FormatPDF}
	AnimationFormats = []string{render.FormatGIF, render.FormatHTML}
	SunburstFormats  = []string{render.FormatGIF, render.FormatHTML, render.FormatPNG, render.FormatSVG, render.FormatPDF}
	MapFormats       = []string{render.FormatHTML, render.FormatGeoJSON, render.FormatPNG, render.FormatSVG, render.FormatPDF}
	ExportFormats    = []string{FormatJSON, FormatCSV}
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// Zero values mean "use the default"; call one of the ValidateFor methods
// before use.
type Options struct {
	// Input options
	RestartDir string `json:"restart_dir,omitempty"`
	ParamPath  string `json:"param_path,omitempty"`
	HistPath   string `json:"hist_path,omitempty"`

	// Reduce options
	Mode           reduce.Mode `json:"mode,omitempty"`
	MergeThreshold float64     `json:"merge_threshold,omitempty"`
	Year           int         `json:"year,omitempty"` // 1-based restart year; 0 means all years for Export

	// Output options
	Format    string   `json:"format,omitempty"`
	OutputDir string   `json:"output_dir,omitempty"`
	FileName  string   `json:"file_name,omitempty"` // without extension
	Width     float64  `json:"width,omitempty"`     // inches, or pixels for maps
	Height    float64  `json:"height,omitempty"`    // inches, or pixels for maps
	Title     string   `json:"title,omitempty"`
	TypeNames []string `json:"type_names,omitempty"`

	// Animation options
	KeepFrames   bool   `json:"keep_frames,omitempty"`
	FramesFolder string `json:"frames_folder,omitempty"`
	FPS          int    `json:"fps,omitempty"`

	// Map options
	Variable  string  `json:"variable,omitempty"`
	TimeIndex int     `json:"time_index,omitempty"`
	CenterLat float64 `json:"center_lat,omitempty"`
	CenterLon float64 `json:"center_lon,omitempty"`
	Zoom      float64 `json:"zoom,omitempty"`

	// Sunburst options
	Matrix *Matrix `json:"-"`

	// Runtime options (not serialized)
	Logger   *log.Logger                         `json:"-"`
	MapToken string                              `json:"-"`
	Open     dataset.Opener                      `json:"-"`
	OnFrame  func(label string, done, total int) `json:"-"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed []string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults applies the defaults shared by every figure. It is idempotent.
func (o *Options) SetDefaults() {
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.Mode == "" {
		o.Mode = reduce.ModeBasic
	}
	if o.MergeThreshold == 0 {
		o.MergeThreshold = reduce.DefaultMergeThreshold
	}
	if o.FramesFolder == "" {
		o.FramesFolder = DefaultFramesFolder
	}
	if o.FPS == 0 {
		o.FPS = DefaultFPS
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) setOutput(name string, formats []string) error {
	o.SetDefaults()
	if o.FileName == "" {
		o.FileName = name
	}
	if o.Format == "" {
		o.Format = formats[0]
	}
	o.Format = strings.ToLower(o.Format)
	if err := ValidateFormat(o.Format, formats); err != nil {
		return err
	}
	if err := errors.ValidateFileName(o.FileName); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 || math.IsNaN(o.Width) || math.IsNaN(o.Height) {
		return errors.New(errors.ErrCodeInvalidInput, "figure size must be positive, got %vx%v", o.Width, o.Height)
	}
	return nil
}

func (o *Options) validateReduce() error {
	return o.ReduceOptions().Validate()
}

// ReduceOptions returns the reducer options.
func (o *Options) ReduceOptions() reduce.Options {
	ro := reduce.Options{Mode: o.Mode, MergeThreshold: o.MergeThreshold}
	ro.SetDefaults()
	return ro
}

func (o *Options) requireRestarts() error {
	if o.RestartDir == "" {
		return errors.New(errors.ErrCodeMissingPath, "no restart folder specified")
	}
	if o.ParamPath == "" {
		return errors.New(errors.ErrCodeMissingPath, "no parameter file specified")
	}
	return nil
}

// ValidateForTreemap checks and defaults the options of a single treemap.
func (o *Options) ValidateForTreemap() error {
	if err := o.setOutput(DefaultTreemapName, TreemapFormats); err != nil {
		return err
	}
	if o.Year == 0 {
		o.Year = DefaultYear
	}
	if o.Year < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "year must be positive, got %d", o.Year)
	}
	if err := o.requireRestarts(); err != nil {
		return err
	}
	return o.validateReduce()
}

// ValidateForAnimation checks and defaults the options of a treemap
// animation.
func (o *Options) ValidateForAnimation() error {
	if err := o.setOutput(DefaultAnimationName, AnimationFormats); err != nil {
		return err
	}
	if err := checkFPS(o.FPS); err != nil {
		return err
	}
	if err := errors.ValidateFolderName(o.FramesFolder); err != nil {
		return err
	}
	if err := o.requireRestarts(); err != nil {
		return err
	}
	return o.validateReduce()
}

func checkFPS(fps int) error {
	if fps <= 0 || fps > render.MaxFPS {
		return errors.New(errors.ErrCodeInvalidInput, "fps must be between 1 and %d, got %d", render.MaxFPS, fps)
	}
	return nil
}

// ValidateForSunburst checks and defaults the options of a sunburst matrix.
func (o *Options) ValidateForSunburst() error {
	if err := o.setOutput(DefaultSunburstName, SunburstFormats); err != nil {
		return err
	}
	if err := checkFPS(o.FPS); err != nil {
		return err
	}
	if o.Matrix == nil {
		return errors.New(errors.ErrCodeMissingPath, "no run matrix specified")
	}
	return o.Matrix.Validate()
}

// ValidateForMap checks and defaults the options of a choropleth map.
func (o *Options) ValidateForMap() error {
	if err := o.setOutput(DefaultMapName, MapFormats); err != nil {
		return err
	}
	if o.CenterLat == 0 && o.CenterLon == 0 {
		o.CenterLat, o.CenterLon = choropleth.DefaultLat, choropleth.DefaultLon
	}
	if o.Zoom == 0 {
		o.Zoom = choropleth.DefaultZoom
	}
	if o.ParamPath == "" || o.HistPath == "" {
		return errors.New(errors.ErrCodeMissingPath, "a map needs both a parameter and a history file")
	}
	if o.Variable == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no history variable specified")
	}
	if o.TimeIndex < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "time index must not be negative, got %d", o.TimeIndex)
	}
	return nil
}

// ValidateForExport checks and defaults the options of a table export.
func (o *Options) ValidateForExport() error {
	if err := o.setOutput(DefaultExportName, ExportFormats); err != nil {
		return err
	}
	if o.Year < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "year must not be negative, got %d", o.Year)
	}
	if err := o.requireRestarts(); err != nil {
		return err
	}
	return o.validateReduce()
}

// OutputPath returns the artifact path for the configured name and format.
func (o *Options) OutputPath() string {
	return render.OutputPath(o.OutputDir, o.FileName, o.Format)
}

// datasetOptions returns the bundle options of the configured inputs.
func (o *Options) datasetOptions() dataset.Options {
	return dataset.Options{
		RestartDir: o.RestartDir,
		ParamPath:  o.ParamPath,
		HistPath:   o.HistPath,
		Open:       o.Open,
	}
}

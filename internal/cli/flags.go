package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mchxo/fates-visualization/pkg/pipeline"
	"github.com/mchxo/fates-visualization/pkg/reduce"
)

// =============================================================================
// Input Flags
// =============================================================================

// inputFlags name the model files a command reads.
type inputFlags struct {
	restart string
	param   string
	hist    string
}

// register adds the input flags. Restart and history flags are only added
// for commands that read them.
func (f *inputFlags) register(cmd *cobra.Command, restart, hist bool) {
	if restart {
		cmd.Flags().StringVarP(&f.restart, "restart", "r", "", "folder of restart files (*.YYYY-*.nc)")
		_ = cmd.MarkFlagDirname("restart")
	}
	cmd.Flags().StringVarP(&f.param, "param", "p", "", "parameter file")
	_ = cmd.MarkFlagFilename("param", "nc")
	if hist {
		cmd.Flags().StringVar(&f.hist, "hist", "", "history file")
		_ = cmd.MarkFlagFilename("hist", "nc")
	}
}

func (f *inputFlags) apply(o *pipeline.Options) {
	o.RestartDir = f.restart
	o.ParamPath = f.param
	o.HistPath = f.hist
}

// =============================================================================
// Output Flags
// =============================================================================

// outputFlags control where and how a figure is written.
type outputFlags struct {
	format string
	dir    string
	name   string
	title  string
	width  float64
	height float64
}

// register adds the output flags. formats lists the accepted formats, the
// first being the default; unit names the size unit in the help text, and
// an empty unit leaves out the figure flags.
func (f *outputFlags) register(cmd *cobra.Command, formats []string, unit string) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: "+formatHelp(formats))
	cmd.Flags().StringVarP(&f.dir, "output-dir", "o", pipeline.DefaultOutputDir, "output folder")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "output file name without extension")
	if unit != "" {
		cmd.Flags().StringVar(&f.title, "title", "", "figure title")
		cmd.Flags().Float64Var(&f.width, "width", 0, "figure width in "+unit)
		cmd.Flags().Float64Var(&f.height, "height", 0, "figure height in "+unit)
	}
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(formats, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.MarkFlagDirname("output-dir")
}

func (f *outputFlags) apply(o *pipeline.Options) {
	o.Format = f.format
	o.OutputDir = f.dir
	o.FileName = f.name
	o.Title = f.title
	o.Width = f.width
	o.Height = f.height
}

// formatHelp lists formats with the default marked, e.g. "gif (default), html".
func formatHelp(formats []string) string {
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = f
		if i == 0 {
			parts[i] += " (default)"
		}
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// Reduce Flags
// =============================================================================

// reduceFlags configure the cohort reduction.
type reduceFlags struct {
	mode      string
	threshold float64
	types     []string
	noCache   bool
}

var modeNames = []string{string(reduce.ModeBasic), string(reduce.ModePatchSimplified), string(reduce.ModeOnePatch)}

// register adds the reduction flags; typeNames adds --types for commands
// that label functional types.
func (f *reduceFlags) register(cmd *cobra.Command, typeNames bool) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", string(reduce.ModeBasic), "reduction mode: "+strings.Join(modeNames, ", "))
	cmd.Flags().Float64Var(&f.threshold, "merge-threshold", reduce.DefaultMergeThreshold, "merge the smallest patches up to this total area (m²)")
	if typeNames {
		cmd.Flags().StringSliceVar(&f.types, "types", nil, "functional type names, in parameter file order")
	}
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "neither read nor write the reduction cache")
	_ = cmd.RegisterFlagCompletionFunc("mode", cobra.FixedCompletions(modeNames, cobra.ShellCompDirectiveNoFileComp))
}

func (f *reduceFlags) apply(o *pipeline.Options) error {
	mode, err := reduce.ParseMode(f.mode)
	if err != nil {
		return err
	}
	o.Mode = mode
	o.MergeThreshold = f.threshold
	o.TypeNames = f.types
	return nil
}

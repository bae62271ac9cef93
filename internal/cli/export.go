package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mchxo/fates-visualization/pkg/pipeline"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		in   inputFlags
		out  outputFlags
		red  reduceFlags
		year int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the reduced cohort and patch tables",
		Long: `Write the cohort and patch tables the treemaps are drawn from.

json output is one file holding every year. csv output is two files,
<name>_cohorts.csv and <name>_patches.csv, with a year column.`,
		Example: `  fatesviz export -r restart/ -p params.nc -f csv -m patch-simplified`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			in.apply(&opts)
			out.apply(&opts)
			if err := red.apply(&opts); err != nil {
				return err
			}
			opts.Year = year
			return c.run(cmd.Context(), "Export", red.noCache, opts,
				func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options) ([]*pipeline.Artifact, error) {
					return r.Export(ctx, opts)
				})
		},
	}

	in.register(cmd, true, false)
	out.register(cmd, pipeline.ExportFormats, "")
	red.register(cmd, false)
	cmd.Flags().IntVarP(&year, "year", "y", 0, "restart year to export, 0 for all")

	return cmd
}

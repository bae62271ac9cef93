package cli

import (
	"github.com/spf13/cobra"

	"github.com/mchxo/fates-visualization/pkg/pipeline"
)

// sunburstCommand creates the sunburst command.
func (c *CLI) sunburstCommand() *cobra.Command {
	var (
		out  outputFlags
		year int
		fps  int
	)

	cmd := &cobra.Command{
		Use:   "sunburst <matrix.toml>",
		Short: "Draw sunbursts of history variables for a matrix of runs",
		Long: `Draw one sunburst per model run, laid out as the rows of a run matrix.

The inner ring has one sector per functional type, the outer ring splits
each type by variable. The matrix file names the runs, their history files,
the variables and the functional types:

  title = "Fire experiments"
  types = ["Pine", "Cedar"]

  [[variables]]
  label = "Mortality"
  name  = "FATES_MORTALITY_CANOPY_SZPF"

  [[rows]]
  runs = [
    { name = "control", hist = "control.h0.nc" },
    { name = "burned",  hist = "burned.h0.nc" },
  ]

Relative history paths are resolved against the matrix file. gif and html
output hold one frame per year; png, svg and pdf draw --year.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := pipeline.LoadMatrix(args[0])
			if err != nil {
				return err
			}
			var opts pipeline.Options
			out.apply(&opts)
			opts.Matrix = m
			opts.Year = year
			opts.FPS = fps
			return c.run(cmd.Context(), "Sunburst", true, opts, single((*pipeline.Runner).Sunburst))
		},
	}

	out.register(cmd, pipeline.SunburstFormats, "inches")
	cmd.Flags().IntVarP(&year, "year", "y", 1, "year drawn by png, svg and pdf output")
	cmd.Flags().IntVar(&fps, "fps", pipeline.DefaultFPS, "frames per second of gif output")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/mchxo/fates-visualization/pkg/pipeline"
)

// treemapCommand creates the treemap command.
func (c *CLI) treemapCommand() *cobra.Command {
	var (
		in   inputFlags
		out  outputFlags
		red  reduceFlags
		year int
	)

	cmd := &cobra.Command{
		Use:   "treemap",
		Short: "Draw the cohort treemap of one restart year",
		Long: `Draw the cohorts of one restart year as a treemap.

Every patch is a rectangle sized by its area. Inside it, each cohort is a
stem sized by its crown area and coloured by its number of plants, on a
ground coloured by the patch age.`,
		Example: `  fatesviz treemap -r restart/ -p params.nc --year 12 -f svg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			in.apply(&opts)
			out.apply(&opts)
			if err := red.apply(&opts); err != nil {
				return err
			}
			opts.Year = year
			return c.run(cmd.Context(), "Treemap", red.noCache, opts, single((*pipeline.Runner).Treemap))
		},
	}

	in.register(cmd, true, false)
	out.register(cmd, pipeline.TreemapFormats, "inches")
	red.register(cmd, true)
	cmd.Flags().IntVarP(&year, "year", "y", pipeline.DefaultYear, "restart year, 1 for the first file")

	return cmd
}

// animateCommand creates the animate command.
func (c *CLI) animateCommand() *cobra.Command {
	var (
		in   inputFlags
		out  outputFlags
		red  reduceFlags
		keep bool
		dir  string
		fps  int
	)

	cmd := &cobra.Command{
		Use:   "animate",
		Short: "Animate the cohort treemap over all restart years",
		Long: `Draw one treemap per restart year and assemble them.

gif output writes every frame as <year>.png into the frames folder inside
the output folder and removes the folder afterwards unless --keep-frames is
set. html output puts all frames behind a year slider in one page.`,
		Example: `  fatesviz animate -r restart/ -p params.nc -m one-patch
  fatesviz animate -r restart/ -p params.nc -f html --types Pine,Cedar`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			in.apply(&opts)
			out.apply(&opts)
			if err := red.apply(&opts); err != nil {
				return err
			}
			opts.KeepFrames = keep
			opts.FramesFolder = dir
			opts.FPS = fps
			return c.run(cmd.Context(), "Animation", red.noCache, opts, single((*pipeline.Runner).AnimateTreemap))
		},
	}

	in.register(cmd, true, false)
	out.register(cmd, pipeline.AnimationFormats, "inches")
	red.register(cmd, true)
	cmd.Flags().BoolVar(&keep, "keep-frames", false, "keep the per-year frames")
	cmd.Flags().StringVar(&dir, "frames-folder", pipeline.DefaultFramesFolder, "folder name for the per-year frames")
	cmd.Flags().IntVar(&fps, "fps", pipeline.DefaultFPS, "frames per second")

	return cmd
}

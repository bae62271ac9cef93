package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mchxo/fates-visualization/pkg/pipeline"
	"github.com/mchxo/fates-visualization/pkg/render/choropleth"
)

// mapCommand creates the map command.
func (c *CLI) mapCommand() *cobra.Command {
	var (
		in       inputFlags
		out      outputFlags
		variable string
		timeIdx  int
		lat, lon float64
		zoom     float64
		token    string
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map a history variable onto the grid cells",
		Long: `Colour every grid cell by the value of a history variable.

Cell corners come from the xv and yv variables of the parameter file. Masked
and zero cells are left out. html output is an interactive Leaflet map that
uses Mapbox tiles when a token is given (--token or $` + tokenEnv + `) and
OpenStreetMap tiles otherwise.`,
		Example: `  fatesviz map -p domain.nc --hist run.h0.nc --variable FATES_VEGC -f png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			in.apply(&opts)
			out.apply(&opts)
			opts.Variable = variable
			opts.TimeIndex = timeIdx
			opts.CenterLat, opts.CenterLon = lat, lon
			opts.Zoom = zoom
			opts.MapToken = token
			if opts.MapToken == "" {
				opts.MapToken = os.Getenv(tokenEnv)
			}
			return c.run(cmd.Context(), "Map", true, opts, single((*pipeline.Runner).Choropleth))
		},
	}

	in.register(cmd, false, true)
	out.register(cmd, pipeline.MapFormats, "pixels")
	cmd.Flags().StringVar(&variable, "variable", "", "history variable dimensioned (time, i, j)")
	cmd.Flags().IntVarP(&timeIdx, "time", "t", 0, "time index")
	cmd.Flags().Float64Var(&lat, "lat", choropleth.DefaultLat, "map centre latitude")
	cmd.Flags().Float64Var(&lon, "lon", choropleth.DefaultLon, "map centre longitude")
	cmd.Flags().Float64Var(&zoom, "zoom", choropleth.DefaultZoom, "initial zoom level")
	cmd.Flags().StringVar(&token, "token", "", "Mapbox access token")
	_ = cmd.MarkFlagRequired("variable")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mchxo/fates-visualization/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		in  inputFlags
		red reduceFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize restart, parameter and history files",
		Long: `List what a set of input files holds and reduce the first restart year,
so missing variables or unsupported allometry show up before a long
animation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var opts pipeline.Options
			in.apply(&opts)
			if err := red.apply(&opts); err != nil {
				return err
			}
			opts.Logger = loggerFromContext(ctx)

			runner, _, err := c.newRunner(red.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			s, err := runner.Inspect(ctx, opts)
			if err != nil {
				return err
			}
			printSummary(s)
			return nil
		},
	}

	in.register(cmd, true, true)
	red.register(cmd, false)

	return cmd
}

func printSummary(s *pipeline.Summary) {
	fmt.Println(StyleTitle.Render("Inputs"))
	if n := len(s.Restarts); n > 0 {
		first, last := s.Restarts[0], s.Restarts[n-1]
		printKeyValue("restarts", fmt.Sprintf("%d files, model years %d to %d", n, first.ModelYear, last.ModelYear))
	}
	if s.ParamVars != nil {
		printKeyValue("parameters", fmt.Sprintf("%d variables", len(s.ParamVars)))
		printKeyValue("types", StyleNumber.Render(fmt.Sprint(s.TypeCount)))
	}
	if s.HistVars != nil {
		printKeyValue("history", fmt.Sprintf("%d variables", len(s.HistVars)))
	}
	if s.Allometry != nil {
		printWarning("allometry: %v", s.Allometry)
	}

	if s.FirstYear == nil {
		return
	}
	res := s.FirstYear
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Year %d", res.Year)))
	printKeyValue("cohorts", fmt.Sprint(len(res.Cohorts)))
	printKeyValue("patches", fmt.Sprint(len(res.Patches)))
	printKeyValue("drawn types", fmt.Sprint(res.PFTs()))
	if res.Merge.Count > 0 {
		printDetail("merged %d small patches into %.1f m², mean age %.1f", res.Merge.Count, res.Merge.Area, res.Merge.Age)
	}
	printSuccess("inputs can be drawn")
}

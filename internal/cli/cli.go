// Package cli implements the fatesviz command-line interface.
//
// The commands draw figures from FATES model output: treemaps of the
// cohorts of one restart year, treemap animations over all restart years,
// sunburst matrices of history variables and choropleth maps of gridded
// history variables. Reduced cohort and patch tables can be exported as
// JSON or CSV, and inspect summarizes a set of input files.
//
// # Commands
//
//   - treemap: Draw the cohort treemap of one restart year
//   - animate: Animate the treemap over all restart years (gif, html)
//   - sunburst: Draw a matrix of runs from a TOML run matrix
//   - map: Map a history variable onto the grid cells
//   - export: Write the reduced cohort and patch tables
//   - inspect: Summarize restart, parameter and history files
//   - cache: Manage the reduction cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and handed to the pipeline runner.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mchxo/fates-visualization/pkg/buildinfo"
	"github.com/mchxo/fates-visualization/pkg/cache"
	"github.com/mchxo/fates-visualization/pkg/observability"
	"github.com/mchxo/fates-visualization/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "fatesviz"

// tokenEnv is the environment variable holding the Mapbox token.
const tokenEnv = "MAPBOX_TOKEN"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// verbose reports whether debug logging is on. The spinner is hidden then
// so it does not tear the log lines.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "fatesviz draws figures from FATES vegetation model output",
		Long: `fatesviz reads the restart, parameter and history files of FATES model runs
and draws cohort treemaps, treemap animations, sunburst matrices and
choropleth maps.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.treemapCommand())
	root.AddCommand(c.animateCommand())
	root.AddCommand(c.sunburstCommand())
	root.AddCommand(c.mapCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cache entries are scoped
// to the build so tables reduced by another release are never reused. The
// returned hooks count the cache hits of the run.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, *logHooks, error) {
	fc, err := newCache(noCache)
	if err != nil {
		return nil, nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	hooks := &logHooks{logger: c.Logger}
	r := pipeline.NewRunner(fc, keyer, c.Logger, observability.Hooks{Pipeline: hooks, Cache: hooks})
	return r, hooks, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/fatesviz/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

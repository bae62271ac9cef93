package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/pipeline"
	"github.com/mchxo/fates-visualization/pkg/reduce"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"treemap", "animate", "sunburst", "map", "export", "inspect", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("root command missing %q (have %v)", want, names)
		}
	}
}

// execute runs the root command with args and a private cache folder.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(&bytes.Buffer{}, LogDebug)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"treemap without inputs", []string{"treemap"}, errors.ErrCodeMissingPath},
		{"treemap bad mode", []string{"treemap", "-r", "x", "-p", "y", "-m", "two-patch"}, errors.ErrCodeInvalidMode},
		{"animate png", []string{"animate", "-r", "x", "-p", "y", "-f", "png"}, errors.ErrCodeInvalidFormat},
		{"export without restarts", []string{"export", "-p", "y", "--no-cache"}, errors.ErrCodeMissingPath},
		{"map without hist", []string{"map", "-p", "y", "--variable", "V"}, errors.ErrCodeMissingPath},
		{"sunburst missing matrix", []string{"sunburst", "missing.toml"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestMapRequiresVariable(t *testing.T) {
	err := execute(t, "map", "-p", "y", "--hist", "h")
	if err == nil || !strings.Contains(err.Error(), "variable") {
		t.Errorf("error = %v, want missing --variable", err)
	}
}

func TestReduceFlags(t *testing.T) {
	var f reduceFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd, true)
	if err := cmd.ParseFlags([]string{"--mode", "one patch", "--merge-threshold", "500", "--types", "Pine,Cedar"}); err != nil {
		t.Fatal(err)
	}

	var opts pipeline.Options
	if err := f.apply(&opts); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if opts.Mode != reduce.ModeOnePatch || opts.MergeThreshold != 500 {
		t.Errorf("reduce options = %v, %v", opts.Mode, opts.MergeThreshold)
	}
	if !slices.Equal(opts.TypeNames, []string{"Pine", "Cedar"}) {
		t.Errorf("TypeNames = %v", opts.TypeNames)
	}

	var noTypes reduceFlags
	cmd = &cobra.Command{Use: "y"}
	noTypes.register(cmd, false)
	if cmd.Flags().Lookup("types") != nil {
		t.Error("--types registered without type names")
	}
}

func TestOutputFlags(t *testing.T) {
	var f outputFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd, pipeline.TreemapFormats, "inches")
	if err := cmd.ParseFlags([]string{"-f", "svg", "-o", "out", "-n", "year3", "--width", "8", "--height", "6"}); err != nil {
		t.Fatal(err)
	}
	var opts pipeline.Options
	f.apply(&opts)
	if opts.Format != "svg" || opts.OutputDir != "out" || opts.FileName != "year3" || opts.Width != 8 || opts.Height != 6 {
		t.Errorf("output options = %+v", opts)
	}

	tables := &cobra.Command{Use: "y"}
	(&outputFlags{}).register(tables, pipeline.ExportFormats, "")
	if tables.Flags().Lookup("width") != nil {
		t.Error("figure flags registered for table output")
	}
}

func TestFormatHelp(t *testing.T) {
	if got, want := formatHelp([]string{"gif", "html"}), "gif (default), html"; got != want {
		t.Errorf("formatHelp() = %q, want %q", got, want)
	}
}

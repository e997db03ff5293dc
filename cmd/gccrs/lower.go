package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/diag"
	"github.com/dafaust/gccrs/internal/driver"
	"github.com/dafaust/gccrs/internal/layout"
	"github.com/dafaust/gccrs/internal/ui"
)

var (
	lowerTargetPath string
	lowerJobs       int
	lowerCacheDir   string
	lowerNoCache    bool
	lowerUI         string
	lowerDumpTypes  bool
)

func init() {
	lowerCmd.Flags().StringVar(&lowerTargetPath, "target", "", "path to a TOML target description (default x86_64-linux-gnu)")
	lowerCmd.Flags().IntVar(&lowerJobs, "jobs", 0, "number of modules to lower in parallel (0 = GOMAXPROCS)")
	lowerCmd.Flags().StringVar(&lowerCacheDir, "cache-dir", "", "directory for the lowering cache (default per-user cache dir)")
	lowerCmd.Flags().BoolVar(&lowerNoCache, "no-cache", false, "disable the on-disk lowering cache")
	lowerCmd.Flags().StringVar(&lowerUI, "ui", "auto", "interactive progress display (auto|on|off)")
	lowerCmd.Flags().BoolVar(&lowerDumpTypes, "dump-types", false, "annotate dumped values with their types")
}

var lowerCmd = &cobra.Command{
	Use:   "lower",
	Short: "Lower the built-in demo module and dump the backend trees",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := layout.X86_64LinuxGNU()
		if lowerTargetPath != "" {
			t, err := layout.LoadTarget(lowerTargetPath)
			if err != nil {
				return fmt.Errorf("load target: %w", err)
			}
			target = t
		}

		mode, err := readUIMode(lowerUI)
		if err != nil {
			return err
		}

		var cache *driver.DiskCache
		if !lowerNoCache {
			cache, err = driver.OpenDiskCache("gccrs-lower", lowerCacheDir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
		}

		inputs := []driver.Input{driver.Demo()}
		opts := driver.Options{
			Target: target,
			Jobs:   lowerJobs,
			Cache:  cache,
		}

		var results []*driver.ModuleResult
		if shouldUseTUI(mode) {
			results, err = lowerWithTUI(cmd.Context(), inputs, opts)
		} else {
			results, err = driver.LowerModules(cmd.Context(), inputs, opts)
		}
		if err != nil {
			return err
		}

		return printResults(cmd, results)
	},
}

// lowerWithTUI runs the lowering pipeline behind a Bubble Tea progress
// display. The driver feeds events into a channel that the model drains;
// closing the channel ends the program.
func lowerWithTUI(ctx context.Context, inputs []driver.Input, opts driver.Options) ([]*driver.ModuleResult, error) {
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Module.Name)
	}

	events := make(chan driver.Event, 16)
	opts.Notify = func(ev driver.Event) { events <- ev }

	model := ui.NewProgressModel("lowering modules", names, events)
	prog := tea.NewProgram(model)

	type outcome struct {
		results []*driver.ModuleResult
		err     error
	}
	resCh := make(chan outcome, 1)
	go func() {
		results, err := driver.LowerModules(ctx, inputs, opts)
		close(events)
		resCh <- outcome{results, err}
	}()

	if _, err := prog.Run(); err != nil {
		return nil, fmt.Errorf("progress ui: %w", err)
	}
	out := <-resCh
	return out.results, out.err
}

func printResults(cmd *cobra.Command, results []*driver.ModuleResult) error {
	out := cmd.OutOrStdout()
	quiet, _ := cmd.Flags().GetBool("quiet")
	reporter := diag.Reporter{
		Out:      cmd.ErrOrStderr(),
		UseColor: useColor(cmd, os.Stderr),
	}

	broken := false
	for _, r := range results {
		if r.Broken() {
			broken = true
		}
		reporter.Report(r.Bag)
		if quiet {
			continue
		}
		for _, fn := range r.Funcs {
			fmt.Fprintf(out, "fn %s::%s\n", r.Module, fn.Name)
			if lowerDumpTypes && fn.Block != nil {
				backend.DumpBlock(out, fn.Block, backend.DumpOptions{Types: true})
			} else {
				fmt.Fprint(out, fn.Dump)
			}
			fmt.Fprintln(out)
		}
	}
	if broken {
		return fmt.Errorf("lowering finished with errors")
	}
	return nil
}

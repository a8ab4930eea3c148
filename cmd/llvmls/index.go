package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"llvmls/internal/driver"
)

var (
	indexJobs    int
	indexNoCache bool
	indexDrop    bool
)

func init() {
	indexCmd.Flags().IntVarP(&indexJobs, "jobs", "j", 0, "parallel workers (default from config or GOMAXPROCS)")
	indexCmd.Flags().BoolVar(&indexNoCache, "no-cache", false, "do not read or write the disk cache")
	indexCmd.Flags().BoolVar(&indexDrop, "drop-cache", false, "clear the disk cache before indexing")
}

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index every .ll file under path and print a summary",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	opts := driver.Options{
		Jobs:       run.cfg.Index.Jobs,
		Extensions: run.cfg.Index.Extensions,
	}
	if cmd.Flags().Changed("jobs") {
		if indexJobs < 1 {
			return fmt.Errorf("--jobs must be at least 1, got %d", indexJobs)
		}
		opts.Jobs = indexJobs
	}
	if !indexNoCache && !run.cfg.Cache.Disabled {
		opts.Cache = openCache(cmd)
	}
	if opts.Cache != nil && indexDrop {
		if err := opts.Cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear disk cache: %w", err)
		}
	}

	done := track("index")
	results, err := driver.IndexPath(cmd.Context(), root, opts)
	if err != nil {
		done("failed")
		return err
	}
	done(fmt.Sprintf("%d files", len(results)))

	out := cmd.OutOrStdout()
	tab := &table{header: []string{"FILE", "LINES", "FUNCTIONS", "GLOBALS", "FOLDS", "CACHE", "NOTES"}}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", errColor.Sprint("error:"), r.Err)
			continue
		}
		origin := "scan"
		if r.Cached {
			origin = "hit"
		}
		tab.add(r.Path,
			strconv.Itoa(r.Doc.LineCount()),
			strconv.Itoa(len(r.Model.Functions)),
			strconv.Itoa(len(r.Model.Global.Keys())),
			strconv.Itoa(len(r.Model.FoldingRanges)),
			origin,
			r.Doc.Flags().String(),
		)
	}
	if len(tab.rows) > 0 {
		tab.render(out)
	}
	fmt.Fprintln(out, dimColor.Sprintf("%d indexed, %d failed", len(results)-failed, failed))
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be indexed", failed)
	}
	return nil
}

// openCache opens the configured disk cache. A cache that cannot be opened
// is reported and indexing continues without it.
func openCache(cmd *cobra.Command) *driver.DiskCache {
	dir, err := run.cfg.CacheDir()
	if err != nil {
		warnf(cmd, "disk cache disabled: %v", err)
		return nil
	}
	cache, err := driver.OpenDiskCache(dir)
	if err != nil {
		warnf(cmd, "disk cache disabled: %v", err)
		return nil
	}
	return cache
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vela/internal/diag"
	"vela/internal/driver"
	"vela/internal/outfmt"
	"vela/internal/project"
	"vela/internal/source"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [flags] <script.vl|directory>",
	Short: "Build declaration outlines from event scripts",
	Long: `Outline runs the declaration pass over pre-parsed event scripts:
directives, nesting, mixin chains and stable reference slots. With no
argument it processes the project's source root (requires vela.toml).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutline,
}

func init() {
	outlineCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	outlineCmd.Flags().Int("jobs", 0, "max parallel workers for directory runs (0=auto)")
	outlineCmd.Flags().String("ui", "auto", "progress board for directory runs (auto|on|off)")
	outlineCmd.Flags().Bool("no-cache", false, "skip the reference slot cache")
	outlineCmd.Flags().Bool("write-cache", false, "store this run's slot indexes in the cache")
	outlineCmd.Flags().Bool("slots", false, "show reference slots in pretty output")
	outlineCmd.Flags().Bool("positions", false, "include line/column positions in json output")
	outlineCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// renderOptions собирает уже разобранные флаги вывода.
type renderOptions struct {
	format    string
	color     bool
	pathMode  outfmt.PathMode
	showSlots bool
	positions bool
	quiet     bool
}

func runOutline(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	writeCache, err := cmd.Flags().GetBool("write-cache")
	if err != nil {
		return fmt.Errorf("failed to get write-cache flag: %w", err)
	}
	showSlots, err := cmd.Flags().GetBool("slots")
	if err != nil {
		return fmt.Errorf("failed to get slots flag: %w", err)
	}
	positions, err := cmd.Flags().GetBool("positions")
	if err != nil {
		return fmt.Errorf("failed to get positions flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	target, proj, err := resolveOutlineTarget(args)
	if err != nil {
		return err
	}
	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// Манифест дополняет флаги, но не перебивает их.
	if jobs == 0 && proj != nil {
		jobs = proj.Manifest.Outline.Jobs
	}
	cache := openSlotCache(proj, noCache)

	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		Cache:          cache,
		WriteCache:     writeCache,
		Timings:        showTimings,
	}

	var (
		fs      *source.FileSet
		results []driver.UnitResult
	)
	if st.IsDir() {
		if shouldUseTUI(mode) && format == "pretty" {
			fs, results, err = runOutlineDirWithUI(cmd.Context(), "vela outline", target, opts)
		} else {
			fs, results, err = driver.OutlineDir(cmd.Context(), target, opts)
		}
		if err != nil {
			return fmt.Errorf("outline failed: %w", err)
		}
	} else {
		fs = source.NewFileSetWithBase(filepath.Dir(target))
		res := driver.OutlineFile(fs, nil, target, opts)
		results = []driver.UnitResult{*res}
	}

	pathMode := outfmt.PathModeAuto
	if fullPath {
		pathMode = outfmt.PathModeAbsolute
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	exitCode, err := renderResults(fs, results, renderOptions{
		format:    format,
		color:     useColor,
		pathMode:  pathMode,
		showSlots: showSlots,
		positions: positions,
		quiet:     quiet,
	})
	if err != nil {
		return err
	}

	if showTimings {
		printRunTimings(os.Stderr, results)
	}

	if exitCode != 0 {
		// Диагностика уже напечатана, cobra не должна добавлять usage.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

// resolveOutlineTarget picks the path to process and loads the nearest
// manifest. Without an argument the manifest is mandatory: its source root
// is the target.
func resolveOutlineTarget(args []string) (string, *project.Project, error) {
	if len(args) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, err
		}
		proj, ok, err := project.Load(wd)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, fmt.Errorf("no path given and no vela.toml found from %s", wd)
		}
		return proj.SourceRoot, proj, nil
	}

	target, err := source.AbsolutePath(args[0])
	if err != nil {
		return "", nil, err
	}
	start := target
	if st, statErr := os.Stat(target); statErr == nil && !st.IsDir() {
		start = filepath.Dir(target)
	}
	proj, _, err := project.Load(start)
	if err != nil {
		return "", nil, err
	}
	return target, proj, nil
}

// openSlotCache opens the reference slot cache: the manifest location when
// set, the user cache dir otherwise. An unavailable cache downgrades the
// run instead of failing it.
func openSlotCache(proj *project.Project, noCache bool) *driver.RefCache {
	if noCache {
		return nil
	}
	var (
		cache *driver.RefCache
		err   error
	)
	if proj != nil && proj.CacheDir != "" {
		cache, err = driver.OpenRefCacheAt(proj.CacheDir)
	} else {
		cache, err = driver.OpenRefCache("vela")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: reference cache unavailable: %v\n", err)
		return nil
	}
	return cache
}

func renderResults(fs *source.FileSet, results []driver.UnitResult, opts renderOptions) (int, error) {
	exit := 0
	for _, r := range results {
		if r.Bag.HasErrors() {
			exit = 1
			break
		}
	}

	switch opts.format {
	case "pretty":
		printed := false
		for _, r := range results {
			if r.Outline == nil {
				continue
			}
			if printed {
				fmt.Fprintln(os.Stdout)
			}
			err := outfmt.Pretty(os.Stdout, r.Outline, fs, outfmt.PrettyOpts{
				Color:     opts.color,
				PathMode:  opts.pathMode,
				ShowSlots: opts.showSlots,
			})
			if err != nil {
				return 0, fmt.Errorf("failed to render outline: %w", err)
			}
			printed = true
		}
		if !opts.quiet {
			printDiagnostics(os.Stderr, fs, results)
		}
	case "json":
		jsonOpts := outfmt.JSONOpts{IncludePositions: opts.positions, PathMode: opts.pathMode}
		units := make([]outfmt.UnitJSON, 0, len(results))
		for _, r := range results {
			units = append(units, outfmt.BuildUnitJSON(r.Outline, r.Bag, fs, jsonOpts))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(units) == 1 {
			if err := enc.Encode(units[0]); err != nil {
				return 0, fmt.Errorf("failed to encode outline: %w", err)
			}
		} else if err := enc.Encode(units); err != nil {
			return 0, fmt.Errorf("failed to encode outline: %w", err)
		}
	case "short":
		printDiagnostics(os.Stdout, fs, results)
	}
	return exit, nil
}

// printDiagnostics prints every unit's bag in the short one-line format.
func printDiagnostics(out *os.File, fs *source.FileSet, results []driver.UnitResult) {
	var all []*diag.Diagnostic
	for _, r := range results {
		items := r.Bag.Items()
		for i := range items {
			all = append(all, &items[i])
		}
	}
	if len(all) == 0 {
		return
	}
	if text := diag.FormatShortDiagnostics(all, fs, true); text != "" {
		fmt.Fprintln(out, text)
	}
}

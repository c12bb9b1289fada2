package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vela/internal/driver"
	"vela/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove the reference slot cache",
	Long: `Remove cached reference slot indexes. Uses the [outline].cache location
from the nearest vela.toml when present, the user cache directory otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func runClean(_ *cobra.Command, args []string) error {
	start := "."
	if len(args) > 0 && args[0] != "" {
		start = args[0]
	}
	if st, err := os.Stat(start); err == nil && !st.IsDir() {
		start = filepath.Dir(start)
	}

	proj, _, err := project.Load(start)
	if err != nil {
		return err
	}

	var cache *driver.RefCache
	if proj != nil && proj.CacheDir != "" {
		cache, err = driver.OpenRefCacheAt(proj.CacheDir)
	} else {
		cache, err = driver.OpenRefCache("vela")
	}
	if err != nil {
		return fmt.Errorf("failed to open reference cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clear reference cache: %w", err)
	}
	fmt.Fprintf(os.Stdout, "cleared reference cache at %s\n", cache.Dir())
	return nil
}

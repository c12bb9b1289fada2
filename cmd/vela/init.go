package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vela/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new vela project",
	Long: `Initialize a new vela project by creating a project manifest (vela.toml)
and a starter event script (src/main.vl). If [path|name] is omitted,
initializes the current directory. If a non-existing name is provided, a
directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Determine project name from directory basename
	name := strings.TrimSpace(filepath.Base(target))
	if !project.IsValidPackageName(name) {
		name = "vela_project"
	}

	manifestPath := filepath.Join(target, "vela.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	srcDir := filepath.Join(target, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}

	mainPath := filepath.Join(srcDir, "main.vl")
	createdMain := false
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(mainPath, []byte(defaultMainVL(name)), 0o600); err != nil {
			return fmt.Errorf("failed to write main.vl: %w", err)
		}
		createdMain = true
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized vela project in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - vela.toml\n")
	if createdMain {
		fmt.Fprintf(os.Stdout, "  - src/main.vl\n")
	} else {
		fmt.Fprintf(os.Stdout, "  - src/main.vl (existing)\n")
	}
	return nil
}

// buildDefaultManifest returns a minimal TOML manifest used as the project
// marker.
func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# Vela project manifest
[package]
name = "%s"
root = "src"

[outline]
# cache = ".vela-cache"
# jobs = 4
`, name)
}

// defaultMainVL returns a starter event script exercising the common
// declaration shapes.
func defaultMainVL(name string) string {
	return fmt.Sprintf(`# Vela event script (placeholder)
# One declaration event per line; try: vela outline

library %s

class Greeter
  field greeting: String = "hello"
  method greet
    param name: String
    returns String
  end
end
`, name)
}

package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// Manifest describes a parsed vela.toml.
type Manifest struct {
	Package PackageSection
	Outline OutlineSection
}

// PackageSection is [package]: the library name and its source root.
type PackageSection struct {
	Name string
	Root string
}

// OutlineSection is [outline]: reference-cache placement and parallelism
// defaults. Command-line flags override any field here.
type OutlineSection struct {
	Cache string
	Jobs  int
}

var (
	// ErrPackageSectionMissing indicates that [package] is missing in vela.toml.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing in vela.toml.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

type manifestFile struct {
	Package struct {
		Name string `toml:"name"`
		Root string `toml:"root"`
	} `toml:"package"`
	Outline struct {
		Cache string `toml:"cache"`
		Jobs  int    `toml:"jobs"`
	} `toml:"outline"`
}

// LoadManifest parses vela.toml. [package].name is required; root is
// optional and defaults to the manifest's own directory.
func LoadManifest(path string) (Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	name := strings.TrimSpace(cfg.Package.Name)
	if !meta.IsDefined("package", "name") || name == "" {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if !IsValidPackageName(name) {
		return Manifest{}, fmt.Errorf("%s: invalid [package].name %q", path, name)
	}
	return Manifest{
		Package: PackageSection{
			Name: name,
			Root: strings.TrimSpace(cfg.Package.Root),
		},
		Outline: OutlineSection{
			Cache: strings.TrimSpace(cfg.Outline.Cache),
			Jobs:  cfg.Outline.Jobs,
		},
	}, nil
}

// IsValidPackageName reports whether name is a legal library identifier:
// ASCII letters, digits and '_', not starting with a digit.
func IsValidPackageName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ResolveSourceRoot resolves and validates [package].root relative to the
// project root. An empty root means the project root itself.
func ResolveSourceRoot(projectRoot, root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return projectRoot, nil
	}
	if filepath.IsAbs(root) {
		return "", fmt.Errorf("invalid [package].root %q: must be relative", root)
	}
	clean := filepath.Clean(filepath.FromSlash(root))
	if clean == "." {
		return projectRoot, nil
	}
	rootPath := filepath.Join(projectRoot, clean)
	if !pathWithin(projectRoot, rootPath) {
		return "", fmt.Errorf("invalid [package].root %q: escapes project root", root)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("invalid [package].root %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid [package].root %q: not a directory", root)
	}
	return rootPath, nil
}

// Project is a discovered manifest plus the directories derived from it.
type Project struct {
	ManifestPath string
	Root         string // каталог с vela.toml
	SourceRoot   string // разрешённый [package].root
	CacheDir     string // разрешённый [outline].cache; пусто, если не задан
	Manifest     Manifest
}

// Load discovers the nearest manifest above startDir and resolves its
// directories. ok is false when no vela.toml exists on the walk up.
func Load(startDir string) (*Project, bool, error) {
	manifestPath, ok, err := FindVelaToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, true, err
	}
	root := filepath.Dir(manifestPath)
	sourceRoot, err := ResolveSourceRoot(root, m.Package.Root)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", manifestPath, err)
	}
	p := &Project{
		ManifestPath: manifestPath,
		Root:         root,
		SourceRoot:   sourceRoot,
		Manifest:     m,
	}
	if cache := m.Outline.Cache; cache != "" {
		// Кэш может жить и вне проекта, абсолютный путь разрешён.
		if filepath.IsAbs(cache) {
			p.CacheDir = filepath.Clean(cache)
		} else {
			p.CacheDir = filepath.Join(root, filepath.Clean(filepath.FromSlash(cache)))
		}
	}
	return p, true, nil
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..") && rel != ".."
}

package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "vela.toml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[package]
name = "widgets"
root = "src"

[outline]
cache = ".velacache"
jobs = 4
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Package.Name != "widgets" || m.Package.Root != "src" {
		t.Fatalf("unexpected package section: %+v", m.Package)
	}
	if m.Outline.Cache != ".velacache" || m.Outline.Jobs != 4 {
		t.Fatalf("unexpected outline section: %+v", m.Outline)
	}
}

func TestLoadManifestMinimal(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[package]\nname = \"demo\"\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Package.Root != "" || m.Outline.Cache != "" || m.Outline.Jobs != 0 {
		t.Fatalf("expected zero optional fields, got %+v", m)
	}
}

func TestLoadManifestMissingPackage(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[outline]\ncache = \"x\"\n")
	if _, err := LoadManifest(path); !errors.Is(err, ErrPackageSectionMissing) {
		t.Fatalf("expected ErrPackageSectionMissing, got %v", err)
	}
}

func TestLoadManifestMissingName(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[package]\nroot = \"src\"\n")
	if _, err := LoadManifest(path); !errors.Is(err, ErrPackageNameMissing) {
		t.Fatalf("expected ErrPackageNameMissing, got %v", err)
	}
}

func TestLoadManifestBadName(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[package]\nname = \"9lives\"\n")
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "invalid [package].name") {
		t.Fatalf("expected a name validation error, got %v", err)
	}
}

func TestIsValidPackageName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"widgets", true},
		{"_private", true},
		{"ui2", true},
		{"", false},
		{"9lives", false},
		{"has-dash", false},
		{"пакет", false},
	}
	for _, tt := range tests {
		if got := IsValidPackageName(tt.name); got != tt.want {
			t.Fatalf("IsValidPackageName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolveSourceRoot(t *testing.T) {
	projectRoot := t.TempDir()
	if err := os.MkdirAll(filepath.Join(projectRoot, "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		name    string
		root    string
		want    string
		wantErr bool
	}{
		{name: "empty means project root", root: "", want: projectRoot},
		{name: "dot means project root", root: ".", want: projectRoot},
		{name: "subdirectory", root: "src", want: filepath.Join(projectRoot, "src")},
		{name: "absolute rejected", root: projectRoot, wantErr: true},
		{name: "escape rejected", root: "../outside", wantErr: true},
		{name: "missing directory", root: "no-such", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ResolveSourceRoot(projectRoot, tt.root)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected an error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLoadResolvesDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src", "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeManifest(t, root, `
[package]
name = "widgets"
root = "src"

[outline]
cache = ".velacache"
`)

	p, ok, err := Load(filepath.Join(root, "src", "nested"))
	if err != nil || !ok {
		t.Fatalf("expected a project, got ok=%v err=%v", ok, err)
	}
	if p.Root != root {
		t.Fatalf("expected project root %q, got %q", root, p.Root)
	}
	if p.SourceRoot != filepath.Join(root, "src") {
		t.Fatalf("unexpected source root %q", p.SourceRoot)
	}
	if p.CacheDir != filepath.Join(root, ".velacache") {
		t.Fatalf("unexpected cache dir %q", p.CacheDir)
	}
	if p.Manifest.Package.Name != "widgets" {
		t.Fatalf("unexpected manifest: %+v", p.Manifest)
	}
}

func TestLoadWithoutManifest(t *testing.T) {
	p, ok, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || p != nil {
		t.Fatalf("expected no project without vela.toml")
	}
}

func TestFindVelaToml(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := writeManifest(t, root, "[package]\nname = \"demo\"\n")

	got, ok, err := FindVelaToml(nested)
	if err != nil || !ok {
		t.Fatalf("expected a manifest, got ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

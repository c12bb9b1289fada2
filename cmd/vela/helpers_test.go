package main

import (
	"os"
	"path/filepath"
	"testing"

	"vela/internal/decl"
	"vela/internal/driver"
	"vela/internal/outline"
	"vela/internal/project"
	"vela/internal/source"
)

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		input string
		want  uiMode
		ok    bool
	}{
		{"", uiModeAuto, true},
		{"auto", uiModeAuto, true},
		{"on", uiModeOn, true},
		{"OFF", uiModeOff, true},
		{" on ", uiModeOn, true},
		{"maybe", "", false},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.input)
		if tc.ok && err != nil {
			t.Fatalf("readUIMode(%q) error: %v", tc.input, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("readUIMode(%q) expected an error", tc.input)
		}
		if got != tc.want {
			t.Fatalf("readUIMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

// TestDefaultScriptOutlines keeps the init scaffold honest: the starter
// script must come out of the pipeline clean.
func TestDefaultScriptOutlines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.vl")
	if err := os.WriteFile(path, []byte(defaultMainVL("demo")), 0o600); err != nil {
		t.Fatalf("write main.vl: %v", err)
	}

	fs := source.NewFileSetWithBase(dir)
	res := driver.OutlineFile(fs, nil, path, driver.Options{MaxDiagnostics: 16})
	if res.Bag.Len() != 0 {
		t.Fatalf("expected a clean starter script, got %d diagnostics", res.Bag.Len())
	}
	if res.Outline == nil {
		t.Fatalf("expected an outline")
	}
	in := res.Outline.Strings
	id := res.Outline.Top.Lookup(in.Intern("Greeter"), outline.GetterAxis)
	if id == decl.NoEntityID {
		t.Fatalf("expected the starter class declared")
	}
	if got := in.MustLookup(res.Outline.LibraryName); got != "demo" {
		t.Fatalf("expected library demo, got %q", got)
	}
}

func TestBuildDefaultManifestLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vela.toml")
	if err := os.WriteFile(path, []byte(buildDefaultManifest("demo")), 0o600); err != nil {
		t.Fatalf("write vela.toml: %v", err)
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Package.Name != "demo" || m.Package.Root != "src" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestResolveOutlineTarget(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "vela.toml"), []byte(buildDefaultManifest("demo")), 0o600); err != nil {
		t.Fatalf("write vela.toml: %v", err)
	}
	src := filepath.Join(root, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("mkdir src: %v", err)
	}
	script := filepath.Join(src, "a.vl")
	if err := os.WriteFile(script, []byte("library demo\n"), 0o600); err != nil {
		t.Fatalf("write a.vl: %v", err)
	}

	target, proj, err := resolveOutlineTarget([]string{script})
	if err != nil {
		t.Fatalf("resolveOutlineTarget: %v", err)
	}
	if !filepath.IsAbs(target) {
		t.Fatalf("expected an absolute target, got %q", target)
	}
	if proj == nil || proj.Manifest.Package.Name != "demo" {
		t.Fatalf("expected the manifest picked up, got %+v", proj)
	}

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(src); err != nil {
		t.Fatalf("chdir %q: %v", src, err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	target, proj, err = resolveOutlineTarget(nil)
	if err != nil {
		t.Fatalf("resolveOutlineTarget: %v", err)
	}
	if proj == nil {
		t.Fatalf("expected the project found from the working directory")
	}
	if target != proj.SourceRoot {
		t.Fatalf("expected the source root %q, got %q", proj.SourceRoot, target)
	}
}

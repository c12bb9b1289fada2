package outfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"vela/internal/source"
)

func findDeclaration(t *testing.T, decls []DeclarationJSON, name string) DeclarationJSON {
	t.Helper()
	for _, d := range decls {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("declaration %q not found", name)
	return DeclarationJSON{}
}

func TestJSONUnit(t *testing.T) {
	res, bag, fs := buildFixture(t)

	var buf bytes.Buffer
	err := JSON(&buf, res, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeRelative})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var out UnitJSON
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}

	if out.Path != "src/app.vl" {
		t.Errorf("expected path src/app.vl, got %q", out.Path)
	}
	if out.Library != "app.widgets" {
		t.Errorf("expected library app.widgets, got %q", out.Library)
	}
	if len(out.Imports) != 1 || out.Imports[0].URI != "vela:core" || out.Imports[0].Prefix != "core" {
		t.Fatalf("expected one import vela:core as core, got %+v", out.Imports)
	}

	widget := findDeclaration(t, out.Declarations, "Widget")
	if widget.Kind != "class" {
		t.Errorf("expected kind class, got %q", widget.Kind)
	}
	if widget.Supertype != "_Widget&Base&Paint" {
		t.Errorf("expected the rewritten supertype, got %q", widget.Supertype)
	}
	if len(widget.TypeParams) != 1 || widget.TypeParams[0].Name != "T" || widget.TypeParams[0].Bound != "Comparable<T>" {
		t.Errorf("expected T extends Comparable<T>, got %+v", widget.TypeParams)
	}
	if widget.Slot == 0 {
		t.Errorf("expected a bound slot on the class")
	}
	if widget.Location == nil || widget.Location.File != "src/app.vl" || widget.Location.StartLine == 0 {
		t.Errorf("expected a resolved location, got %+v", widget.Location)
	}

	link := findDeclaration(t, out.Declarations, "_Widget&Base&Paint")
	if !link.Synthetic {
		t.Errorf("expected the chain link marked synthetic")
	}
	if link.Supertype != "Base" || link.MixedIn != "Paint" {
		t.Errorf("expected extends Base with Paint, got supertype %q mixed_in %q", link.Supertype, link.MixedIn)
	}

	var sizes []DeclarationJSON
	for _, m := range widget.Members {
		if m.Name == "size" {
			sizes = append(sizes, m)
		}
	}
	if len(sizes) != 2 {
		t.Fatalf("expected both size fields in the chain, got %d", len(sizes))
	}
	if !sizes[0].Shadowed || sizes[1].Shadowed {
		t.Errorf("expected the older field shadowed and the newer visible, got %+v", sizes)
	}
	if sizes[0].Type != "core.Size" || !sizes[0].Initialized {
		t.Errorf("expected the first field typed core.Size with initializer, got %+v", sizes[0])
	}

	draw := findDeclaration(t, widget.Members, "draw")
	if draw.Kind != "method" || draw.Returns != "bool" {
		t.Errorf("expected method draw -> bool, got %+v", draw)
	}
	if len(draw.Params) != 1 || draw.Params[0].Name != "area" || draw.Params[0].Type != "core.Rect" {
		t.Errorf("expected one parameter area: core.Rect, got %+v", draw.Params)
	}

	ctor := findDeclaration(t, widget.Members, "origin")
	if ctor.Kind != "constructor" {
		t.Errorf("expected kind constructor, got %q", ctor.Kind)
	}

	if len(out.Diagnostics) != 1 {
		t.Fatalf("expected the duplicate diagnostic, got %+v", out.Diagnostics)
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "OUT3001" {
		t.Errorf("expected ERROR OUT3001, got %s %s", d.Severity, d.Code)
	}
	if d.Location == nil || d.Location.File != "src/app.vl" {
		t.Errorf("expected the diagnostic located in the unit, got %+v", d.Location)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	res, bag, fs := buildFixture(t)

	out := BuildUnitJSON(res, bag, fs, JSONOpts{PathMode: PathModeBasename})
	widget := findDeclaration(t, out.Declarations, "Widget")
	if widget.Location != nil {
		t.Errorf("expected no declaration locations without positions, got %+v", widget.Location)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Location == nil {
		t.Fatalf("diagnostic locations must survive either way, got %+v", out.Diagnostics)
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Errorf("expected byte offsets only, got %+v", out.Diagnostics[0].Location)
	}
}

func TestJSONNilResult(t *testing.T) {
	fs := source.NewFileSet()

	var buf bytes.Buffer
	if err := JSON(&buf, nil, nil, fs, JSONOpts{}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var out UnitJSON
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if out.Declarations == nil {
		t.Fatalf("declarations must encode as an empty array, got:\n%s", buf.String())
	}
}

package diag

import (
	"testing"

	"vela/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/testdata/golden/sample.vl", []byte("a\nb\n"), 0)
	internalFile := fs.Add("/workspace/internal/helper.vl", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     OutDuplicateDeclaration,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: internalFile, Start: 0, End: 0}, Msg: "skip me"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     EvtUnknownEvent,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "error OUT3001 testdata/golden/sample.vl:1:1 first line second\n" +
		"note OUT3001 testdata/golden/sample.vl:2:1 note line\n" +
		"warning EVT2001 testdata/golden/sample.vl:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortKeepsInternalPaths(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	internalFile := fs.Add("/workspace/internal/helper.vl", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     IOLoadFileError,
			Message:  "boom",
			Primary:  source.Span{File: internalFile, Start: 0, End: 1},
		},
	}

	if got := FormatGoldenDiagnostics(diags, fs, false); got != "" {
		t.Fatalf("golden output should skip internal paths, got %q", got)
	}

	expected := "error IO4001 internal/helper.vl:1:1 boom"
	if got := FormatShortDiagnostics(diags, fs, false); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

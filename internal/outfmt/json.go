package outfmt

import (
	"encoding/json"
	"io"

	"vela/internal/decl"
	"vela/internal/diag"
	"vela/internal/outline"
	"vela/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// ImportJSON описывает одну import-директиву юнита.
type ImportJSON struct {
	URI      string `json:"uri"`
	Prefix   string `json:"prefix,omitempty"`
	Deferred bool   `json:"deferred,omitempty"`
}

// TypeParamJSON описывает переменную типа с необязательной границей.
type TypeParamJSON struct {
	Name  string `json:"name"`
	Bound string `json:"bound,omitempty"`
}

// ParamJSON описывает формальный параметр.
type ParamJSON struct {
	Name       string   `json:"name"`
	Type       string   `json:"type,omitempty"`
	Modifiers  []string `json:"modifiers,omitempty"`
	HasDefault bool     `json:"has_default,omitempty"`
}

// RedirectJSON описывает цель перенаправляющей фабрики.
type RedirectJSON struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
}

// DeclarationJSON — одно объявление вместе с вложенными членами.
type DeclarationJSON struct {
	Kind           string            `json:"kind"`
	Name           string            `json:"name,omitempty"`
	Slot           uint32            `json:"slot,omitempty"`
	Modifiers      []string          `json:"modifiers,omitempty"`
	ClassModifiers []string          `json:"class_modifiers,omitempty"`
	TypeParams     []TypeParamJSON   `json:"type_params,omitempty"`
	Supertype      string            `json:"supertype,omitempty"`
	MixedIn        string            `json:"mixed_in,omitempty"`
	Interfaces     []string          `json:"interfaces,omitempty"`
	OnTypes        []string          `json:"on_types,omitempty"`
	Type           string            `json:"type,omitempty"`
	Initialized    bool              `json:"initialized,omitempty"`
	Returns        string            `json:"returns,omitempty"`
	Params         []ParamJSON       `json:"params,omitempty"`
	Redirect       *RedirectJSON     `json:"redirect,omitempty"`
	Aliased        string            `json:"aliased,omitempty"`
	Synthetic      bool              `json:"synthetic,omitempty"`
	Shadowed       bool              `json:"shadowed,omitempty"`
	Location       *LocationJSON     `json:"location,omitempty"`
	Members        []DeclarationJSON `json:"members,omitempty"`
}

// DiagnosticJSON представляет диагностику юнита.
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

// UnitJSON — корневая структура JSON-вывода одного юнита.
type UnitJSON struct {
	Path         string            `json:"path,omitempty"`
	Library      string            `json:"library,omitempty"`
	Imports      []ImportJSON      `json:"imports,omitempty"`
	Exports      []string          `json:"exports,omitempty"`
	Parts        []string          `json:"parts,omitempty"`
	Declarations []DeclarationJSON `json:"declarations"`
	Diagnostics  []DiagnosticJSON  `json:"diagnostics,omitempty"`
}

// JSON encodes one unit's outline and diagnostics. res may be nil when the
// unit never produced an outline; the diagnostics still encode.
func JSON(w io.Writer, res *outline.Result, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	payload := BuildUnitJSON(res, bag, fs, opts)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// BuildUnitJSON assembles the payload without encoding, so directory runs
// can collect units into one array.
func BuildUnitJSON(res *outline.Result, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) UnitJSON {
	b := &jsonBuilder{fs: fs, opts: opts}
	out := UnitJSON{Declarations: []DeclarationJSON{}}
	if res != nil {
		b.res = res
		b.synthetic = syntheticSet(res)
		if file := fs.Get(res.Unit); file != nil {
			out.Path = file.FormatPath(opts.PathMode.label(), fs.BaseDir())
		}
		if res.LibraryName != source.NoStringID {
			out.Library = res.Strings.MustLookup(res.LibraryName)
		}
		for _, imp := range res.Imports {
			entry := ImportJSON{URI: res.Strings.MustLookup(imp.URI), Deferred: imp.Deferred}
			if imp.Prefix.IsValid() {
				entry.Prefix = res.Strings.MustLookup(res.Entities.MustGet(imp.Prefix).Name)
			}
			out.Imports = append(out.Imports, entry)
		}
		for _, exp := range res.Exports {
			out.Exports = append(out.Exports, res.Strings.MustLookup(exp.URI))
		}
		for _, part := range res.Parts {
			out.Parts = append(out.Parts, res.Strings.MustLookup(part.URI))
		}
		out.Declarations = b.topLevel()
	}
	if bag != nil {
		for _, d := range bag.Items() {
			entry := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Message:  d.Message,
			}
			if d.Primary != (source.Span{}) {
				entry.Location = b.location(d.Primary)
			}
			out.Diagnostics = append(out.Diagnostics, entry)
		}
	}
	return out
}

type jsonBuilder struct {
	res       *outline.Result
	fs        *source.FileSet
	opts      JSONOpts
	synthetic map[decl.EntityID]bool
}

func (b *jsonBuilder) location(span source.Span) *LocationJSON {
	file := b.fs.Get(span.File)
	if file == nil {
		return nil
	}
	loc := &LocationJSON{
		File:      file.FormatPath(b.opts.PathMode.label(), b.fs.BaseDir()),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if b.opts.IncludePositions {
		start, end := b.fs.Resolve(span)
		loc.StartLine = start.Line
		loc.StartCol = start.Col
		loc.EndLine = end.Line
		loc.EndCol = end.Col
	}
	return loc
}

func (b *jsonBuilder) topLevel() []DeclarationJSON {
	out := b.namespace(b.res.Top)
	for _, id := range b.res.Top.Extensions {
		if b.res.Entities.MustGet(id).Name == source.NoStringID {
			out = append(out, b.declaration(id, false))
		}
	}
	if out == nil {
		out = []DeclarationJSON{}
	}
	return out
}

func (b *jsonBuilder) namespace(ns *outline.NameSpace) []DeclarationJSON {
	var out []DeclarationJSON
	for _, a := range []outline.Axis{outline.GetterAxis, outline.SetterAxis} {
		for _, name := range ns.Names(a) {
			chain := ns.Chain(name, a)
			for i, id := range chain {
				if b.skip(id) {
					continue
				}
				out = append(out, b.declaration(id, i != len(chain)-1))
			}
		}
		for _, name := range ns.AugmentedNames(a) {
			for _, id := range ns.Augmentations(name, a) {
				out = append(out, b.declaration(id, false))
			}
		}
	}
	return out
}

func (b *jsonBuilder) skip(id decl.EntityID) bool {
	switch b.res.Entities.MustGet(id).Kind {
	case decl.KindTypeVariable, decl.KindPrefix:
		return true
	default:
		return false
	}
}

func (b *jsonBuilder) declaration(id decl.EntityID, shadowed bool) DeclarationJSON {
	e := b.res.Entities.MustGet(id)
	strs := b.res.Strings

	out := DeclarationJSON{
		Kind:           headKind(e),
		Modifiers:      e.Mods.Strings(),
		ClassModifiers: e.ClassMods.Strings(),
		Synthetic:      b.synthetic[id],
		Shadowed:       shadowed,
	}
	if e.Name != source.NoStringID {
		out.Name = strs.MustLookup(e.Name)
	}
	if e.Slot.IsValid() {
		out.Slot = uint32(e.Slot)
	}
	for _, tvID := range e.TypeParams {
		tv := b.res.Entities.MustGet(tvID)
		entry := TypeParamJSON{Name: strs.MustLookup(tv.Name)}
		if tv.TypeVar != nil && tv.TypeVar.Bound != nil {
			entry.Bound = RenderRef(tv.TypeVar.Bound, strs)
		}
		out.TypeParams = append(out.TypeParams, entry)
	}
	if e.Class != nil {
		if e.Class.Supertype != nil {
			out.Supertype = RenderRef(e.Class.Supertype, strs)
		}
		if e.Class.MixedIn != nil {
			out.MixedIn = RenderRef(e.Class.MixedIn, strs)
		}
		for _, ref := range e.Class.Interfaces {
			out.Interfaces = append(out.Interfaces, RenderRef(ref, strs))
		}
		for _, ref := range e.Class.OnTypes {
			out.OnTypes = append(out.OnTypes, RenderRef(ref, strs))
		}
	}
	if e.Field != nil {
		if e.Field.Type != nil {
			out.Type = RenderRef(e.Field.Type, strs)
		}
		out.Initialized = e.Field.HasInitializer
	}
	if e.Member != nil {
		if e.Member.ReturnType != nil {
			out.Returns = RenderRef(e.Member.ReturnType, strs)
		}
		for _, paramID := range e.Member.Params {
			param := b.res.Entities.MustGet(paramID)
			entry := ParamJSON{
				Name:       strs.MustLookup(param.Name),
				Modifiers:  param.Mods.Strings(),
				HasDefault: param.Param.HasDefault,
			}
			if param.Param.Type != nil {
				entry.Type = RenderRef(param.Param.Type, strs)
			}
			out.Params = append(out.Params, entry)
		}
		if e.Member.Redirect != nil {
			out.Redirect = &RedirectJSON{}
			if e.Member.Redirect.Type != nil {
				out.Redirect.Type = RenderRef(e.Member.Redirect.Type, strs)
			}
			if e.Member.Redirect.Name != source.NoStringID {
				out.Redirect.Name = strs.MustLookup(e.Member.Redirect.Name)
			}
		}
	}
	if e.Alias != nil && e.Alias.Aliased != nil {
		out.Aliased = RenderRef(e.Alias.Aliased, strs)
	}
	if b.opts.IncludePositions && e.NameSpan != (source.Span{}) {
		out.Location = b.location(e.NameSpan)
	}
	if ns := b.res.Members[id]; ns != nil {
		out.Members = b.namespace(ns)
	}
	return out
}

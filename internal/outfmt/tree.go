package outfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"vela/internal/decl"
	"vela/internal/outline"
	"vela/internal/source"
)

// Pretty renders a unit's declaration tree in a script-like surface syntax.
// Shadowed duplicates and synthetic chain links are marked so the output
// reflects what resolution will actually see.
func Pretty(w io.Writer, res *outline.Result, fs *source.FileSet, opts PrettyOpts) error {
	p := &printer{
		w:         w,
		res:       res,
		fs:        fs,
		opts:      opts,
		synthetic: syntheticSet(res),
	}
	p.unitHeader()
	p.topLevel()
	return p.err
}

type printer struct {
	w         io.Writer
	res       *outline.Result
	fs        *source.FileSet
	opts      PrettyOpts
	synthetic map[decl.EntityID]bool
	err       error
}

func syntheticSet(res *outline.Result) map[decl.EntityID]bool {
	if len(res.MixinLinks) == 0 {
		return nil
	}
	set := make(map[decl.EntityID]bool, len(res.MixinLinks))
	for _, link := range res.MixinLinks {
		set[link.Class] = true
	}
	return set
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) kindLabel(text string) string {
	if !p.opts.Color {
		return text
	}
	return color.New(color.FgCyan).Sprint(text)
}

func (p *printer) nameLabel(text string) string {
	if !p.opts.Color {
		return text
	}
	return color.New(color.Bold).Sprint(text)
}

func (p *printer) dim(text string) string {
	if !p.opts.Color {
		return text
	}
	return color.New(color.Faint).Sprint(text)
}

func (p *printer) unitHeader() {
	file := p.fs.Get(p.res.Unit)
	if file != nil {
		p.printf("unit %s\n", file.FormatPath(p.opts.PathMode.label(), p.fs.BaseDir()))
	}
	if p.res.LibraryName != source.NoStringID {
		p.printf("library %s\n", p.nameLabel(p.res.Strings.MustLookup(p.res.LibraryName)))
	}
	for _, imp := range p.res.Imports {
		line := "import " + p.res.Strings.MustLookup(imp.URI)
		if imp.Prefix.IsValid() {
			line += " as " + p.res.Strings.MustLookup(p.res.Entities.MustGet(imp.Prefix).Name)
		}
		if imp.Deferred {
			line += " deferred"
		}
		p.printf("%s\n", line)
	}
	for _, exp := range p.res.Exports {
		p.printf("export %s\n", p.res.Strings.MustLookup(exp.URI))
	}
	for _, part := range p.res.Parts {
		p.printf("part %s\n", p.res.Strings.MustLookup(part.URI))
	}
}

func (p *printer) topLevel() {
	p.namespace(p.res.Top, 0)
	// Безымянные расширения живут только в упорядоченном списке.
	for _, id := range p.res.Top.Extensions {
		if p.res.Entities.MustGet(id).Name == source.NoStringID {
			p.declaration(id, 0, false)
		}
	}
}

func (p *printer) namespace(ns *outline.NameSpace, depth int) {
	for _, a := range []outline.Axis{outline.GetterAxis, outline.SetterAxis} {
		for _, name := range ns.Names(a) {
			chain := ns.Chain(name, a)
			for i, id := range chain {
				if p.skip(id) {
					continue
				}
				p.declaration(id, depth, i != len(chain)-1)
			}
		}
		for _, name := range ns.AugmentedNames(a) {
			for _, id := range ns.Augmentations(name, a) {
				p.declaration(id, depth, false)
			}
		}
	}
}

// skip filters entities that already render elsewhere: type variables show
// inside the angle brackets, prefixes on their import lines.
func (p *printer) skip(id decl.EntityID) bool {
	switch p.res.Entities.MustGet(id).Kind {
	case decl.KindTypeVariable, decl.KindPrefix:
		return true
	default:
		return false
	}
}

func (p *printer) declaration(id decl.EntityID, depth int, shadowed bool) {
	e := p.res.Entities.MustGet(id)
	indent := strings.Repeat("  ", depth)

	var sb strings.Builder
	if mods := e.ClassMods.Strings(); len(mods) != 0 {
		sb.WriteString(strings.Join(mods, " "))
		sb.WriteByte(' ')
	}
	if mods := e.Mods.Strings(); len(mods) != 0 {
		sb.WriteString(strings.Join(mods, " "))
		sb.WriteByte(' ')
	}
	sb.WriteString(p.kindLabel(headKind(e)))
	if name := p.entityName(e); name != "" {
		sb.WriteByte(' ')
		sb.WriteString(p.nameLabel(name))
	}
	sb.WriteString(p.typeParams(e))
	sb.WriteString(p.signature(e))
	p.printf("%s%s", indent, sb.String())

	var marks []string
	if p.synthetic[id] {
		marks = append(marks, "chain link")
	}
	if shadowed {
		marks = append(marks, "shadowed")
	}
	if p.opts.ShowSlots && e.Slot.IsValid() {
		marks = append(marks, fmt.Sprintf("slot %d", e.Slot))
	}
	if len(marks) != 0 {
		p.printf("  %s", p.dim("("+strings.Join(marks, ", ")+")"))
	}
	p.printf("\n")

	p.clauses(e, depth+1)
	p.members(id, depth+1)
}

// headKind prefers the written form for procedures: method, getter or
// setter.
func headKind(e *decl.Entity) string {
	if e.Kind == decl.KindProcedure && e.Member != nil {
		return e.Member.Accessor.String()
	}
	return e.Kind.String()
}

func (p *printer) entityName(e *decl.Entity) string {
	if e.Name == source.NoStringID {
		return ""
	}
	name := p.res.Strings.MustLookup(e.Name)
	// Конструкторы и фабрики показываем так, как они записаны.
	if (e.Kind == decl.KindConstructor || e.Kind == decl.KindFactory) &&
		e.Member != nil && e.Member.DeclaredClass != source.NoStringID {
		written := p.res.Strings.MustLookup(e.Member.DeclaredClass)
		if written != name {
			return written + "." + name
		}
	}
	return name
}

func (p *printer) typeParams(e *decl.Entity) string {
	if len(e.TypeParams) == 0 {
		return ""
	}
	parts := make([]string, len(e.TypeParams))
	for i, tvID := range e.TypeParams {
		tv := p.res.Entities.MustGet(tvID)
		part := p.res.Strings.MustLookup(tv.Name)
		if tv.TypeVar != nil && tv.TypeVar.Bound != nil {
			part += " extends " + RenderRef(tv.TypeVar.Bound, p.res.Strings)
		}
		parts[i] = part
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// signature renders the inline tail of a declaration head line.
func (p *printer) signature(e *decl.Entity) string {
	switch e.Kind {
	case decl.KindField:
		out := ""
		if e.Field.Type != nil {
			out += ": " + RenderRef(e.Field.Type, p.res.Strings)
		}
		if e.Field.HasInitializer {
			out += " = ..."
		}
		return out
	case decl.KindConstructor, decl.KindFactory, decl.KindProcedure:
		out := p.paramList(e.Member.Params)
		if e.Member.ReturnType != nil {
			out += " -> " + RenderRef(e.Member.ReturnType, p.res.Strings)
		}
		if e.Member.Redirect != nil {
			out += " redirect " + p.constructorRef(e.Member.Redirect)
		}
		return out
	case decl.KindTypeAlias:
		if e.Alias.Aliased != nil {
			return " = " + RenderRef(e.Alias.Aliased, p.res.Strings)
		}
	}
	return ""
}

func (p *printer) paramList(params []decl.EntityID) string {
	parts := make([]string, len(params))
	for i, paramID := range params {
		param := p.res.Entities.MustGet(paramID)
		part := ""
		if mods := param.Mods.Strings(); len(mods) != 0 {
			part += strings.Join(mods, " ") + " "
		}
		part += p.res.Strings.MustLookup(param.Name)
		if param.Param.Type != nil {
			part += ": " + RenderRef(param.Param.Type, p.res.Strings)
		}
		if param.Param.HasDefault {
			part += " = ..."
		}
		parts[i] = part
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (p *printer) constructorRef(ref *decl.ConstructorRef) string {
	out := ""
	if ref.Type != nil {
		out = RenderRef(ref.Type, p.res.Strings)
	}
	out += "::"
	if ref.Name != source.NoStringID {
		out += p.res.Strings.MustLookup(ref.Name)
	}
	return out
}

// clauses prints the indented extends/mixin/implements/on lines of a
// class-like declaration.
func (p *printer) clauses(e *decl.Entity, depth int) {
	if e.Class == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	if e.Class.Supertype != nil {
		p.printf("%s%s %s\n", indent, p.kindLabel("extends"), RenderRef(e.Class.Supertype, p.res.Strings))
	}
	if e.Class.MixedIn != nil {
		p.printf("%s%s %s\n", indent, p.kindLabel("with"), RenderRef(e.Class.MixedIn, p.res.Strings))
	}
	if len(e.Class.Interfaces) != 0 {
		p.printf("%s%s %s\n", indent, p.kindLabel("implements"), p.refList(e.Class.Interfaces))
	}
	if len(e.Class.OnTypes) != 0 {
		p.printf("%s%s %s\n", indent, p.kindLabel("on"), p.refList(e.Class.OnTypes))
	}
}

func (p *printer) refList(refs []*decl.Ref) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = RenderRef(ref, p.res.Strings)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) members(owner decl.EntityID, depth int) {
	ns := p.res.Members[owner]
	if ns == nil {
		return
	}
	p.namespace(ns, depth)
}

// RenderRef renders a type reference back into the written surface form:
// `prefix.Name<Args>` for named references, `fn(params) -> ret` for
// function types, `_` for implicit annotations.
func RenderRef(ref *decl.Ref, strs *source.Interner) string {
	if ref == nil {
		return "_"
	}
	switch ref.Kind {
	case decl.RefVariable:
		return strs.MustLookup(ref.Name)
	case decl.RefNamed:
		out := ""
		if ref.Prefix != source.NoStringID {
			out = strs.MustLookup(ref.Prefix) + "."
		}
		out += strs.MustLookup(ref.Name)
		if len(ref.Args) != 0 {
			parts := make([]string, len(ref.Args))
			for i, arg := range ref.Args {
				parts[i] = RenderRef(arg, strs)
			}
			out += "<" + strings.Join(parts, ", ") + ">"
		}
		return out
	case decl.RefFunc:
		parts := make([]string, len(ref.Params))
		for i, param := range ref.Params {
			parts[i] = RenderRef(param, strs)
		}
		out := "fn(" + strings.Join(parts, ", ") + ")"
		if ref.Ret != nil {
			out += " -> " + RenderRef(ref.Ret, strs)
		}
		return out
	default:
		return "_"
	}
}

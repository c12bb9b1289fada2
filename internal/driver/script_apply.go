package driver

import (
	"fmt"

	"vela/internal/decl"
	"vela/internal/diag"
	"vela/internal/outline"
	"vela/internal/source"
)

// scriptApplier replays decoded events onto the builder. It mirrors the
// open-frame stack so malformed user sequences surface as diagnostics here
// instead of tripping the orchestrator's internal contracts.
type scriptApplier struct {
	b        *outline.Builder
	interner *source.Interner
	reporter diag.Reporter
	unit     source.FileID

	frames []openFrame
}

type openFrame struct {
	kind outline.FrameKind
	span source.Span
}

// applyScript drives the builder through a scanned event list, then closes
// every frame the script left open so Finish sees a balanced unit.
func applyScript(b *outline.Builder, unit source.FileID, events []scriptEvent, reporter diag.Reporter) {
	a := &scriptApplier{b: b, interner: b.Strings(), reporter: reporter, unit: unit}
	for i := range events {
		a.apply(&events[i])
	}
	a.closeDangling()
}

func (a *scriptApplier) top() outline.FrameKind {
	if len(a.frames) == 0 {
		return outline.FrameLibrary
	}
	return a.frames[len(a.frames)-1].kind
}

func (a *scriptApplier) push(kind outline.FrameKind, span source.Span) {
	a.frames = append(a.frames, openFrame{kind: kind, span: span})
}

func (a *scriptApplier) misplaced(ev *scriptEvent, msg string) {
	diag.ReportError(a.reporter, diag.EvtMisplacedEvent, ev.span, msg).Emit()
}

// isContainerKind reports whether the frame takes member declarations.
func isContainerKind(k outline.FrameKind) bool {
	switch k {
	case outline.FrameClass, outline.FrameMixin, outline.FrameNamedMixinApplication,
		outline.FrameEnum, outline.FrameExtension, outline.FrameExtensionType:
		return true
	default:
		return false
	}
}

func (a *scriptApplier) apply(ev *scriptEvent) {
	switch ev.op {
	case opLibrary:
		if len(a.frames) != 0 {
			a.misplaced(ev, "library directive inside a declaration")
			return
		}
		a.b.AddLibraryDirective(ev.name, ev.nameSpan)

	case opImport:
		if len(a.frames) != 0 {
			a.misplaced(ev, "import inside a declaration")
			return
		}
		a.b.AddImport(ev.name, ev.nameSpan, ev.second, ev.secondSpan, ev.flag)

	case opExport:
		if len(a.frames) != 0 {
			a.misplaced(ev, "export inside a declaration")
			return
		}
		a.b.AddExport(ev.name, ev.nameSpan)

	case opPart:
		if len(a.frames) != 0 {
			a.misplaced(ev, "part directive inside a declaration")
			return
		}
		a.b.AddPart(ev.name, ev.nameSpan)

	case opMeta:
		a.b.AddMetadata(ev.span)

	case opBeginClass:
		a.beginTopLevel(ev, outline.FrameClass)
	case opBeginMixin:
		a.beginTopLevel(ev, outline.FrameMixin)
	case opBeginNamed:
		a.beginTopLevel(ev, outline.FrameNamedMixinApplication)
	case opBeginEnum:
		a.beginTopLevel(ev, outline.FrameEnum)
	case opBeginExtension:
		a.beginTopLevel(ev, outline.FrameExtension)
	case opBeginExtensionType:
		a.beginTopLevel(ev, outline.FrameExtensionType)
	case opBeginTypedef:
		a.beginTopLevel(ev, outline.FrameTypedef)

	case opBeginConstructor:
		if !isContainerKind(a.top()) {
			a.misplaced(ev, "constructor outside a class-like declaration")
			return
		}
		a.push(outline.FrameConstructor, ev.span)
		a.b.BeginConstructor(ev.second, ev.secondSpan, ev.name, ev.nameSpan)

	case opBeginFactory:
		if !isContainerKind(a.top()) {
			a.misplaced(ev, "factory outside a class-like declaration")
			return
		}
		a.push(outline.FrameFactory, ev.span)
		a.b.BeginFactory(ev.second, ev.secondSpan, ev.name, ev.nameSpan)

	case opBeginMethod:
		if len(a.frames) != 0 && !isContainerKind(a.top()) {
			a.misplaced(ev, "method inside another member")
			return
		}
		a.push(outline.FrameMethod, ev.span)
		a.b.BeginMethod(ev.name, ev.nameSpan)
		if ev.accessor != decl.AccessorNone {
			a.b.SetAccessor(ev.accessor)
		}

	case opEnd:
		a.applyEnd(ev)

	case opMods:
		if len(a.frames) == 0 {
			a.misplaced(ev, "modifiers outside a declaration")
			return
		}
		a.b.SetModifiers(ev.mods)

	case opClassMods:
		if !isContainerKind(a.top()) {
			a.misplaced(ev, "class modifiers outside a class-like declaration")
			return
		}
		a.b.SetClassModifiers(ev.classMods)

	case opExtends:
		if t := a.top(); t != outline.FrameClass && t != outline.FrameNamedMixinApplication {
			a.misplaced(ev, "extends clause outside a class")
			return
		}
		if ref := a.readType(ev.types[0]); ref != nil {
			a.b.SetSupertype(ref)
		}

	case opWith:
		switch a.top() {
		case outline.FrameClass, outline.FrameNamedMixinApplication, outline.FrameEnum:
		default:
			a.misplaced(ev, "with clause outside a class")
			return
		}
		for _, ref := range a.readTypeList(ev.types[0]) {
			a.b.AddMixin(ref)
		}

	case opImplements:
		switch a.top() {
		case outline.FrameClass, outline.FrameMixin, outline.FrameNamedMixinApplication,
			outline.FrameEnum, outline.FrameExtensionType:
		default:
			a.misplaced(ev, "implements clause is not allowed here")
			return
		}
		for _, ref := range a.readTypeList(ev.types[0]) {
			a.b.AddInterface(ref)
		}

	case opOn:
		switch a.top() {
		case outline.FrameMixin, outline.FrameExtension, outline.FrameExtensionType:
		default:
			a.misplaced(ev, "on clause is not allowed here")
			return
		}
		for _, ref := range a.readTypeList(ev.types[0]) {
			a.b.AddOnType(ref)
		}

	case opTypeVar:
		if len(a.frames) == 0 {
			a.misplaced(ev, "type variable outside a declaration")
			return
		}
		// Переменную объявляем до разбора границы: в `T extends Comparable<T>`
		// правая часть ссылается на саму T.
		id := a.b.AddTypeVariable(ev.name, ev.nameSpan, nil)
		if len(ev.types) > 0 {
			if bound := a.readType(ev.types[0]); bound != nil {
				a.b.SetTypeVariableBound(id, bound)
			}
		}

	case opField:
		if len(a.frames) != 0 && !isContainerKind(a.top()) {
			a.misplaced(ev, "field inside a member")
			return
		}
		var typ *decl.Ref
		if len(ev.types) > 0 {
			typ = a.readType(ev.types[0])
		}
		a.b.AddField(ev.name, ev.nameSpan, typ, ev.mods, ev.flag)

	case opParam:
		switch a.top() {
		case outline.FrameConstructor, outline.FrameFactory, outline.FrameMethod, outline.FrameTypedef:
		default:
			a.misplaced(ev, "parameter outside a member")
			return
		}
		var typ *decl.Ref
		if len(ev.types) > 0 {
			typ = a.readType(ev.types[0])
		}
		a.b.AddFormalParameter(ev.name, ev.nameSpan, typ, ev.mods, ev.flag)

	case opReturns:
		if a.top() != outline.FrameMethod {
			a.misplaced(ev, "return type outside a method")
			return
		}
		if ref := a.readType(ev.types[0]); ref != nil {
			a.b.SetReturnType(ref)
		}

	case opAlias:
		if a.top() != outline.FrameTypedef {
			a.misplaced(ev, "aliased type outside a typedef")
			return
		}
		if ref := a.readType(ev.types[0]); ref != nil {
			a.b.SetAliasedType(ref)
		}

	case opRedirect:
		if a.top() != outline.FrameFactory {
			a.misplaced(ev, "redirect outside a factory")
			return
		}
		typ, name, nameSpan, ok := a.readConstructorRef(ev.types[0], true)
		if !ok {
			return
		}
		a.b.AddConstructorReference(typ, name, nameSpan)

	case opNew:
		if a.top() == outline.FrameFactory {
			a.misplaced(ev, "use 'redirect' inside a factory")
			return
		}
		typ, name, nameSpan, ok := a.readConstructorRef(ev.types[0], false)
		if !ok || typ == nil {
			return
		}
		a.b.AddConstructorReference(typ, name, nameSpan)
	}
}

// beginTopLevel opens a class-like or typedef frame. Declarations never
// nest in the event stream.
func (a *scriptApplier) beginTopLevel(ev *scriptEvent, kind outline.FrameKind) {
	if len(a.frames) != 0 {
		a.misplaced(ev, "declarations do not nest")
		return
	}
	a.push(kind, ev.span)
	switch kind {
	case outline.FrameClass:
		a.b.BeginClass(ev.name, ev.nameSpan)
	case outline.FrameMixin:
		a.b.BeginMixin(ev.name, ev.nameSpan)
	case outline.FrameNamedMixinApplication:
		a.b.BeginNamedMixinApplication(ev.name, ev.nameSpan)
	case outline.FrameEnum:
		a.b.BeginEnum(ev.name, ev.nameSpan)
	case outline.FrameExtension:
		a.b.BeginExtension(ev.name, ev.nameSpan)
	case outline.FrameExtensionType:
		a.b.BeginExtensionType(ev.name, ev.nameSpan)
	case outline.FrameTypedef:
		a.b.BeginTypedef(ev.name, ev.nameSpan)
	}
}

func (a *scriptApplier) applyEnd(ev *scriptEvent) {
	if len(a.frames) == 0 {
		diag.ReportError(a.reporter, diag.EvtStrayEnd, ev.span,
			"'end' without an open declaration").Emit()
		return
	}
	f := a.frames[len(a.frames)-1]
	a.frames = a.frames[:len(a.frames)-1]
	a.endFrame(f.kind)
}

func (a *scriptApplier) endFrame(kind outline.FrameKind) {
	switch kind {
	case outline.FrameClass:
		a.b.EndClass()
	case outline.FrameMixin:
		a.b.EndMixin()
	case outline.FrameNamedMixinApplication:
		a.b.EndNamedMixinApplication()
	case outline.FrameEnum:
		a.b.EndEnum()
	case outline.FrameExtension:
		a.b.EndExtension()
	case outline.FrameExtensionType:
		a.b.EndExtensionType()
	case outline.FrameConstructor:
		a.b.EndConstructor()
	case outline.FrameFactory:
		a.b.EndFactory()
	case outline.FrameMethod:
		a.b.EndMethod()
	case outline.FrameTypedef:
		a.b.EndTypedef()
	}
}

// closeDangling reports and closes frames the script never ended, keeping
// every partial declaration resolvable.
func (a *scriptApplier) closeDangling() {
	for len(a.frames) > 0 {
		f := a.frames[len(a.frames)-1]
		a.frames = a.frames[:len(a.frames)-1]
		diag.ReportError(a.reporter, diag.EvtUnbalancedBegin, f.span,
			fmt.Sprintf("%s is never closed", f.kind)).Emit()
		a.endFrame(f.kind)
	}
}

// --- type expressions ---

// typeReader parses one type fragment against the builder, so bare names
// bind to in-scope type variables and the rest join the unresolved list.
//
//	type  := named | func
//	named := [prefix '.'] ident ['<' type (',' type)* '>']
//	func  := 'fn' '(' [type (',' type)*] ')' ['->' type]
type typeReader struct {
	b        *outline.Builder
	interner *source.Interner
	reporter diag.Reporter
	unit     source.FileID

	src    string
	base   uint32
	pos    int
	failed bool
}

func (a *scriptApplier) reader(t typeExpr) *typeReader {
	return &typeReader{
		b:        a.b,
		interner: a.interner,
		reporter: a.reporter,
		unit:     a.unit,
		src:      t.text,
		base:     t.off,
	}
}

// readType parses exactly one type; trailing characters fail the fragment.
func (a *scriptApplier) readType(t typeExpr) *decl.Ref {
	r := a.reader(t)
	ref := r.parseType()
	r.skipSpaces()
	if !r.failed && r.pos < len(r.src) {
		r.fail("trailing characters after type")
	}
	if r.failed {
		return nil
	}
	return ref
}

// readTypeList parses a comma-separated type list. On a malformed tail the
// well-formed head still applies.
func (a *scriptApplier) readTypeList(t typeExpr) []*decl.Ref {
	r := a.reader(t)
	var refs []*decl.Ref
	for {
		ref := r.parseType()
		if r.failed {
			return refs
		}
		refs = append(refs, ref)
		r.skipSpaces()
		if r.pos >= len(r.src) {
			return refs
		}
		if r.src[r.pos] != ',' {
			r.fail("expected ','")
			return refs
		}
		r.pos++
	}
}

// readConstructorRef parses `Type[::name]`, or `::name` alone when typeless
// references are legal in this position. The `::` separator keeps the
// constructor name apart from import-prefix dots.
func (a *scriptApplier) readConstructorRef(t typeExpr, typeless bool) (*decl.Ref, source.StringID, source.Span, bool) {
	r := a.reader(t)
	r.skipSpaces()
	if typeless && r.eatSeparator() {
		name, sp := r.ident("constructor name")
		if !r.atEnd("constructor name") {
			return nil, source.NoStringID, source.Span{}, false
		}
		return nil, name, sp, true
	}
	ref := r.parseType()
	if r.failed || ref == nil {
		return nil, source.NoStringID, source.Span{}, false
	}
	name := source.NoStringID
	sp := ref.NameSpan
	if r.eatSeparator() {
		name, sp = r.ident("constructor name")
	}
	if !r.atEnd("constructor reference") {
		return nil, source.NoStringID, source.Span{}, false
	}
	return ref, name, sp, true
}

// eatSeparator consumes a `::` constructor-name separator.
func (r *typeReader) eatSeparator() bool {
	r.skipSpaces()
	if r.pos+1 < len(r.src) && r.src[r.pos] == ':' && r.src[r.pos+1] == ':' {
		r.pos += 2
		return true
	}
	return false
}

func (r *typeReader) fail(msg string) {
	if r.failed {
		return
	}
	r.failed = true
	diag.ReportError(r.reporter, diag.EvtBadTypeExpr,
		source.At(r.unit, r.base+uint32(r.pos)), msg).Emit()
}

// atEnd checks the fragment is fully consumed.
func (r *typeReader) atEnd(what string) bool {
	r.skipSpaces()
	if !r.failed && r.pos < len(r.src) {
		r.fail("trailing characters after " + what)
	}
	return !r.failed
}

func (r *typeReader) skipSpaces() {
	for r.pos < len(r.src) && (r.src[r.pos] == ' ' || r.src[r.pos] == '\t') {
		r.pos++
	}
}

func (r *typeReader) eat(c byte) bool {
	r.skipSpaces()
	if r.pos < len(r.src) && r.src[r.pos] == c {
		r.pos++
		return true
	}
	return false
}

// ident consumes one identifier and returns its interned name and span.
func (r *typeReader) ident(what string) (source.StringID, source.Span) {
	r.skipSpaces()
	start := r.pos
	for r.pos < len(r.src) && identByte(r.src[r.pos], r.pos > start) {
		r.pos++
	}
	text := r.src[start:r.pos]
	if !isIdent(text) {
		r.fail("expected " + what)
		return source.NoStringID, source.Span{}
	}
	sp := source.NewSpan(r.unit, r.base+uint32(start), r.base+uint32(r.pos))
	return r.interner.InternIdent(text), sp
}

func identByte(c byte, continued bool) bool {
	switch {
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$':
		return true
	case c >= '0' && c <= '9':
		return continued
	default:
		return false
	}
}

func (r *typeReader) parseType() *decl.Ref {
	r.skipSpaces()
	if r.failed {
		return nil
	}
	if r.peekFunc() {
		return r.parseFunc()
	}
	return r.parseNamed()
}

// peekFunc reports whether the cursor sits on `fn(`.
func (r *typeReader) peekFunc() bool {
	if r.pos+1 >= len(r.src) || r.src[r.pos] != 'f' || r.src[r.pos+1] != 'n' {
		return false
	}
	i := r.pos + 2
	for i < len(r.src) && (r.src[i] == ' ' || r.src[i] == '\t') {
		i++
	}
	return i < len(r.src) && r.src[i] == '('
}

func (r *typeReader) parseNamed() *decl.Ref {
	start := r.pos
	first, _ := r.ident("type name")
	if r.failed {
		return nil
	}
	prefix := source.NoStringID
	name := first
	if r.pos < len(r.src) && r.src[r.pos] == '.' {
		r.pos++
		prefix = first
		name, _ = r.ident("type name after prefix")
		if r.failed {
			return nil
		}
	}
	var args []*decl.Ref
	if r.eat('<') {
		for {
			arg := r.parseType()
			if r.failed {
				return nil
			}
			args = append(args, arg)
			if r.eat(',') {
				continue
			}
			if r.eat('>') {
				break
			}
			r.fail("expected ',' or '>' in type arguments")
			return nil
		}
	}
	span := source.NewSpan(r.unit, r.base+uint32(start), r.base+uint32(r.pos))
	return r.b.MakeNamedType(prefix, name, span, args...)
}

// parseFunc parses `fn(params) -> ret`. The function-type frame is closed
// on every path so the builder stack stays balanced.
func (r *typeReader) parseFunc() *decl.Ref {
	start := r.pos
	r.pos += 2 // fn
	span := source.At(r.unit, r.base+uint32(start))
	r.b.BeginFunctionType(span)

	var params []*decl.Ref
	var ret *decl.Ref
	if !r.eat('(') {
		r.fail("expected '(' after 'fn'")
	} else if !r.eat(')') {
		for {
			p := r.parseType()
			if r.failed {
				break
			}
			params = append(params, p)
			if r.eat(',') {
				continue
			}
			if r.eat(')') {
				break
			}
			r.fail("expected ',' or ')' in parameter types")
			break
		}
	}
	if !r.failed {
		r.skipSpaces()
		if r.pos+1 < len(r.src) && r.src[r.pos] == '-' && r.src[r.pos+1] == '>' {
			r.pos += 2
			ret = r.parseType()
		}
	}

	full := source.NewSpan(r.unit, r.base+uint32(start), r.base+uint32(r.pos))
	ref := r.b.EndFunctionType(params, ret, full)
	if r.failed {
		return nil
	}
	return ref
}

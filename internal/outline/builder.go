package outline

import (
	"fmt"

	"fortio.org/safecast"

	"vela/internal/decl"
	"vela/internal/diag"
	"vela/internal/source"
)

// Hints provide optional capacity suggestions for the unit arenas.
type Hints struct{ Entities, Scopes uint }

// Options configures one unit's outline construction.
type Options struct {
	// Strings is the shared interner. Nil allocates a fresh one; parallel
	// drivers pass one interner for all units.
	Strings *source.Interner
	// Reporter receives user diagnostics. Nil discards them.
	Reporter diag.Reporter
	// Unit names the compilation unit under construction.
	Unit source.FileID
	// PrevSlots is the previous compilation's reference index, if any.
	PrevSlots *RefIndex
	Hints     Hints
}

// Builder is the outline orchestrator: the begin/end entry points mirror the
// parse events of one compilation unit, the flat add calls fill in-progress
// declarations, and Finish assembles the per-unit result.
//
// The event source is trusted: user mistakes become diagnostics and the
// offending entity is still registered, while impossible event sequences
// (unbalanced begin/end, misplaced structural events) abort the pass.
type Builder struct {
	entities *decl.Entities
	scopes   *Scopes
	strings  *source.Interner
	reporter diag.Reporter

	stack    *Stack
	registry *Registry
	binder   *Binder

	result  *Result
	library *Frame

	pendingMetadata []source.Span
	seenLibrary     bool
	librarySpan     source.Span
	objectName      source.StringID
	finished        bool
}

// NewBuilder starts a unit: the library frame is pushed and stays open until
// Finish.
func NewBuilder(opts Options) *Builder {
	strings := opts.Strings
	if strings == nil {
		strings = source.NewInterner()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	entCap, err := safecast.Conv[uint32](opts.Hints.Entities)
	if err != nil {
		panic(fmt.Errorf("entity capacity overflow: %w", err))
	}
	scopeCap, err := safecast.Conv[uint32](opts.Hints.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}

	entities := decl.NewEntities(entCap)
	scopes := NewScopes(scopeCap)
	b := &Builder{
		entities:   entities,
		scopes:     scopes,
		strings:    strings,
		reporter:   reporter,
		stack:      NewStack(entities, scopes, strings, reporter),
		registry:   NewRegistry(entities, strings, reporter),
		binder:     NewBinder(strings, entities, opts.PrevSlots),
		objectName: strings.Intern("Object"),
	}
	b.result = &Result{
		Unit:     opts.Unit,
		Entities: entities,
		Scopes:   scopes,
		Strings:  strings,
		Members:  make(map[decl.EntityID]*NameSpace),
	}
	b.library = b.stack.Push(FrameLibrary, source.NoStringID, source.Span{})
	b.result.Top = b.library.Fragment
	return b
}

// Strings exposes the unit's interner for event decoding.
func (b *Builder) Strings() *source.Interner { return b.strings }

// Depth reports the number of open frames, the library frame included.
func (b *Builder) Depth() int { return b.stack.Depth() }

// --- begin/end events ---

// BeginClass opens a class declaration.
func (b *Builder) BeginClass(name source.StringID, span source.Span) {
	b.begin(FrameClass, name, span)
}

// EndClass closes the class, expanding its mixin list into synthetic
// single-mixin links when present.
func (b *Builder) EndClass() decl.EntityID {
	f := b.pop(FrameClass)
	super := f.Supertype
	if len(f.Mixins) > 0 {
		super, _ = b.linearizeMixins(mixinInput{
			Supertype:  f.Supertype,
			Mixins:     f.Mixins,
			Name:       f.Name,
			NameSpan:   f.NameSpan,
			TypeParams: f.TypeVars,
		})
	}
	return b.finishClassLike(f, decl.KindClass, &decl.ClassDetail{
		Supertype:  super,
		Interfaces: f.Interfaces,
	})
}

// BeginMixin opens a mixin declaration.
func (b *Builder) BeginMixin(name source.StringID, span source.Span) {
	b.begin(FrameMixin, name, span)
}

// EndMixin closes the mixin declaration. A multi-type on clause feeds the
// same chain expansion as a class's mixin list, but the mixin itself stays
// the terminal entity.
func (b *Builder) EndMixin() decl.EntityID {
	f := b.pop(FrameMixin)
	var super *decl.Ref
	if len(f.OnTypes) > 0 {
		super = f.OnTypes[0]
		if len(f.OnTypes) > 1 {
			super, _ = b.linearizeMixins(mixinInput{
				Supertype:  f.OnTypes[0],
				Mixins:     f.OnTypes[1:],
				Name:       f.Name,
				NameSpan:   f.NameSpan,
				TypeParams: f.TypeVars,
			})
		}
	}
	return b.finishClassLike(f, decl.KindMixin, &decl.ClassDetail{
		Supertype:  super,
		Interfaces: f.Interfaces,
		OnTypes:    f.OnTypes,
	})
}

// BeginNamedMixinApplication opens a named mixin application.
func (b *Builder) BeginNamedMixinApplication(name source.StringID, span source.Span) {
	b.begin(FrameNamedMixinApplication, name, span)
}

// EndNamedMixinApplication closes the application. The final chain link is
// the user-named entity itself, carrying the declared type parameters,
// interfaces, metadata and modifiers.
func (b *Builder) EndNamedMixinApplication() decl.EntityID {
	f := b.pop(FrameNamedMixinApplication)
	if len(f.Mixins) == 0 {
		// Восстановление после обрыва: без миксинов остаётся обычный класс.
		return b.finishClassLike(f, decl.KindClass, &decl.ClassDetail{
			Supertype:  f.Supertype,
			Interfaces: f.Interfaces,
		})
	}
	_, id := b.linearizeMixins(mixinInput{
		Supertype:  f.Supertype,
		Mixins:     f.Mixins,
		Name:       f.Name,
		NameSpan:   f.NameSpan,
		TypeParams: f.TypeVars,
		Named:      true,
		Interfaces: f.Interfaces,
		Metadata:   f.Metadata,
		Mods:       f.Mods,
		ClassMods:  f.ClassMods,
	})
	if fragment := b.result.Members[id]; fragment != nil {
		b.stack.InstallTypeVariables(f.TypeVars, fragment, ConflictForbidden)
	}
	return id
}

// BeginEnum opens an enum declaration.
func (b *Builder) BeginEnum(name source.StringID, span source.Span) {
	b.begin(FrameEnum, name, span)
}

// EndEnum closes the enum. Values arrived as fields of its namespace.
func (b *Builder) EndEnum() decl.EntityID {
	f := b.pop(FrameEnum)
	super := f.Supertype
	if len(f.Mixins) > 0 {
		super, _ = b.linearizeMixins(mixinInput{
			Supertype:  f.Supertype,
			Mixins:     f.Mixins,
			Name:       f.Name,
			NameSpan:   f.NameSpan,
			TypeParams: f.TypeVars,
		})
	}
	return b.finishClassLike(f, decl.KindEnum, &decl.ClassDetail{
		Supertype:  super,
		Interfaces: f.Interfaces,
	})
}

// BeginExtension opens an extension declaration; name may be NoStringID for
// an unnamed extension.
func (b *Builder) BeginExtension(name source.StringID, span source.Span) {
	b.begin(FrameExtension, name, span)
}

// EndExtension closes the extension. Unnamed extensions join the ordered
// extension list without becoming name-resolvable.
func (b *Builder) EndExtension() decl.EntityID {
	f := b.pop(FrameExtension)
	return b.finishClassLike(f, decl.KindExtension, &decl.ClassDetail{
		OnTypes: f.OnTypes,
	})
}

// BeginExtensionType opens an extension-type declaration.
func (b *Builder) BeginExtensionType(name source.StringID, span source.Span) {
	b.begin(FrameExtensionType, name, span)
}

// EndExtensionType closes the extension type. Its representation arrived as
// a field of the namespace.
func (b *Builder) EndExtensionType() decl.EntityID {
	f := b.pop(FrameExtensionType)
	return b.finishClassLike(f, decl.KindExtensionType, &decl.ClassDetail{
		Interfaces: f.Interfaces,
	})
}

// BeginConstructor opens a generative constructor. declaredClass is the
// class-name part as written; name is the part after the dot, or NoStringID
// for the unnamed constructor.
func (b *Builder) BeginConstructor(declaredClass source.StringID, declaredSpan source.Span, name source.StringID, span source.Span) {
	f := b.begin(FrameConstructor, name, span)
	f.DeclaredClass = declaredClass
	f.DeclaredClassSpan = declaredSpan
}

// EndConstructor closes the constructor, checking the written class name
// against the enclosing declaration.
func (b *Builder) EndConstructor() decl.EntityID {
	f := b.pop(FrameConstructor)
	return b.finishMember(f, decl.KindConstructor, &decl.MemberDetail{
		Params:        f.Params,
		DeclaredClass: f.DeclaredClass,
	})
}

// BeginFactory opens a factory constructor.
func (b *Builder) BeginFactory(declaredClass source.StringID, declaredSpan source.Span, name source.StringID, span source.Span) {
	f := b.begin(FrameFactory, name, span)
	f.DeclaredClass = declaredClass
	f.DeclaredClassSpan = declaredSpan
}

// EndFactory closes the factory, keeping its redirect target if one was
// added.
func (b *Builder) EndFactory() decl.EntityID {
	f := b.pop(FrameFactory)
	return b.finishMember(f, decl.KindFactory, &decl.MemberDetail{
		Params:        f.Params,
		DeclaredClass: f.DeclaredClass,
		Redirect:      f.Redirect,
	})
}

// BeginMethod opens a method, getter or setter, top-level or inside a
// class-like declaration.
func (b *Builder) BeginMethod(name source.StringID, span source.Span) {
	b.begin(FrameMethod, name, span)
}

// EndMethod closes the method. Setters register on the setter axis.
func (b *Builder) EndMethod() decl.EntityID {
	f := b.pop(FrameMethod)
	return b.finishMember(f, decl.KindProcedure, &decl.MemberDetail{
		ReturnType: f.ReturnType,
		Params:     f.Params,
		Accessor:   f.Accessor,
	})
}

// BeginTypedef opens a typedef declaration.
func (b *Builder) BeginTypedef(name source.StringID, span source.Span) {
	b.begin(FrameTypedef, name, span)
}

// EndTypedef closes the typedef.
func (b *Builder) EndTypedef() decl.EntityID {
	f := b.pop(FrameTypedef)
	e := decl.Entity{
		Kind:       decl.KindTypeAlias,
		Name:       f.Name,
		NameSpan:   f.NameSpan,
		Mods:       f.Mods,
		Metadata:   f.Metadata,
		TypeParams: f.TypeVars,
		Alias:      &decl.AliasDetail{Aliased: f.Aliased},
	}
	id := b.entities.New(&e)
	b.bindEntity(id)
	b.stack.InstallTypeVariables(f.TypeVars, NewNameSpace(), ConflictForbidden)
	b.registry.Register(b.stack.Fragment(), f.Name, id, GetterAxis)
	return id
}

// BeginFunctionType opens a function-type frame so its structural type
// variables get a scope of their own while component annotations are built.
func (b *Builder) BeginFunctionType(span source.Span) {
	b.stack.Push(FrameFunctionType, source.NoStringID, span)
}

// EndFunctionType closes the frame and builds the structural reference.
func (b *Builder) EndFunctionType(params []*decl.Ref, ret *decl.Ref, span source.Span) *decl.Ref {
	f := b.stack.Pop(FrameFunctionType)
	b.stack.InstallTypeVariables(f.Structural, NewNameSpace(), ConflictForbidden)
	return decl.FuncRef(params, ret, span)
}

// --- flat add events ---

// AddLibraryDirective names the library. A repeated directive is reported
// and ignored.
func (b *Builder) AddLibraryDirective(name source.StringID, span source.Span) {
	meta := b.takeMetadata()
	if b.seenLibrary {
		diag.ReportError(b.reporter, diag.OutDuplicateLibraryDirective, span,
			"library directive is already present").
			WithNote(b.librarySpan, "previous library directive here").
			Emit()
		return
	}
	b.seenLibrary = true
	b.librarySpan = span
	b.library.Name = name
	b.result.LibraryName = name
	b.result.LibraryMetadata = meta
}

// AddImport records an import directive, creating or merging its prefix.
func (b *Builder) AddImport(uri source.StringID, uriSpan source.Span, prefix source.StringID, prefixSpan source.Span, deferred bool) {
	meta := b.takeMetadata()
	b.checkDirectiveURI(uri, uriSpan)
	imp := Import{URI: uri, Span: uriSpan, Deferred: deferred, Metadata: meta}
	if prefix != source.NoStringID {
		var mods decl.Modifiers
		if deferred {
			mods = decl.ModDeferred
		}
		e := decl.Entity{
			Kind:     decl.KindPrefix,
			Name:     prefix,
			NameSpan: prefixSpan,
			Mods:     mods,
			Prefix: &decl.PrefixDetail{
				Deferred:   deferred,
				ImportURIs: []source.StringID{uri},
			},
		}
		id := b.entities.New(&e)
		imp.Prefix = b.registry.Register(b.result.Top, prefix, id, GetterAxis)
	}
	b.result.Imports = append(b.result.Imports, imp)
}

// AddExport records an export directive for the loader.
func (b *Builder) AddExport(uri source.StringID, span source.Span) {
	meta := b.takeMetadata()
	b.checkDirectiveURI(uri, span)
	b.result.Exports = append(b.result.Exports, Directive{URI: uri, Span: span, Metadata: meta})
}

// AddPart records a part directive for the loader.
func (b *Builder) AddPart(uri source.StringID, span source.Span) {
	meta := b.takeMetadata()
	b.checkDirectiveURI(uri, span)
	b.result.Parts = append(b.result.Parts, Directive{URI: uri, Span: span, Metadata: meta})
}

// AddMetadata queues an annotation for the next declaration or directive.
func (b *Builder) AddMetadata(span source.Span) {
	b.pendingMetadata = append(b.pendingMetadata, span)
}

// AddTypeVariable declares a type variable on the current frame. The
// variable is visible to lookups immediately, so its own bound may mention
// it; self-referential bounds arrive later through SetTypeVariableBound.
func (b *Builder) AddTypeVariable(name source.StringID, span source.Span, bound *decl.Ref) decl.EntityID {
	e := decl.Entity{
		Kind:     decl.KindTypeVariable,
		Name:     name,
		NameSpan: span,
		Metadata: b.takeMetadata(),
		TypeVar:  &decl.TypeVarDetail{Bound: bound},
	}
	return b.stack.AddTypeVariable(&e)
}

// SetTypeVariableBound attaches a bound built after the variable was
// declared.
func (b *Builder) SetTypeVariableBound(id decl.EntityID, bound *decl.Ref) {
	e := b.entities.MustGet(id)
	if e.Kind != decl.KindTypeVariable {
		panic(fmt.Errorf("outline: bound on %s %q", e.Kind, b.strings.MustLookup(e.Name)))
	}
	e.TypeVar.Bound = bound
}

// AddField declares a field in the current namespace: a member inside a
// class-like frame, a top-level variable otherwise. Enum values and
// extension-type representations arrive this way too.
func (b *Builder) AddField(name source.StringID, span source.Span, typ *decl.Ref, mods decl.Modifiers, hasInit bool) decl.EntityID {
	e := decl.Entity{
		Kind:     decl.KindField,
		Name:     name,
		NameSpan: span,
		Mods:     mods,
		Metadata: b.takeMetadata(),
		Field:    &decl.FieldDetail{Type: typ, HasInitializer: hasInit},
	}
	id := b.entities.New(&e)
	b.bindEntity(id)
	b.registry.Register(b.stack.Fragment(), name, id, GetterAxis)
	return id
}

// AddFormalParameter appends a parameter to the open member, typedef or
// function-type frame.
func (b *Builder) AddFormalParameter(name source.StringID, span source.Span, typ *decl.Ref, mods decl.Modifiers, hasDefault bool) decl.EntityID {
	f := b.stack.Current()
	if f == nil || !(f.Kind.IsMember() || f.Kind == FrameFunctionType || f.Kind == FrameTypedef) {
		panic(fmt.Errorf("outline: formal parameter outside a member or function type"))
	}
	e := decl.Entity{
		Kind:     decl.KindFormalParameter,
		Name:     name,
		NameSpan: span,
		Mods:     mods,
		Metadata: b.takeMetadata(),
		Param:    &decl.ParamDetail{Type: typ, HasDefault: hasDefault},
	}
	id := b.entities.New(&e)
	f.Params = append(f.Params, id)
	return id
}

// AddConstructorReference builds a constructor reference. Inside a factory
// it becomes the redirect target, the single context where the type name may
// be omitted; anywhere else it is recorded as a candidate and the type is
// mandatory.
func (b *Builder) AddConstructorReference(typ *decl.Ref, name source.StringID, span source.Span) *decl.ConstructorRef {
	cref := &decl.ConstructorRef{Type: typ, Name: name, NameSpan: span}
	if f := b.stack.Current(); f != nil && f.Kind == FrameFactory {
		f.Redirect = cref
		return cref
	}
	if typ == nil {
		panic(fmt.Errorf("outline: constructor reference without a type outside a factory redirect"))
	}
	b.result.ConstructorRefs = append(b.result.ConstructorRefs, cref)
	return cref
}

// --- declaration state events ---

// SetModifiers sets the member modifier bits of the open declaration.
func (b *Builder) SetModifiers(mods decl.Modifiers) {
	b.current("modifiers").Mods = mods
}

// SetClassModifiers sets the class-modifier bits of the open declaration.
func (b *Builder) SetClassModifiers(mods decl.ClassModifiers) {
	b.current("class modifiers").ClassMods = mods
}

// SetSupertype sets the extends clause of the open declaration.
func (b *Builder) SetSupertype(ref *decl.Ref) {
	b.current("supertype").Supertype = ref
}

// AddMixin appends to the with clause of the open declaration.
func (b *Builder) AddMixin(ref *decl.Ref) {
	f := b.current("mixin")
	f.Mixins = append(f.Mixins, ref)
}

// AddInterface appends to the implements clause of the open declaration.
func (b *Builder) AddInterface(ref *decl.Ref) {
	f := b.current("interface")
	f.Interfaces = append(f.Interfaces, ref)
}

// AddOnType appends an on-clause constraint: a mixin's superclass
// constraint or an extension's receiver type.
func (b *Builder) AddOnType(ref *decl.Ref) {
	f := b.current("on type")
	f.OnTypes = append(f.OnTypes, ref)
}

// SetReturnType sets the return annotation of the open member.
func (b *Builder) SetReturnType(ref *decl.Ref) {
	b.current("return type").ReturnType = ref
}

// SetAccessor marks the open method as a getter or setter.
func (b *Builder) SetAccessor(acc decl.Accessor) {
	b.current("accessor").Accessor = acc
}

// SetAliasedType sets the right-hand side of the open typedef.
func (b *Builder) SetAliasedType(ref *decl.Ref) {
	b.current("aliased type").Aliased = ref
}

// --- type construction ---

// MakeNamedType builds a type annotation reference. A bare simple name that
// resolves to a type variable in scope binds to it eagerly; every other
// named reference joins the unresolved list for later resolution.
func (b *Builder) MakeNamedType(prefix, name source.StringID, span source.Span, args ...*decl.Ref) *decl.Ref {
	if prefix == source.NoStringID && len(args) == 0 {
		if tv := b.stack.LookupTypeVariable(name); tv.IsValid() {
			return decl.VariableRef(tv, name, span)
		}
	}
	r := decl.NamedRef(prefix, name, span, args...)
	b.result.UnresolvedTypes = append(b.result.UnresolvedTypes, r)
	return r
}

// objectType references the root object type, used when a chain has no
// explicit base.
func (b *Builder) objectType(span source.Span) *decl.Ref {
	return b.MakeNamedType(source.NoStringID, b.objectName, span)
}

// --- completion ---

// Finish closes the pass and assembles the result. Exactly the library
// frame must remain open; anything else means unbalanced begin/end events.
func (b *Builder) Finish() *Result {
	if b.finished {
		panic(fmt.Errorf("outline: Finish called twice"))
	}
	b.reportStrayMetadata()
	if d := b.stack.Depth(); d != 1 {
		panic(fmt.Errorf("outline: %d frames still open at end of unit", d-1))
	}
	b.stack.Pop(FrameLibrary)
	b.finished = true

	// Переменные без явной границы ждут умолчания в следующей фазе.
	data := b.entities.Data()
	for i := range data {
		e := &data[i]
		if e.Kind == decl.KindTypeVariable && (e.TypeVar == nil || e.TypeVar.Bound == nil) {
			b.result.UnboundTypeVars = append(b.result.UnboundTypeVars, decl.EntityID(i+1))
		}
	}
	b.result.Slots = b.binder.Index()
	return b.result
}

// --- internals ---

func (b *Builder) begin(kind FrameKind, name source.StringID, span source.Span) *Frame {
	f := b.stack.Push(kind, name, span)
	f.Metadata = b.takeMetadata()
	return f
}

// pop closes the frame and flushes metadata nothing consumed before the end
// event.
func (b *Builder) pop(kind FrameKind) *Frame {
	b.reportStrayMetadata()
	return b.stack.Pop(kind)
}

func (b *Builder) current(op string) *Frame {
	f := b.stack.Current()
	if f == nil || f.Kind == FrameLibrary {
		panic(fmt.Errorf("outline: %s event outside a declaration", op))
	}
	return f
}

// finishClassLike assembles, binds and registers a class-like entity, then
// installs its type variables into its own namespace so clashes with members
// surface.
func (b *Builder) finishClassLike(f *Frame, kind decl.Kind, detail *decl.ClassDetail) decl.EntityID {
	e := decl.Entity{
		Kind:       kind,
		Name:       f.Name,
		NameSpan:   f.NameSpan,
		Mods:       f.Mods,
		ClassMods:  f.ClassMods,
		Metadata:   f.Metadata,
		TypeParams: f.TypeVars,
		Class:      detail,
	}
	id := b.entities.New(&e)
	b.bindEntity(id)
	b.stack.InstallTypeVariables(f.TypeVars, f.Fragment, ConflictForbidden)
	b.result.Members[id] = f.Fragment
	b.registry.Register(b.stack.Fragment(), f.Name, id, GetterAxis)
	return id
}

// finishMember assembles, binds and registers a member entity in the
// enclosing namespace.
func (b *Builder) finishMember(f *Frame, kind decl.Kind, detail *decl.MemberDetail) decl.EntityID {
	name := f.Name
	span := f.NameSpan
	if kind != decl.KindProcedure {
		b.checkConstructorName(f)
		if name == source.NoStringID {
			// The unnamed constructor registers under the class name.
			name = f.DeclaredClass
			span = f.DeclaredClassSpan
		}
	}
	e := decl.Entity{
		Kind:       kind,
		Name:       name,
		NameSpan:   span,
		Mods:       f.Mods,
		Metadata:   f.Metadata,
		TypeParams: f.TypeVars,
		Member:     detail,
	}
	id := b.entities.New(&e)
	b.bindEntity(id)
	b.stack.InstallTypeVariables(f.TypeVars, NewNameSpace(), ConflictForbidden)
	axis := GetterAxis
	if e.SetterAxis() {
		axis = SetterAxis
	}
	b.registry.Register(b.stack.Fragment(), name, id, axis)
	return id
}

// checkConstructorName reports a written class name that does not match the
// enclosing declaration. Top-level recovery leftovers skip the check.
func (b *Builder) checkConstructorName(f *Frame) {
	if f.DeclaredClass == source.NoStringID {
		return
	}
	enc := b.stack.Enclosing()
	if enc == nil || enc.Kind == FrameLibrary || enc.Name == source.NoStringID {
		return
	}
	if enc.Name == f.DeclaredClass {
		return
	}
	msg := fmt.Sprintf("constructor '%s' does not match the enclosing declaration '%s'",
		b.strings.MustLookup(f.DeclaredClass), b.strings.MustLookup(enc.Name))
	diag.ReportError(b.reporter, diag.OutConstructorNameMismatch, f.DeclaredClassSpan, msg).
		WithNote(enc.NameSpan, "declared here").
		Emit()
}

func (b *Builder) bindEntity(id decl.EntityID) {
	b.binder.Bind(id, b.containerNow())
}

// containerNow classifies the nearest enclosing container for mangling.
func (b *Builder) containerNow() Container {
	enc := b.stack.Enclosing()
	if enc == nil || enc.Kind == FrameLibrary {
		return Container{Kind: ContainerLibrary}
	}
	return Container{Kind: containerKindFor(enc.Kind), Name: enc.Name}
}

func containerKindFor(kind FrameKind) ContainerKind {
	switch kind {
	case FrameMixin:
		return ContainerMixin
	case FrameEnum:
		return ContainerEnum
	case FrameExtension:
		return ContainerExtension
	case FrameExtensionType:
		return ContainerExtensionType
	default:
		return ContainerClass
	}
}

func (b *Builder) takeMetadata() []source.Span {
	meta := b.pendingMetadata
	b.pendingMetadata = nil
	return meta
}

// reportStrayMetadata flushes annotations nothing claimed.
func (b *Builder) reportStrayMetadata() {
	for _, span := range b.pendingMetadata {
		diag.ReportError(b.reporter, diag.OutMisplacedMetadata, span,
			"annotation is not attached to any declaration").Emit()
	}
	b.pendingMetadata = nil
}

// checkDirectiveURI applies the structural checks the loader relies on.
// The directive is still recorded afterwards.
func (b *Builder) checkDirectiveURI(uri source.StringID, span source.Span) {
	text, ok := b.strings.Lookup(uri)
	if !ok || text == "" {
		diag.ReportError(b.reporter, diag.OutMalformedImportUri, span,
			"directive URI is empty").Emit()
		return
	}
	for _, r := range text {
		if r <= ' ' {
			msg := fmt.Sprintf("directive URI '%s' contains whitespace or control characters", text)
			diag.ReportError(b.reporter, diag.OutMalformedImportUri, span, msg).Emit()
			return
		}
	}
}

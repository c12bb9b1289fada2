package outline

import (
	"vela/internal/decl"
	"vela/internal/source"
)

// MixinLink records one synthetic class of a mixin chain together with the
// mixin it applies. Super-call resolution consumes the pairs in a later
// phase.
type MixinLink struct {
	Class decl.EntityID
	Mixin *decl.Ref
}

// Import records one import directive of the unit. Prefix points at the
// (possibly merged) prefix entity, or NoEntityID for unprefixed imports.
// Loading the imported library is the loader collaborator's job.
type Import struct {
	URI      source.StringID
	Span     source.Span
	Prefix   decl.EntityID
	Deferred bool
	Metadata []source.Span
}

// Directive records an export or part directive for the loader.
type Directive struct {
	URI      source.StringID
	Span     source.Span
	Metadata []source.Span
}

// Result is everything one compilation unit's outline pass produced. The
// arenas it exposes are exclusively owned: nothing mutates them once Finish
// returned.
type Result struct {
	Unit            source.FileID
	LibraryName     source.StringID
	LibraryMetadata []source.Span

	Entities *decl.Entities
	Scopes   *Scopes
	Strings  *source.Interner

	// Top is the library namespace: named declarations on the getter axis,
	// setters on the setter axis, the ordered extension list, and the
	// augmentation maps.
	Top *NameSpace

	// Members maps each class-like entity to its member namespace.
	Members map[decl.EntityID]*NameSpace

	Imports []Import
	Exports []Directive
	Parts   []Directive

	MixinLinks      []MixinLink
	ConstructorRefs []*decl.ConstructorRef

	// UnresolvedTypes lists every named reference awaiting resolution,
	// including copies created by mixin substitution.
	UnresolvedTypes []*decl.Ref

	// UnboundTypeVars lists type variables without an explicit bound,
	// awaiting the implicit default in a later phase.
	UnboundTypeVars []decl.EntityID

	// Slots is this run's mangled-name table, input for the next
	// incremental compilation.
	Slots *RefIndex
}

// Declaration returns the resolvable top-level declaration for name, or nil.
func (r *Result) Declaration(name string) *decl.Entity {
	id, ok := r.Strings.Find(name)
	if !ok {
		return nil
	}
	return r.Entities.Get(r.Top.Lookup(id, GetterAxis))
}

// DeclarationID returns the resolvable top-level entity ID for name.
func (r *Result) DeclarationID(name string) decl.EntityID {
	id, ok := r.Strings.Find(name)
	if !ok {
		return decl.NoEntityID
	}
	return r.Top.Lookup(id, GetterAxis)
}

// Setter returns the resolvable top-level setter for name, or nil.
func (r *Result) Setter(name string) *decl.Entity {
	id, ok := r.Strings.Find(name)
	if !ok {
		return nil
	}
	return r.Entities.Get(r.Top.Lookup(id, SetterAxis))
}

// MemberOf returns the resolvable member of a class-like entity, or nil.
func (r *Result) MemberOf(owner decl.EntityID, name string, a Axis) *decl.Entity {
	ns := r.Members[owner]
	if ns == nil {
		return nil
	}
	id, ok := r.Strings.Find(name)
	if !ok {
		return nil
	}
	return r.Entities.Get(ns.Lookup(id, a))
}

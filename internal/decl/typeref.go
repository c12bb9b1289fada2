package decl

import (
	"vela/internal/source"
)

// RefKind classifies a skeletal type reference.
type RefKind uint8

const (
	// RefImplicit stands for an omitted type annotation.
	RefImplicit RefKind = iota
	// RefNamed is a textual type name awaiting resolution.
	RefNamed
	// RefVariable is bound to a type-variable entity.
	RefVariable
	// RefFunc is a structural function type.
	RefFunc
)

// Ref is a skeletal type reference. The outline phase only records shape and
// names; full resolution happens in later phases. Refs are immutable after
// construction: substitution builds new nodes, never rewrites shared ones.
type Ref struct {
	Kind     RefKind
	Name     source.StringID // RefNamed, RefVariable: simple name
	Prefix   source.StringID // RefNamed: optional import-prefix qualifier
	NameSpan source.Span
	Target   EntityID // RefVariable always; RefNamed once something resolves it
	Args     []*Ref   // RefNamed type arguments
	Params   []*Ref   // RefFunc parameter types
	Ret      *Ref     // RefFunc return type
}

// ImplicitRef builds a reference for an omitted type annotation.
func ImplicitRef(span source.Span) *Ref {
	return &Ref{Kind: RefImplicit, NameSpan: span}
}

// NamedRef builds an unresolved named reference.
func NamedRef(prefix, name source.StringID, span source.Span, args ...*Ref) *Ref {
	return &Ref{Kind: RefNamed, Prefix: prefix, Name: name, NameSpan: span, Args: args}
}

// EntityRef builds a named reference already resolved to a known entity.
// Mixin linearization uses it to point at freshly created synthetic classes.
func EntityRef(target EntityID, name source.StringID, span source.Span, args []*Ref) *Ref {
	return &Ref{Kind: RefNamed, Name: name, NameSpan: span, Target: target, Args: args}
}

// VariableRef builds a reference bound to a type-variable entity.
func VariableRef(target EntityID, name source.StringID, span source.Span) *Ref {
	return &Ref{Kind: RefVariable, Name: name, NameSpan: span, Target: target}
}

// FuncRef builds a structural function-type reference.
func FuncRef(params []*Ref, ret *Ref, span source.Span) *Ref {
	return &Ref{Kind: RefFunc, Params: params, Ret: ret, NameSpan: span}
}

// SimpleName returns the textual name of the reference, or NoStringID for
// shapes without one (function types, omitted annotations).
func (r *Ref) SimpleName() source.StringID {
	if r == nil {
		return source.NoStringID
	}
	switch r.Kind {
	case RefNamed, RefVariable:
		return r.Name
	default:
		return source.NoStringID
	}
}

// Resolved reports whether a named reference already points at an entity.
func (r *Ref) Resolved() bool {
	return r != nil && r.Target.IsValid()
}

// ReferencesAny reports whether the reference mentions any of the given
// type-variable entities, at any depth.
func (r *Ref) ReferencesAny(vars map[EntityID]struct{}) bool {
	if r == nil || len(vars) == 0 {
		return false
	}
	switch r.Kind {
	case RefVariable:
		_, ok := vars[r.Target]
		return ok
	case RefNamed:
		for _, arg := range r.Args {
			if arg.ReferencesAny(vars) {
				return true
			}
		}
	case RefFunc:
		for _, p := range r.Params {
			if p.ReferencesAny(vars) {
				return true
			}
		}
		if r.Ret.ReferencesAny(vars) {
			return true
		}
	}
	return false
}

// Display renders the reference for diagnostics and the pretty printer.
func (r *Ref) Display(in *source.Interner) string {
	if r == nil {
		return "<nil>"
	}
	switch r.Kind {
	case RefImplicit:
		return "_"
	case RefVariable:
		return in.MustLookup(r.Name)
	case RefNamed:
		name := in.MustLookup(r.Name)
		if r.Prefix != source.NoStringID {
			name = in.MustLookup(r.Prefix) + "." + name
		}
		if len(r.Args) == 0 {
			return name
		}
		out := name + "<"
		for i, arg := range r.Args {
			if i > 0 {
				out += ", "
			}
			out += arg.Display(in)
		}
		return out + ">"
	case RefFunc:
		out := "("
		for i, p := range r.Params {
			if i > 0 {
				out += ", "
			}
			out += p.Display(in)
		}
		out += ") -> "
		if r.Ret == nil {
			out += "_"
		} else {
			out += r.Ret.Display(in)
		}
		return out
	}
	return "<invalid>"
}

// ConstructorRef names a constructor of a (possibly still unresolved) type.
// Type may be nil only in the single context the builder allows it:
// the redirect target of a factory, where the enclosing class is implied.
type ConstructorRef struct {
	Type     *Ref
	Name     source.StringID // constructor name; NoStringID for the unnamed one
	NameSpan source.Span
}

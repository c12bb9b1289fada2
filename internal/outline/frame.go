package outline

import (
	"vela/internal/decl"
	"vela/internal/source"
)

// FrameKind tags a scope frame with the declaration construct that opened it.
type FrameKind uint8

const (
	FrameInvalid FrameKind = iota
	FrameLibrary
	FrameClass
	FrameMixin
	FrameNamedMixinApplication
	FrameUnnamedMixinApplication
	FrameEnum
	FrameExtension
	FrameExtensionType
	FrameConstructor
	FrameFactory
	FrameMethod
	FrameTypedef
	FrameFunctionType
)

func (k FrameKind) String() string {
	switch k {
	case FrameLibrary:
		return "library"
	case FrameClass:
		return "class"
	case FrameMixin:
		return "mixin"
	case FrameNamedMixinApplication:
		return "named mixin application"
	case FrameUnnamedMixinApplication:
		return "mixin application"
	case FrameEnum:
		return "enum"
	case FrameExtension:
		return "extension"
	case FrameExtensionType:
		return "extension type"
	case FrameConstructor:
		return "constructor"
	case FrameFactory:
		return "factory"
	case FrameMethod:
		return "method"
	case FrameTypedef:
		return "typedef"
	case FrameFunctionType:
		return "function type"
	default:
		return "invalid"
	}
}

// IsClassLike reports whether frames of this kind own a member namespace.
// The library frame counts: top-level declarations are its members.
func (k FrameKind) IsClassLike() bool {
	switch k {
	case FrameLibrary, FrameClass, FrameMixin, FrameNamedMixinApplication,
		FrameUnnamedMixinApplication, FrameEnum, FrameExtension, FrameExtensionType:
		return true
	default:
		return false
	}
}

// IsMember reports whether frames of this kind sit inside a container and
// collect formal parameters.
func (k FrameKind) IsMember() bool {
	switch k {
	case FrameConstructor, FrameFactory, FrameMethod:
		return true
	default:
		return false
	}
}

// Frame is one entry of the scope stack: the in-progress state of a
// declaration between its begin and end events. Closed frames are immutable;
// the builder reads them once after Pop and lets them go.
type Frame struct {
	Kind     FrameKind
	Name     source.StringID
	NameSpan source.Span

	// Scope is the lexical lookup node opened for this frame. Type
	// variables declared on the frame are visible through it while the
	// frame is on the stack.
	Scope ScopeID

	// TypeVars lists nominal type variables in declaration order.
	// Function-type frames collect theirs in Structural instead.
	TypeVars   []decl.EntityID
	Structural []decl.EntityID

	// Fragment is the member namespace of class-like frames. Members
	// register into it while the body is open; the unit result keeps it
	// after the frame closes.
	Fragment *NameSpace

	// Declaration state filled by add events before the end event.
	Metadata   []source.Span
	Mods       decl.Modifiers
	ClassMods  decl.ClassModifiers
	Supertype  *decl.Ref
	Mixins     []*decl.Ref
	Interfaces []*decl.Ref
	OnTypes    []*decl.Ref
	Aliased    *decl.Ref
	ReturnType *decl.Ref
	Accessor   decl.Accessor
	Params     []decl.EntityID
	Redirect   *decl.ConstructorRef

	// DeclaredClass is the class-name part of a constructor or factory
	// name as written, checked against the enclosing declaration.
	DeclaredClass     source.StringID
	DeclaredClassSpan source.Span
}

// HasTypeVariables reports whether the frame declared any type variables,
// nominal or structural.
func (f *Frame) HasTypeVariables() bool {
	return len(f.TypeVars) > 0 || len(f.Structural) > 0
}

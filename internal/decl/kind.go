package decl

// Kind classifies a declaration entity.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindClass
	KindMixin
	KindEnum
	KindExtension
	KindExtensionType
	KindTypeAlias
	KindConstructor
	KindFactory
	KindProcedure
	KindField
	KindFormalParameter
	KindTypeVariable
	KindPrefix
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindMixin:
		return "mixin"
	case KindEnum:
		return "enum"
	case KindExtension:
		return "extension"
	case KindExtensionType:
		return "extension type"
	case KindTypeAlias:
		return "typedef"
	case KindConstructor:
		return "constructor"
	case KindFactory:
		return "factory"
	case KindProcedure:
		return "procedure"
	case KindField:
		return "field"
	case KindFormalParameter:
		return "parameter"
	case KindTypeVariable:
		return "type variable"
	case KindPrefix:
		return "import prefix"
	default:
		return "invalid"
	}
}

// IsClassLike reports whether entities of this kind open a body scope with
// members of their own.
func (k Kind) IsClassLike() bool {
	switch k {
	case KindClass, KindMixin, KindEnum, KindExtension, KindExtensionType:
		return true
	default:
		return false
	}
}

// IsMember reports whether entities of this kind live inside a container.
func (k Kind) IsMember() bool {
	switch k {
	case KindConstructor, KindFactory, KindProcedure, KindField:
		return true
	default:
		return false
	}
}

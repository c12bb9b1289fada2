package decl

import (
	"fmt"

	"fortio.org/safecast"

	"vela/internal/source"
)

// Accessor classifies procedures into the two namespace axes.
type Accessor uint8

const (
	AccessorNone Accessor = iota
	AccessorGetter
	AccessorSetter
)

func (a Accessor) String() string {
	switch a {
	case AccessorGetter:
		return "getter"
	case AccessorSetter:
		return "setter"
	default:
		return "method"
	}
}

// ClassDetail carries the class-like payload: classes, mixins, enums,
// extensions and extension types.
type ClassDetail struct {
	Supertype  *Ref
	MixedIn    *Ref
	Interfaces []*Ref
	OnTypes    []*Ref // mixin on-clause constraints; extension receiver type
	// IsMixinApplication marks synthetic chain links and named applications.
	IsMixinApplication bool
}

// MemberDetail carries the payload of constructors, factories and procedures.
type MemberDetail struct {
	ReturnType *Ref
	Params     []EntityID
	Accessor   Accessor
	// DeclaredClass is the class-name part of a constructor/factory name as
	// written in source, kept for the name-mismatch diagnostic.
	DeclaredClass source.StringID
	// Redirect is the target of a redirecting factory, if any.
	Redirect *ConstructorRef
}

// FieldDetail carries the field payload.
type FieldDetail struct {
	Type           *Ref
	HasInitializer bool
}

// ParamDetail carries the formal-parameter payload.
type ParamDetail struct {
	Type       *Ref
	HasDefault bool
}

// TypeVarDetail carries the type-variable payload.
type TypeVarDetail struct {
	Bound *Ref
	// Structural marks variables declared by a function type rather than a
	// nominal owner.
	Structural bool
	// Origin points at the declared variable a synthetic copy was cloned
	// from; NoEntityID for variables written in source.
	Origin EntityID
}

// AliasDetail carries the typedef payload.
type AliasDetail struct {
	Aliased *Ref
}

// PrefixDetail carries the import-prefix payload. Merged prefixes accumulate
// the URIs of every import that shares the prefix; materializing the combined
// export scope is the loader's job in a later phase.
type PrefixDetail struct {
	Deferred   bool
	ImportURIs []source.StringID
}

// Entity describes one declaration produced by the outline pass. Created
// once; its identity (ID and Slot) never changes afterwards, though later
// phases refine type details in place.
type Entity struct {
	Kind      Kind
	Name      source.StringID
	NameSpan  source.Span
	Mods      Modifiers
	ClassMods ClassModifiers
	Metadata  []source.Span

	// TypeParams lists declared type variables in declaration order.
	TypeParams []EntityID

	Class   *ClassDetail
	Member  *MemberDetail
	Field   *FieldDetail
	Param   *ParamDetail
	TypeVar *TypeVarDetail
	Alias   *AliasDetail
	Prefix  *PrefixDetail

	// Slot is the stable identity issued by the reference binder.
	Slot RefSlot
}

// IsAugment reports whether the entity patches an earlier declaration of the
// same name instead of replacing it.
func (e *Entity) IsAugment() bool {
	return e.Mods&ModAugment != 0 || e.ClassMods&ClassAugment != 0
}

// IsStatic reports whether the member is static.
func (e *Entity) IsStatic() bool {
	return e.Mods&ModStatic != 0
}

// SetterAxis reports whether the entity lives on the setter axis of its
// namespace. Only explicit setter procedures do; fields stay on the getter
// axis even when assignable.
func (e *Entity) SetterAxis() bool {
	return e.Kind == KindProcedure && e.Member != nil && e.Member.Accessor == AccessorSetter
}

// Entities stores all declaration entities of one unit in a compact
// slice-based arena.
type Entities struct {
	data []Entity
}

// NewEntities creates an arena with optional capacity hint.
func NewEntities(capacity uint32) *Entities {
	if capacity == 0 {
		capacity = 64
	}
	return &Entities{
		data: make([]Entity, 1, capacity+1), // index 0 reserved for NoEntityID
	}
}

// New allocates an entity in the arena and returns its ID.
func (es *Entities) New(e *Entity) EntityID {
	if e == nil {
		panic("decl.New: nil entity")
	}
	value, err := safecast.Conv[uint32](len(es.data))
	if err != nil {
		panic(fmt.Errorf("entity arena overflow: %w", err))
	}
	id := EntityID(value)
	es.data = append(es.data, *e)
	return id
}

// Get returns an entity pointer or nil for invalid ID.
func (es *Entities) Get(id EntityID) *Entity {
	if !id.IsValid() || int(id) >= len(es.data) {
		return nil
	}
	return &es.data[id]
}

// MustGet panics for invalid IDs. Use it on paths where the ID came from the
// arena itself.
func (es *Entities) MustGet(id EntityID) *Entity {
	e := es.Get(id)
	if e == nil {
		panic(fmt.Errorf("decl: invalid entity ID %d", id))
	}
	return e
}

// Len reports number of stored entities excluding the sentinel.
func (es *Entities) Len() int { return len(es.data) - 1 }

// Data exposes the arena storage without the sentinel.
func (es *Entities) Data() []Entity {
	if len(es.data) <= 1 {
		return nil
	}
	return es.data[1:]
}

package outline

import (
	"fmt"

	"vela/internal/decl"
	"vela/internal/source"
)

// ContainerKind classifies the declaration enclosing a member for name
// mangling.
type ContainerKind uint8

const (
	ContainerLibrary ContainerKind = iota
	ContainerClass
	ContainerMixin
	ContainerEnum
	ContainerExtension
	ContainerExtensionType
)

func (k ContainerKind) tag() byte {
	switch k {
	case ContainerClass:
		return 'c'
	case ContainerMixin:
		return 'm'
	case ContainerEnum:
		return 'e'
	case ContainerExtension:
		return 'x'
	case ContainerExtensionType:
		return 'v'
	default:
		return 'l'
	}
}

// Container identifies the enclosing declaration at bind time. The library
// container carries no name: the slot index is already scoped to one library.
type Container struct {
	Kind ContainerKind
	Name source.StringID
}

// RefIndex is the slot table of a previous compilation of the same library:
// mangled name to stable slot. Next is the first slot number the previous
// run never issued.
type RefIndex struct {
	Slots map[string]decl.RefSlot
	Next  uint32
}

// Binder assigns stable reference slots to named declarations. With a
// previous-compilation index present, a declaration whose mangled name is
// known reuses its old slot, so references from other units survive an
// incremental rebuild. The builder binds every entity before registering it
// anywhere, which keeps same-pass cross-references on final identity.
type Binder struct {
	strings  *source.Interner
	entities *decl.Entities
	prev     *RefIndex
	next     uint32
	issued   map[string]decl.RefSlot
	session  map[decl.RefSlot]decl.EntityID
}

// NewBinder builds a binder over an optional previous-compilation index.
func NewBinder(strings *source.Interner, entities *decl.Entities, prev *RefIndex) *Binder {
	next := uint32(1)
	if prev != nil && prev.Next > next {
		next = prev.Next
	}
	return &Binder{
		strings:  strings,
		entities: entities,
		prev:     prev,
		next:     next,
		issued:   make(map[string]decl.RefSlot),
		session:  make(map[decl.RefSlot]decl.EntityID),
	}
}

// Bind assigns a slot to the entity and records the pair in the session
// table. Unnamed entities and kinds without cross-unit identity keep
// NoRefSlot. Duplicate declarations mangle identically and share one slot;
// the session table then points at the newest of them.
func (bd *Binder) Bind(id decl.EntityID, c Container) decl.RefSlot {
	e := bd.entities.MustGet(id)
	if e.Name == source.NoStringID || !bindable(e.Kind) {
		return decl.NoRefSlot
	}
	key := bd.mangle(e, c)
	slot, ok := bd.issued[key]
	if !ok {
		if bd.prev != nil {
			slot, ok = bd.prev.Slots[key]
		}
		if !ok {
			slot = decl.RefSlot(bd.next)
			bd.next++
		}
		bd.issued[key] = slot
	}
	e.Slot = slot
	bd.session[slot] = id
	return slot
}

// EntityOf resolves a slot back to the entity bound in this session, or
// NoEntityID for slots this run never bound.
func (bd *Binder) EntityOf(slot decl.RefSlot) decl.EntityID {
	return bd.session[slot]
}

// Index snapshots this run's assignments for the next compilation.
func (bd *Binder) Index() *RefIndex {
	return &RefIndex{Slots: bd.issued, Next: bd.next}
}

func bindable(k decl.Kind) bool {
	switch k {
	case decl.KindClass, decl.KindMixin, decl.KindEnum, decl.KindExtension,
		decl.KindExtensionType, decl.KindTypeAlias, decl.KindConstructor,
		decl.KindFactory, decl.KindProcedure, decl.KindField:
		return true
	default:
		return false
	}
}

// mangle produces the deterministic lookup key: container classification,
// member kind, static or instance, accessor axis, then the simple name.
// Keys are textual so they survive serialization and interner reseeding.
func (bd *Binder) mangle(e *decl.Entity, c Container) string {
	containerName := ""
	if c.Name != source.NoStringID {
		containerName = bd.strings.MustLookup(c.Name)
	}
	sc := byte('i')
	if e.IsStatic() {
		sc = 's'
	}
	acc := byte('m')
	if e.Member != nil {
		switch e.Member.Accessor {
		case decl.AccessorGetter:
			acc = 'g'
		case decl.AccessorSetter:
			acc = 's'
		}
	}
	return fmt.Sprintf("%c:%s|%d%c%c|%s",
		c.Kind.tag(), containerName, e.Kind, sc, acc, bd.strings.MustLookup(e.Name))
}

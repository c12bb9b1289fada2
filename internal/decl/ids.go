package decl

// EntityID identifies a declaration entity in the unit arena.
type EntityID uint32

const (
	// NoEntityID marks the absence of an entity reference.
	NoEntityID EntityID = 0
)

// IsValid reports whether the entity ID refers to an allocated entity.
func (id EntityID) IsValid() bool { return id != NoEntityID }

// RefSlot is a stable identity key issued by the reference binder.
// Slots survive incremental recompilation: the same declaration receives
// the same slot as long as its mangled name does not change.
type RefSlot uint32

const (
	// NoRefSlot marks an entity that has not been bound yet.
	NoRefSlot RefSlot = 0
)

// IsValid reports whether the slot was issued by a binder.
func (s RefSlot) IsValid() bool { return s != NoRefSlot }

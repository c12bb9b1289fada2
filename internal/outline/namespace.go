package outline

import (
	"vela/internal/decl"
	"vela/internal/source"
)

// Axis selects one of the two independent namespace axes. Getters, fields
// and types live on the getter axis; explicit setters on the setter axis.
// Lookups and duplicate checks never cross axes.
type Axis uint8

const (
	GetterAxis Axis = iota
	SetterAxis
)

func (a Axis) String() string {
	if a == SetterAxis {
		return "setter"
	}
	return "getter"
}

// NameSpace is the per-scope declaration namespace: two insertion-ordered
// name maps whose entries form shadow chains (newest resolvable, older ones
// retained for diagnostics, never deleted), an ordered extension list, and
// per-name augmentation lists for a later merge phase.
type NameSpace struct {
	getters map[source.StringID][]decl.EntityID
	setters map[source.StringID][]decl.EntityID

	// first-occurrence insertion order per axis, for deterministic walks
	getterOrder []source.StringID
	setterOrder []source.StringID

	// Extensions keeps every extension registered in this scope in
	// registration order, including ones whose name collided.
	Extensions []decl.EntityID

	augGetters map[source.StringID][]decl.EntityID
	augSetters map[source.StringID][]decl.EntityID
}

// NewNameSpace builds an empty namespace.
func NewNameSpace() *NameSpace {
	return &NameSpace{
		getters: make(map[source.StringID][]decl.EntityID),
		setters: make(map[source.StringID][]decl.EntityID),
	}
}

func (ns *NameSpace) axis(a Axis) map[source.StringID][]decl.EntityID {
	if a == SetterAxis {
		return ns.setters
	}
	return ns.getters
}

// Lookup returns the newest resolvable entity for name on the axis, or
// NoEntityID when the name is unbound.
func (ns *NameSpace) Lookup(name source.StringID, a Axis) decl.EntityID {
	chain := ns.axis(a)[name]
	if len(chain) == 0 {
		return decl.NoEntityID
	}
	return chain[len(chain)-1]
}

// Chain returns the full shadow chain for name on the axis, oldest first.
// The returned slice is owned by the namespace.
func (ns *NameSpace) Chain(name source.StringID, a Axis) []decl.EntityID {
	return ns.axis(a)[name]
}

// Names returns the axis's names in first-insertion order.
func (ns *NameSpace) Names(a Axis) []source.StringID {
	if a == SetterAxis {
		return ns.setterOrder
	}
	return ns.getterOrder
}

// Len reports the number of distinct names bound on the axis.
func (ns *NameSpace) Len(a Axis) int {
	return len(ns.axis(a))
}

// append pushes the entity onto the name's shadow chain, making it the
// resolvable binding. Only the registry and the type-variable installer
// call this.
func (ns *NameSpace) append(name source.StringID, id decl.EntityID, a Axis) {
	m := ns.axis(a)
	if _, seen := m[name]; !seen {
		if a == SetterAxis {
			ns.setterOrder = append(ns.setterOrder, name)
		} else {
			ns.getterOrder = append(ns.getterOrder, name)
		}
	}
	m[name] = append(m[name], id)
}

// appendAugmentation records an augmentation for a later merge phase. The
// base binding, if any, is left untouched.
func (ns *NameSpace) appendAugmentation(name source.StringID, id decl.EntityID, a Axis) {
	if a == SetterAxis {
		if ns.augSetters == nil {
			ns.augSetters = make(map[source.StringID][]decl.EntityID)
		}
		ns.augSetters[name] = append(ns.augSetters[name], id)
		return
	}
	if ns.augGetters == nil {
		ns.augGetters = make(map[source.StringID][]decl.EntityID)
	}
	ns.augGetters[name] = append(ns.augGetters[name], id)
}

// Augmentations returns the recorded augmentations for name on the axis,
// in registration order.
func (ns *NameSpace) Augmentations(name source.StringID, a Axis) []decl.EntityID {
	if a == SetterAxis {
		return ns.augSetters[name]
	}
	return ns.augGetters[name]
}

// AugmentedNames returns every name with at least one augmentation on the
// axis. Order is unspecified; callers sort when they need determinism.
func (ns *NameSpace) AugmentedNames(a Axis) []source.StringID {
	m := ns.augGetters
	if a == SetterAxis {
		m = ns.augSetters
	}
	if len(m) == 0 {
		return nil
	}
	names := make([]source.StringID, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

package outline

import (
	"fmt"

	"fortio.org/safecast"

	"vela/internal/decl"
	"vela/internal/source"
)

// ScopeID identifies a lexical scope in the unit arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeLibrary
	ScopeDeclaration  // type-parameter scope of a class-like or member declaration
	ScopeFunctionType // structural type variables of one function type
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeLibrary:
		return "library"
	case ScopeDeclaration:
		return "declaration"
	case ScopeFunctionType:
		return "function type"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent-child hierarchy. The outline
// pass binds only type variables here; member lookup goes through the frame
// namespaces. Later phases receive the full tree for name resolution.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Span      source.Span
	NameIndex map[source.StringID][]decl.EntityID
	Entities  []decl.EntityID
	Children  []ScopeID
}

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a new scope and returns its ID.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, span source.Span) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	id := ScopeID(value)
	s.data = append(s.data, Scope{
		Kind:      kind,
		Parent:    parent,
		Span:      span,
		NameIndex: make(map[source.StringID][]decl.EntityID),
	})
	if parent.IsValid() {
		if parentScope := s.Get(parent); parentScope != nil {
			parentScope.Children = append(parentScope.Children, id)
		}
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Bind records a name binding in the scope. Bindings are never removed;
// the newest one wins for lookup and older ones stay for diagnostics.
func (s *Scopes) Bind(id ScopeID, name source.StringID, ent decl.EntityID) {
	scope := s.Get(id)
	if scope == nil {
		panic(fmt.Errorf("outline: binding %d in invalid scope %d", ent, id))
	}
	scope.Entities = append(scope.Entities, ent)
	if name != source.NoStringID {
		scope.NameIndex[name] = append(scope.NameIndex[name], ent)
	}
}

// Lookup walks the parent chain and returns the newest binding for name,
// or NoEntityID if no scope on the chain binds it.
func (s *Scopes) Lookup(id ScopeID, name source.StringID) decl.EntityID {
	for id.IsValid() {
		scope := s.Get(id)
		if scope == nil {
			break
		}
		if ids := scope.NameIndex[name]; len(ids) > 0 {
			return ids[len(ids)-1]
		}
		id = scope.Parent
	}
	return decl.NoEntityID
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// Data exposes the underlying slice without the sentinel.
func (s *Scopes) Data() []Scope {
	if len(s.data) <= 1 {
		return nil
	}
	return s.data[1:]
}

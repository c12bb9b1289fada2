package outline

import (
	"testing"

	"vela/internal/decl"
	"vela/internal/source"
)

func TestScopesArena(t *testing.T) {
	scopes := NewScopes(4)
	if scopes.Len() != 0 {
		t.Fatalf("expected empty arena, got %d", scopes.Len())
	}
	if scopes.Get(NoScopeID) != nil {
		t.Fatalf("expected nil for the zero sentinel")
	}

	root := scopes.New(ScopeLibrary, NoScopeID, source.Span{})
	child := scopes.New(ScopeDeclaration, root, source.At(1, 10))
	if !root.IsValid() || !child.IsValid() {
		t.Fatalf("expected valid scope IDs")
	}
	if scopes.Len() != 2 {
		t.Fatalf("expected 2 scopes, got %d", scopes.Len())
	}
	if got := scopes.Get(child).Parent; got != root {
		t.Fatalf("expected parent %v, got %v", root, got)
	}
	kids := scopes.Get(root).Children
	if len(kids) != 1 || kids[0] != child {
		t.Fatalf("expected root to record its child, got %v", kids)
	}
}

func TestScopeLookupWalksParents(t *testing.T) {
	scopes := NewScopes(4)
	strings := source.NewInterner()
	name := strings.Intern("T")

	root := scopes.New(ScopeLibrary, NoScopeID, source.Span{})
	child := scopes.New(ScopeDeclaration, root, source.At(1, 10))
	outer := decl.EntityID(7)
	scopes.Bind(root, name, outer)

	if got := scopes.Lookup(child, name); got != outer {
		t.Fatalf("expected lookup through the parent, got %v", got)
	}

	// A binding in the child shadows the outer one.
	inner := decl.EntityID(9)
	scopes.Bind(child, name, inner)
	if got := scopes.Lookup(child, name); got != inner {
		t.Fatalf("expected the inner binding, got %v", got)
	}
	if got := scopes.Lookup(root, name); got != outer {
		t.Fatalf("expected the outer binding from the root, got %v", got)
	}
	if got := scopes.Lookup(child, strings.Intern("missing")); got != decl.NoEntityID {
		t.Fatalf("expected a miss for an unknown name, got %v", got)
	}
}

func TestScopesBindInvalidPanics(t *testing.T) {
	scopes := NewScopes(0)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Bind on the sentinel scope to panic")
		}
	}()
	scopes.Bind(NoScopeID, source.NoStringID, decl.EntityID(1))
}

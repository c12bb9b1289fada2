package outline

import (
	"fmt"

	"vela/internal/decl"
	"vela/internal/diag"
	"vela/internal/source"
)

// InstallMode controls collision handling when a frame's type variables are
// installed into a namespace.
type InstallMode uint8

const (
	// ConflictForbidden is the normal path: a name collision reports a
	// duplicate citing both sites. Wildcard-named variables are exempt.
	ConflictForbidden InstallMode = iota
	// ConflictAllowed skips the check. Used for synthetic copies made by
	// mixin linearization and for recovery paths.
	ConflictAllowed
)

// Stack is the scope machine of the outline pass. It keeps the frame stack
// whose push/pop discipline mirrors the begin/end events exactly, and the
// parallel lexical lookup chain used to bind type-variable references while
// declarations are still open.
//
// The event source is a trusted driver: a kind mismatch on Pop means the
// driver lost track of its own nesting, so the stack aborts instead of
// reporting a user diagnostic.
type Stack struct {
	entities *decl.Entities
	scopes   *Scopes
	strings  *source.Interner
	reporter diag.Reporter

	frames   []*Frame
	wildcard source.StringID
}

// NewStack builds an empty stack over the unit's shared arenas.
func NewStack(entities *decl.Entities, scopes *Scopes, strings *source.Interner, reporter diag.Reporter) *Stack {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Stack{
		entities: entities,
		scopes:   scopes,
		strings:  strings,
		reporter: reporter,
		frames:   make([]*Frame, 0, 8),
		wildcard: strings.Intern("_"),
	}
}

// Depth reports the number of open frames.
func (s *Stack) Depth() int { return len(s.frames) }

// Current returns the innermost open frame, or nil on an empty stack.
func (s *Stack) Current() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Push opens a frame for a begin event. It always succeeds and returns the
// frame handle; add events fill it until the matching end event pops it.
func (s *Stack) Push(kind FrameKind, name source.StringID, span source.Span) *Frame {
	parent := NoScopeID
	if cur := s.Current(); cur != nil {
		parent = cur.Scope
	}
	f := &Frame{
		Kind:     kind,
		Name:     name,
		NameSpan: span,
		Scope:    s.scopes.New(scopeKindFor(kind), parent, span),
	}
	if kind.IsClassLike() {
		f.Fragment = NewNameSpace()
	}
	s.frames = append(s.frames, f)
	return f
}

// Pop closes the innermost frame and returns it. The expected kind must
// match the frame being closed; a mismatch or an empty stack means the
// driver is desynchronized from the event stream and is fatal.
func (s *Stack) Pop(expected FrameKind) *Frame {
	if len(s.frames) == 0 {
		panic(fmt.Errorf("outline: frame stack underflow closing %s", expected))
	}
	top := s.frames[len(s.frames)-1]
	if top.Kind != expected {
		panic(fmt.Errorf("outline: closing %s while %s %q is open",
			expected, top.Kind, s.frameName(top)))
	}
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

// Fragment returns the member namespace declarations register into at the
// current position: the nearest enclosing class-like frame's namespace.
func (s *Stack) Fragment() *NameSpace {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if f := s.frames[i]; f.Fragment != nil {
			return f.Fragment
		}
	}
	return nil
}

// Enclosing returns the nearest frame below the top that owns a member
// namespace. Members ask it for their container after their own frame
// was popped.
func (s *Stack) Enclosing() *Frame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Kind.IsClassLike() {
			return s.frames[i]
		}
	}
	return nil
}

// AddTypeVariable allocates the entity and declares it on the current
// frame: nominal frames collect it in TypeVars, function-type frames in
// Structural. The variable becomes visible for lookup immediately, so a
// bound like Comparable<T> can mention its own variable.
func (s *Stack) AddTypeVariable(e *decl.Entity) decl.EntityID {
	f := s.Current()
	if f == nil {
		panic(fmt.Errorf("outline: type variable outside any frame"))
	}
	if e.TypeVar == nil {
		e.TypeVar = &decl.TypeVarDetail{}
	}
	e.TypeVar.Structural = f.Kind == FrameFunctionType
	id := s.entities.New(e)
	if f.Kind == FrameFunctionType {
		f.Structural = append(f.Structural, id)
	} else {
		f.TypeVars = append(f.TypeVars, id)
	}
	s.scopes.Bind(f.Scope, e.Name, id)
	return id
}

// LookupTypeVariable resolves a simple name against the lexical chain of
// open frames, innermost first. Only type variables are bound there during
// the outline pass.
func (s *Stack) LookupTypeVariable(name source.StringID) decl.EntityID {
	cur := s.Current()
	if cur == nil || name == source.NoStringID {
		return decl.NoEntityID
	}
	return s.scopes.Lookup(cur.Scope, name)
}

// InstallTypeVariables declares the variables in ns on the getter axis.
// ConflictForbidden reports a collision citing both sites; ConflictAllowed
// installs unconditionally. Either way every variable ends up installed,
// newest resolvable.
func (s *Stack) InstallTypeVariables(vars []decl.EntityID, ns *NameSpace, mode InstallMode) {
	for _, id := range vars {
		e := s.entities.MustGet(id)
		if e.Name == source.NoStringID {
			continue
		}
		if mode == ConflictForbidden && e.Name != s.wildcard {
			if prevID := ns.Lookup(e.Name, GetterAxis); prevID.IsValid() {
				s.reportTypeVariableClash(e, s.entities.MustGet(prevID))
			}
		}
		ns.append(e.Name, id, GetterAxis)
	}
}

func (s *Stack) reportTypeVariableClash(next, prev *decl.Entity) {
	name := s.strings.MustLookup(next.Name)
	code := diag.OutDuplicateDeclaration
	msg := fmt.Sprintf("type parameter '%s' collides with another declaration", name)
	if prev.Kind == decl.KindTypeVariable {
		code = diag.OutDuplicateTypeVariable
		msg = fmt.Sprintf("type parameter '%s' is already declared", name)
	}
	builder := diag.ReportError(s.reporter, code, next.NameSpan, msg)
	if prev.NameSpan != (source.Span{}) {
		builder.WithNote(prev.NameSpan, "previous declaration here")
	}
	builder.Emit()
}

func (s *Stack) frameName(f *Frame) string {
	if f.Name == source.NoStringID {
		return ""
	}
	return s.strings.MustLookup(f.Name)
}

func scopeKindFor(kind FrameKind) ScopeKind {
	switch kind {
	case FrameLibrary:
		return ScopeLibrary
	case FrameFunctionType:
		return ScopeFunctionType
	default:
		return ScopeDeclaration
	}
}

package decl

// Subst maps type-variable entities to replacement references. Mixin
// linearization uses it to redirect a subclass's parameters to their fresh
// synthetic copies.
type Subst map[EntityID]*Ref

// Apply rebuilds the reference with every mapped variable replaced. The
// original node is returned untouched when no replacement applies below it;
// changed paths always get newly constructed nodes.
func (s Subst) Apply(r *Ref) *Ref {
	if r == nil || len(s) == 0 {
		return r
	}
	switch r.Kind {
	case RefVariable:
		if repl, ok := s[r.Target]; ok {
			return repl
		}
		return r
	case RefNamed:
		args, changed := s.applyList(r.Args)
		if !changed {
			return r
		}
		clone := *r
		clone.Args = args
		return &clone
	case RefFunc:
		params, paramsChanged := s.applyList(r.Params)
		ret := s.Apply(r.Ret)
		if !paramsChanged && ret == r.Ret {
			return r
		}
		clone := *r
		clone.Params = params
		clone.Ret = ret
		return &clone
	default:
		return r
	}
}

// ApplyAll maps Apply over a list, sharing the input slice when nothing
// changed.
func (s Subst) ApplyAll(refs []*Ref) []*Ref {
	out, changed := s.applyList(refs)
	if !changed {
		return refs
	}
	return out
}

func (s Subst) applyList(refs []*Ref) ([]*Ref, bool) {
	if len(refs) == 0 {
		return refs, false
	}
	changed := false
	out := refs
	for i, r := range refs {
		next := s.Apply(r)
		if next == r {
			continue
		}
		if !changed {
			out = make([]*Ref, len(refs))
			copy(out, refs)
			changed = true
		}
		out[i] = next
	}
	return out, changed
}

package outline

import (
	"fmt"

	"vela/internal/decl"
	"vela/internal/source"
)

// mixinInput collects everything one chain expansion needs. The final-link
// fields apply only when Named is set; unnamed links asserting on them is a
// builder bug, not user input.
type mixinInput struct {
	Supertype  *decl.Ref
	Mixins     []*decl.Ref
	Name       source.StringID
	NameSpan   source.Span
	TypeParams []decl.EntityID
	Named      bool
	Interfaces []*decl.Ref
	Metadata   []source.Span
	Mods       decl.Modifiers
	ClassMods  decl.ClassModifiers
}

// mixinLink is one resolved chain step ready to become a class entity.
type mixinLink struct {
	Name       source.StringID
	NameSpan   source.Span
	Super      *decl.Ref
	Mixin      *decl.Ref
	Final      bool
	TypeParams []decl.EntityID
	Interfaces []*decl.Ref
	Metadata   []source.Span
	Mods       decl.Modifiers
	ClassMods  decl.ClassModifiers
}

// linearizeMixins expands a supertype plus ordered mixin list into a chain
// of single-mixin classes. Each link's supertype is the previous link; each
// carries exactly one mixin. For a named application the last link is the
// user-named entity, carrying the declared type parameters, interfaces and
// modifiers verbatim; every other link is a fresh abstract synthetic class.
//
// Returns the reference to use as the subclass's supertype and, when Named,
// the entity of the final link.
func (b *Builder) linearizeMixins(in mixinInput) (*decl.Ref, decl.EntityID) {
	cur := in.Supertype
	if cur == nil {
		cur = b.objectType(in.NameSpan)
	}
	if len(in.Mixins) == 0 {
		return cur, decl.NoEntityID
	}

	subject := make(map[decl.EntityID]struct{}, len(in.TypeParams))
	for _, tv := range in.TypeParams {
		subject[tv] = struct{}{}
	}

	running := b.refText(cur)
	base := b.strings.MustLookup(in.Name)

	var lastID decl.EntityID
	for i, mixin := range in.Mixins {
		isFinal := in.Named && i == len(in.Mixins)-1
		if !isFinal {
			running += "&" + b.refText(mixin)
		}
		var name source.StringID
		if isFinal {
			name = in.Name
		} else {
			name = b.strings.Intern("_" + base + "&" + running)
		}

		// A link is generic only while the chain still mentions the
		// subclass's own parameters. Supertype references forward them,
		// so genericity never turns off once it turned on.
		generic := len(in.TypeParams) > 0 &&
			(cur.ReferencesAny(subject) || mixin.ReferencesAny(subject))

		link := mixinLink{
			Name:     name,
			NameSpan: in.NameSpan,
			Super:    cur,
			Mixin:    mixin,
			Final:    isFinal,
		}
		switch {
		case isFinal:
			link.TypeParams = in.TypeParams
			link.Interfaces = in.Interfaces
			link.Metadata = in.Metadata
			link.Mods = in.Mods
			link.ClassMods = in.ClassMods
		case generic:
			fresh, sub := b.cloneTypeParams(in.TypeParams)
			link.TypeParams = fresh
			link.Super = sub.Apply(cur)
			link.Mixin = sub.Apply(mixin)
			b.noteSubstituted(cur, link.Super)
			b.noteSubstituted(mixin, link.Mixin)
		}

		id := b.applyMixin(link)
		b.result.MixinLinks = append(b.result.MixinLinks, MixinLink{Class: id, Mixin: link.Mixin})
		lastID = id

		// The next link references this one applied to the subclass's own
		// parameters, in declaration order. The substitution of that next
		// link redirects them to its fresh copies.
		var args []*decl.Ref
		if generic && !isFinal {
			args = make([]*decl.Ref, len(in.TypeParams))
			for j, tv := range in.TypeParams {
				tve := b.entities.MustGet(tv)
				args[j] = decl.VariableRef(tv, tve.Name, tve.NameSpan)
			}
		}
		cur = decl.EntityRef(id, name, in.NameSpan, args)
	}

	if in.Named {
		return cur, lastID
	}
	return cur, decl.NoEntityID
}

// applyMixin creates, binds and registers one chain link. Synthetic links
// must not carry metadata or interfaces; receiving them means the builder
// itself went off the rails.
func (b *Builder) applyMixin(link mixinLink) decl.EntityID {
	if !link.Final && (len(link.Metadata) > 0 || len(link.Interfaces) > 0) {
		panic(fmt.Errorf("outline: unnamed mixin application %q cannot carry metadata or interfaces",
			b.strings.MustLookup(link.Name)))
	}
	mods := link.Mods
	if !link.Final {
		mods |= decl.ModAbstract
	}
	e := decl.Entity{
		Kind:       decl.KindClass,
		Name:       link.Name,
		NameSpan:   link.NameSpan,
		Mods:       mods,
		ClassMods:  link.ClassMods,
		Metadata:   link.Metadata,
		TypeParams: link.TypeParams,
		Class: &decl.ClassDetail{
			Supertype:          link.Super,
			MixedIn:            link.Mixin,
			Interfaces:         link.Interfaces,
			IsMixinApplication: true,
		},
	}
	id := b.entities.New(&e)
	b.bindEntity(id)

	fragment := NewNameSpace()
	if !link.Final && len(link.TypeParams) > 0 {
		// Открываем кадр, чтобы свежие параметры попали в дерево скоупов.
		// The synthetic class still gets a scope node so later phases see
		// its fresh parameters.
		f := b.stack.Push(FrameUnnamedMixinApplication, link.Name, link.NameSpan)
		for _, tv := range link.TypeParams {
			tve := b.entities.MustGet(tv)
			b.scopes.Bind(f.Scope, tve.Name, tv)
		}
		b.stack.Pop(FrameUnnamedMixinApplication)
		b.stack.InstallTypeVariables(link.TypeParams, fragment, ConflictAllowed)
	}
	b.result.Members[id] = fragment

	b.registry.Register(b.result.Top, link.Name, id, GetterAxis)
	return id
}

// cloneTypeParams makes fresh copies of the variables with new identity and
// rewrites their bounds through the old-to-new substitution, so bounds that
// mention the variable itself or a sibling land on the copies. Bounds are
// filled only after the whole map exists.
func (b *Builder) cloneTypeParams(vars []decl.EntityID) ([]decl.EntityID, decl.Subst) {
	fresh := make([]decl.EntityID, len(vars))
	details := make([]*decl.TypeVarDetail, len(vars))
	sub := make(decl.Subst, len(vars))
	for i, id := range vars {
		old := b.entities.MustGet(id)
		detail := &decl.TypeVarDetail{Origin: id}
		clone := decl.Entity{
			Kind:     decl.KindTypeVariable,
			Name:     old.Name,
			NameSpan: old.NameSpan,
			TypeVar:  detail,
		}
		fid := b.entities.New(&clone)
		fresh[i] = fid
		details[i] = detail
		sub[id] = decl.VariableRef(fid, old.Name, old.NameSpan)
	}
	for i, id := range vars {
		old := b.entities.MustGet(id)
		if old.TypeVar == nil || old.TypeVar.Bound == nil {
			continue
		}
		bound := sub.Apply(old.TypeVar.Bound)
		details[i].Bound = bound
		b.noteSubstituted(old.TypeVar.Bound, bound)
	}
	return fresh, sub
}

// noteSubstituted registers named references newly created by substitution
// for later resolution. Untouched subtrees were registered when first built
// and are skipped.
func (b *Builder) noteSubstituted(old, next *decl.Ref) {
	if next == nil || next == old {
		return
	}
	switch next.Kind {
	case decl.RefNamed:
		if !next.Resolved() {
			b.result.UnresolvedTypes = append(b.result.UnresolvedTypes, next)
		}
		if old != nil && old.Kind == decl.RefNamed && len(old.Args) == len(next.Args) {
			for i := range next.Args {
				b.noteSubstituted(old.Args[i], next.Args[i])
			}
		}
	case decl.RefFunc:
		if old != nil && old.Kind == decl.RefFunc && len(old.Params) == len(next.Params) {
			for i := range next.Params {
				b.noteSubstituted(old.Params[i], next.Params[i])
			}
			b.noteSubstituted(old.Ret, next.Ret)
		}
	}
}

// refText returns the simple-name text of a reference for running-name
// accumulation, or "" for shapes without one.
func (b *Builder) refText(r *decl.Ref) string {
	name := r.SimpleName()
	if name == source.NoStringID {
		return ""
	}
	return b.strings.MustLookup(name)
}

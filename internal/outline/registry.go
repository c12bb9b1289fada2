package outline

import (
	"fmt"

	"vela/internal/decl"
	"vela/internal/diag"
	"vela/internal/source"
)

// Registry applies the declaration-registration policy to a namespace:
// idempotent re-registration, import-prefix merging, duplicate reporting
// with shadow chains, extension collection, and augmentation chaining.
type Registry struct {
	entities *decl.Entities
	strings  *source.Interner
	reporter diag.Reporter
}

// NewRegistry wires a registry to the unit's entity arena and reporter.
// A nil reporter suppresses diagnostics.
func NewRegistry(entities *decl.Entities, strings *source.Interner, reporter diag.Reporter) *Registry {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Registry{entities: entities, strings: strings, reporter: reporter}
}

// Register installs the entity into ns under name and returns the canonical
// entity for that slot. Rules apply in priority order:
//
//  1. re-registering the identical entity under the same name is a no-op;
//  2. two import prefixes merge; a deferred/immediate mix is reported;
//  3. plain collisions report a duplicate citing both sites, and the new
//     entity still becomes the resolvable binding (the old one stays on
//     the shadow chain);
//  4. extensions append to the scope's ordered extension list regardless
//     of collisions; the first of a name keeps name resolution;
//  5. augmentations chain onto the base without replacing it;
//  6. anything else inserts, shadowing the prior occupant.
func (r *Registry) Register(ns *NameSpace, name source.StringID, id decl.EntityID, a Axis) decl.EntityID {
	next := r.entities.MustGet(id)

	// Unnamed declarations come out of recovery paths and from unnamed
	// extensions. They are not name-resolvable; extensions still join the
	// ordered list.
	if name == source.NoStringID {
		if next.Kind == decl.KindExtension {
			ns.Extensions = append(ns.Extensions, id)
		}
		return id
	}

	prevID := ns.Lookup(name, a)
	if prevID == id {
		return id
	}

	if prevID.IsValid() {
		prev := r.entities.MustGet(prevID)
		if prev.Kind == decl.KindPrefix && next.Kind == decl.KindPrefix {
			r.mergePrefixes(prev, next)
			return prevID
		}
		if next.Kind != decl.KindExtension && !next.IsAugment() {
			r.reportDuplicate(name, next.NameSpan, prev.NameSpan)
			ns.append(name, id, a)
			return id
		}
	}

	if next.Kind == decl.KindExtension {
		ns.Extensions = append(ns.Extensions, id)
		if !prevID.IsValid() {
			ns.append(name, id, a)
			return id
		}
		// Later extensions of an already-bound name stay list-only.
		return prevID
	}

	if next.IsAugment() {
		ns.appendAugmentation(name, id, a)
		if prevID.IsValid() {
			return prevID
		}
		// Dangling augmentation: nothing to patch yet. The merge phase
		// reports it; here it only waits on the augmentation list.
		return id
	}

	ns.append(name, id, a)
	return id
}

// mergePrefixes folds a repeated import prefix into the first declaration.
// The combined entity accumulates every import URI; materializing the merged
// export scope is the loader's job.
func (r *Registry) mergePrefixes(prev, next *decl.Entity) {
	if prev.Prefix == nil || next.Prefix == nil {
		panic(fmt.Errorf("outline: import prefix without prefix detail"))
	}
	if prev.Prefix.Deferred != next.Prefix.Deferred {
		name := r.strings.MustLookup(prev.Name)
		msg := fmt.Sprintf("prefix '%s' mixes deferred and immediate imports", name)
		diag.ReportError(r.reporter, diag.OutDeferredPrefixConflict, next.NameSpan, msg).
			WithNote(prev.NameSpan, "previous import with this prefix here").
			Emit()
	}
	prev.Prefix.ImportURIs = append(prev.Prefix.ImportURIs, next.Prefix.ImportURIs...)
}

func (r *Registry) reportDuplicate(name source.StringID, span, prevSpan source.Span) {
	nameStr := r.strings.MustLookup(name)
	msg := fmt.Sprintf("duplicate declaration of '%s'", nameStr)
	builder := diag.ReportError(r.reporter, diag.OutDuplicateDeclaration, span, msg)
	if prevSpan != (source.Span{}) {
		builder.WithNote(prevSpan, "previous declaration here")
	}
	builder.Emit()
}

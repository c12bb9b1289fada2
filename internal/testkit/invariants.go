package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"vela/internal/decl"
	"vela/internal/outline"
	"vela/internal/source"
)

// CheckOutlineInvariants runs a minimal set of structural invariants on a
// finished outline:
// 1) every name span in this unit lies within the unit's content bounds
// 2) every issued reference slot is nonzero and below the index's Next
// 3) every namespace chain entry is an allocated entity carrying the name
//    it is registered under
// 4) every synthetic chain link is a mixin-application class with a mixin
func CheckOutlineInvariants(res *outline.Result, sf *source.File) error {
	if res == nil || sf == nil {
		return fmt.Errorf("nil result or file")
	}
	if res.Slots == nil {
		return fmt.Errorf("missing slot index")
	}

	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	count, err := safecast.Conv[uint32](res.Entities.Len())
	if err != nil {
		return fmt.Errorf("entity count overflow: %w", err)
	}

	// 1) span sanity, 2) slot sanity
	for i := uint32(1); i <= count; i++ {
		id := decl.EntityID(i)
		e := res.Entities.MustGet(id)

		if e.NameSpan.File == sf.ID && e.NameSpan != (source.Span{}) {
			if e.NameSpan.End < e.NameSpan.Start {
				return fmt.Errorf("entity %d: inverted name span %v", id, e.NameSpan)
			}
			if e.NameSpan.End > lenContent {
				return fmt.Errorf("entity %d: name span beyond content: %d > %d", id, e.NameSpan.End, lenContent)
			}
		}

		if e.Slot.IsValid() {
			if uint32(e.Slot) >= res.Slots.Next {
				return fmt.Errorf("entity %d: slot %d not below next %d", id, e.Slot, res.Slots.Next)
			}
		}
	}
	for key, slot := range res.Slots.Slots {
		if slot == decl.NoRefSlot {
			return fmt.Errorf("key %q: issued the reserved slot", key)
		}
		if uint32(slot) >= res.Slots.Next {
			return fmt.Errorf("key %q: slot %d not below next %d", key, slot, res.Slots.Next)
		}
	}

	// 3) namespace integrity: top level plus every member namespace
	if err := checkNameSpace(res, res.Top, "top level"); err != nil {
		return err
	}
	for owner, ns := range res.Members {
		if res.Entities.Get(owner) == nil {
			return fmt.Errorf("member namespace keyed by unallocated entity %d", owner)
		}
		if err := checkNameSpace(res, ns, fmt.Sprintf("members of %d", owner)); err != nil {
			return err
		}
	}

	// 4) chain link shape
	for _, link := range res.MixinLinks {
		e := res.Entities.Get(link.Class)
		if e == nil {
			return fmt.Errorf("chain link %d not allocated", link.Class)
		}
		if e.Kind != decl.KindClass || e.Class == nil || !e.Class.IsMixinApplication {
			return fmt.Errorf("chain link %d is not a mixin application", link.Class)
		}
		if e.Class.MixedIn == nil {
			return fmt.Errorf("chain link %d carries no mixin", link.Class)
		}
	}
	return nil
}

func checkNameSpace(res *outline.Result, ns *outline.NameSpace, where string) error {
	if ns == nil {
		return fmt.Errorf("%s: nil namespace", where)
	}
	for _, a := range []outline.Axis{outline.GetterAxis, outline.SetterAxis} {
		for _, name := range ns.Names(a) {
			chain := ns.Chain(name, a)
			if len(chain) == 0 {
				return fmt.Errorf("%s: name %d indexed with an empty chain", where, name)
			}
			for _, id := range chain {
				e := res.Entities.Get(id)
				if e == nil {
					return fmt.Errorf("%s: chain entry %d not allocated", where, id)
				}
				if e.Name != name {
					return fmt.Errorf("%s: entity %d registered under name %d but named %d", where, id, name, e.Name)
				}
			}
		}
		for _, name := range ns.AugmentedNames(a) {
			for _, id := range ns.Augmentations(name, a) {
				if res.Entities.Get(id) == nil {
					return fmt.Errorf("%s: augmentation entry %d not allocated", where, id)
				}
			}
		}
	}
	for _, id := range ns.Extensions {
		if res.Entities.Get(id) == nil {
			return fmt.Errorf("%s: extension entry %d not allocated", where, id)
		}
	}
	return nil
}

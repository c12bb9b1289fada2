package outline

import (
	"testing"

	"vela/internal/decl"
	"vela/internal/diag"
	"vela/internal/source"
)

func TestNamedMixinApplicationChain(t *testing.T) {
	bag := diag.NewBag(8)
	b := newTestBuilder(bag)
	in := b.Strings()

	b.BeginNamedMixinApplication(in.Intern("Widget"), at(10))
	b.SetSupertype(b.MakeNamedType(source.NoStringID, in.Intern("Base"), at(20)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Paint"), at(30)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Layout"), at(40)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Focus"), at(50)))
	b.AddInterface(b.MakeNamedType(source.NoStringID, in.Intern("Comparable"), at(60)))
	last := b.EndNamedMixinApplication()
	res := b.Finish()

	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %d", bag.Len())
	}
	first := res.DeclarationID("_Widget&Base&Paint")
	second := res.DeclarationID("_Widget&Base&Paint&Layout")
	if !first.IsValid() || !second.IsValid() {
		t.Fatalf("expected both chain links resolvable")
	}
	if res.DeclarationID("Widget") != last {
		t.Fatalf("expected the named entity to be the final link")
	}

	fe := res.Entities.MustGet(first)
	if fe.Mods&decl.ModAbstract == 0 {
		t.Fatalf("expected the synthetic link abstract")
	}
	if !fe.Class.IsMixinApplication {
		t.Fatalf("expected the mixin application flag on the link")
	}
	if got := in.MustLookup(fe.Class.Supertype.SimpleName()); got != "Base" {
		t.Fatalf("expected the first link over Base, got %q", got)
	}
	if got := in.MustLookup(fe.Class.MixedIn.SimpleName()); got != "Paint" {
		t.Fatalf("expected the first link to mix in Paint, got %q", got)
	}

	se := res.Entities.MustGet(second)
	if se.Class.Supertype.Target != first {
		t.Fatalf("expected the second link to extend the first")
	}
	if got := in.MustLookup(se.Class.MixedIn.SimpleName()); got != "Layout" {
		t.Fatalf("expected the second link to mix in Layout, got %q", got)
	}

	le := res.Entities.MustGet(last)
	if le.Mods&decl.ModAbstract != 0 {
		t.Fatalf("expected the named application to stay concrete")
	}
	if !le.Class.IsMixinApplication {
		t.Fatalf("expected the mixin application flag on the named entity")
	}
	if le.Class.Supertype.Target != second {
		t.Fatalf("expected the named application to extend the second link")
	}
	if got := in.MustLookup(le.Class.MixedIn.SimpleName()); got != "Focus" {
		t.Fatalf("expected the named application to mix in Focus, got %q", got)
	}
	if len(le.Class.Interfaces) != 1 {
		t.Fatalf("expected the declared interfaces only on the final link, got %d", len(le.Class.Interfaces))
	}
	if len(fe.Class.Interfaces) != 0 || len(se.Class.Interfaces) != 0 {
		t.Fatalf("expected no interfaces on synthetic links")
	}

	if len(res.MixinLinks) != 3 {
		t.Fatalf("expected 3 chain records, got %d", len(res.MixinLinks))
	}
	if res.MixinLinks[0].Class != first || res.MixinLinks[2].Class != last {
		t.Fatalf("expected the chain records in application order")
	}
}

func TestClassMixinChain(t *testing.T) {
	b := newTestBuilder(nil)
	in := b.Strings()

	b.BeginClass(in.Intern("Robot"), at(5))
	b.SetSupertype(b.MakeNamedType(source.NoStringID, in.Intern("Machine"), at(15)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Walk"), at(25)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Talk"), at(35)))
	id := b.EndClass()
	res := b.Finish()

	first := res.DeclarationID("_Robot&Machine&Walk")
	second := res.DeclarationID("_Robot&Machine&Walk&Talk")
	if !first.IsValid() || !second.IsValid() {
		t.Fatalf("expected two synthetic links")
	}
	cls := res.Entities.MustGet(id)
	if cls.Class.IsMixinApplication {
		t.Fatalf("expected the class itself to stay ordinary")
	}
	if cls.Class.MixedIn != nil {
		t.Fatalf("expected no mixin left on the class entity")
	}
	if cls.Class.Supertype.Target != second {
		t.Fatalf("expected the class to extend the last link")
	}
	if len(res.MixinLinks) != 2 {
		t.Fatalf("expected 2 chain records, got %d", len(res.MixinLinks))
	}
}

func TestMixinChainGenericityOnDemand(t *testing.T) {
	b := newTestBuilder(nil)
	in := b.Strings()

	b.BeginClass(in.Intern("Cache"), at(5))
	tv := b.AddTypeVariable(in.Intern("T"), at(12), nil)
	b.SetSupertype(b.MakeNamedType(source.NoStringID, in.Intern("Base"), at(20)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Clock"), at(30)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Store"), at(40),
		b.MakeNamedType(source.NoStringID, in.Intern("T"), at(46))))
	id := b.EndClass()
	res := b.Finish()

	first := res.Entities.MustGet(res.DeclarationID("_Cache&Base&Clock"))
	if len(first.TypeParams) != 0 {
		t.Fatalf("expected the parameter-free link non-generic, got %d parameters", len(first.TypeParams))
	}

	second := res.Entities.MustGet(res.DeclarationID("_Cache&Base&Clock&Store"))
	if len(second.TypeParams) != 1 {
		t.Fatalf("expected one fresh parameter, got %d", len(second.TypeParams))
	}
	fresh := second.TypeParams[0]
	if fresh == tv {
		t.Fatalf("expected a fresh copy, got the declared variable")
	}
	fe := res.Entities.MustGet(fresh)
	if got := in.MustLookup(fe.Name); got != "T" {
		t.Fatalf("expected the copy to keep the name, got %q", got)
	}
	if fe.TypeVar.Origin != tv {
		t.Fatalf("expected the copy to record its origin")
	}
	arg := second.Class.MixedIn.Args[0]
	if arg.Kind != decl.RefVariable || arg.Target != fresh {
		t.Fatalf("expected the link's mixin rewritten onto the fresh copy")
	}

	cls := res.Entities.MustGet(id)
	args := cls.Class.Supertype.Args
	if len(args) != 1 || args[0].Target != tv {
		t.Fatalf("expected the class supertype applied to its own parameter")
	}
}

func TestMixinChainGenericityForwards(t *testing.T) {
	b := newTestBuilder(nil)
	in := b.Strings()

	b.BeginClass(in.Intern("Pipe"), at(5))
	tv := b.AddTypeVariable(in.Intern("T"), at(11), nil)
	b.SetSupertype(b.MakeNamedType(source.NoStringID, in.Intern("Base"), at(20)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Source"), at(30),
		b.MakeNamedType(source.NoStringID, in.Intern("T"), at(37))))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Sink"), at(45)))
	b.EndClass()
	res := b.Finish()

	firstID := res.DeclarationID("_Pipe&Base&Source")
	first := res.Entities.MustGet(firstID)
	if len(first.TypeParams) != 1 {
		t.Fatalf("expected the first link generic, got %d parameters", len(first.TypeParams))
	}

	// The supertype reference forwards the subclass parameters, so the
	// second link stays generic even though its own mixin mentions none.
	second := res.Entities.MustGet(res.DeclarationID("_Pipe&Base&Source&Sink"))
	if len(second.TypeParams) != 1 {
		t.Fatalf("expected genericity carried forward, got %d parameters", len(second.TypeParams))
	}
	secondFresh := second.TypeParams[0]
	if secondFresh == tv || secondFresh == first.TypeParams[0] {
		t.Fatalf("expected a copy of its own on the second link")
	}
	sup := second.Class.Supertype
	if sup.Target != firstID {
		t.Fatalf("expected the second link over the first")
	}
	if len(sup.Args) != 1 || sup.Args[0].Target != secondFresh {
		t.Fatalf("expected the inherited argument rewritten onto the second link's copy")
	}
}

func TestNamedMixinApplicationSingleMixin(t *testing.T) {
	b := newTestBuilder(nil)
	in := b.Strings()

	b.BeginNamedMixinApplication(in.Intern("Pair"), at(5))
	a := b.AddTypeVariable(in.Intern("A"), at(10), nil)
	b.SetSupertype(b.MakeNamedType(source.NoStringID, in.Intern("Base"), at(20)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("One"), at(30),
		b.MakeNamedType(source.NoStringID, in.Intern("A"), at(34))))
	id := b.EndNamedMixinApplication()
	res := b.Finish()

	e := res.Entities.MustGet(id)
	if len(e.TypeParams) != 1 || e.TypeParams[0] != a {
		t.Fatalf("expected the declared parameter kept without copying, got %v", e.TypeParams)
	}
	if got := e.Class.MixedIn.Args[0].Target; got != a {
		t.Fatalf("expected no substitution on the final link, got %v", got)
	}
	if len(res.MixinLinks) != 1 {
		t.Fatalf("expected a single-link chain, got %d", len(res.MixinLinks))
	}
	if res.MemberOf(id, "A", GetterAxis) == nil {
		t.Fatalf("expected the declared parameter installed in the namespace")
	}
}

func TestNamedMixinApplicationRecovery(t *testing.T) {
	b := newTestBuilder(nil)
	in := b.Strings()

	b.BeginNamedMixinApplication(in.Intern("Alias"), at(5))
	b.SetSupertype(b.MakeNamedType(source.NoStringID, in.Intern("Base"), at(15)))
	id := b.EndNamedMixinApplication()
	res := b.Finish()

	e := res.Entities.MustGet(id)
	if e.Class.IsMixinApplication {
		t.Fatalf("expected recovery to produce an ordinary class")
	}
	if len(res.MixinLinks) != 0 {
		t.Fatalf("expected no chain records, got %d", len(res.MixinLinks))
	}
	if got := in.MustLookup(e.Class.Supertype.SimpleName()); got != "Base" {
		t.Fatalf("expected the written supertype kept, got %q", got)
	}
}

func TestMixinOnClauseChain(t *testing.T) {
	b := newTestBuilder(nil)
	in := b.Strings()

	b.BeginMixin(in.Intern("Journal"), at(5))
	b.AddOnType(b.MakeNamedType(source.NoStringID, in.Intern("Disk"), at(15)))
	b.AddOnType(b.MakeNamedType(source.NoStringID, in.Intern("Net"), at(25)))
	id := b.EndMixin()
	res := b.Finish()

	link := res.DeclarationID("_Journal&Disk&Net")
	if !link.IsValid() {
		t.Fatalf("expected a chain link for the on clause")
	}
	m := res.Entities.MustGet(id)
	if m.Kind != decl.KindMixin {
		t.Fatalf("expected the mixin to stay a mixin, got %v", m.Kind)
	}
	if m.Class.Supertype.Target != link {
		t.Fatalf("expected the mixin to sit on the chain link")
	}
	if len(m.Class.OnTypes) != 2 {
		t.Fatalf("expected both constraints kept, got %d", len(m.Class.OnTypes))
	}
}

func TestMixinSubstitutionJoinsUnresolved(t *testing.T) {
	b := newTestBuilder(nil)
	in := b.Strings()

	b.BeginClass(in.Intern("Grid"), at(5))
	b.AddTypeVariable(in.Intern("T"), at(11), nil)
	b.SetSupertype(b.MakeNamedType(source.NoStringID, in.Intern("Base"), at(20)))
	b.AddMixin(b.MakeNamedType(source.NoStringID, in.Intern("Rows"), at(30),
		b.MakeNamedType(source.NoStringID, in.Intern("T"), at(36))))
	b.EndClass()
	res := b.Finish()

	link := res.Entities.MustGet(res.DeclarationID("_Grid&Base&Rows"))
	fresh := link.TypeParams[0]
	found := false
	for _, r := range res.UnresolvedTypes {
		if r.Kind == decl.RefNamed && len(r.Args) == 1 &&
			r.Args[0].Kind == decl.RefVariable && r.Args[0].Target == fresh {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the substituted mixin reference on the unresolved list")
	}
}

func TestSyntheticLinkRejectsInterfaces(t *testing.T) {
	bag := diag.NewBag(8)
	b := newTestBuilder(bag)
	in := b.Strings()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a synthetic link with interfaces to panic")
		}
		if bag.Len() != 0 {
			t.Fatalf("expected no diagnostics from a builder bug, got %d", bag.Len())
		}
	}()
	b.applyMixin(mixinLink{
		Name:     in.Intern("_Bad&Base&M"),
		NameSpan: at(1),
		Super:    b.MakeNamedType(source.NoStringID, in.Intern("Base"), at(2)),
		Mixin:    b.MakeNamedType(source.NoStringID, in.Intern("M"), at(3)),
		Interfaces: []*decl.Ref{
			b.MakeNamedType(source.NoStringID, in.Intern("I"), at(4)),
		},
	})
}

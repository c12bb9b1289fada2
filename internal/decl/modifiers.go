package decl

// Modifiers encode member-level attributes for quick checks.
type Modifiers uint16

const (
	ModAbstract Modifiers = 1 << iota
	ModStatic
	ModConst
	ModFinal
	ModLate
	ModExternal
	ModCovariant
	ModRequired
	ModAugment
	ModDeferred
)

// Strings returns a slice of textual modifier labels.
func (m Modifiers) Strings() []string {
	if m == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if m&ModAbstract != 0 {
		labels = append(labels, "abstract")
	}
	if m&ModStatic != 0 {
		labels = append(labels, "static")
	}
	if m&ModConst != 0 {
		labels = append(labels, "const")
	}
	if m&ModFinal != 0 {
		labels = append(labels, "final")
	}
	if m&ModLate != 0 {
		labels = append(labels, "late")
	}
	if m&ModExternal != 0 {
		labels = append(labels, "external")
	}
	if m&ModCovariant != 0 {
		labels = append(labels, "covariant")
	}
	if m&ModRequired != 0 {
		labels = append(labels, "required")
	}
	if m&ModAugment != 0 {
		labels = append(labels, "augment")
	}
	if m&ModDeferred != 0 {
		labels = append(labels, "deferred")
	}
	return labels
}

// ClassModifiers mirror the language-modifier booleans supplied by
// class-like begin events.
type ClassModifiers uint8

const (
	ClassSealed ClassModifiers = 1 << iota
	ClassBase
	ClassInterface
	ClassFinal
	ClassMixinClass
	ClassAugment
	ClassMacro
)

// Strings returns a slice of textual class-modifier labels.
func (m ClassModifiers) Strings() []string {
	if m == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if m&ClassSealed != 0 {
		labels = append(labels, "sealed")
	}
	if m&ClassBase != 0 {
		labels = append(labels, "base")
	}
	if m&ClassInterface != 0 {
		labels = append(labels, "interface")
	}
	if m&ClassFinal != 0 {
		labels = append(labels, "final")
	}
	if m&ClassMixinClass != 0 {
		labels = append(labels, "mixin class")
	}
	if m&ClassAugment != 0 {
		labels = append(labels, "augment")
	}
	if m&ClassMacro != 0 {
		labels = append(labels, "macro")
	}
	return labels
}

package outfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) label() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// PrettyOpts configures the declaration-tree renderer.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	// ShowSlots печатает слот привязки у каждого объявления.
	ShowSlots bool
}

// JSONOpts configures JSON output of an outline run.
type JSONOpts struct {
	IncludePositions bool // добавить line/col к спанам
	PathMode         PathMode
}

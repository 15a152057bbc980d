package diagfmt

// PathMode selects how description paths are printed.
type PathMode uint8

const (
	PathModeAsIs PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string // for PathModeRelative
	ShowNotes bool
}

// JSONOpts configures JSON.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // 0 means all
	IncludeNotes bool
}

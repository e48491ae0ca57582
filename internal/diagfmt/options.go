package diagfmt

// PathMode selects how file names are printed.
type PathMode uint8

const (
	PathModeAuto     PathMode = iota // as the tree document recorded it
	PathModeAbsolute
	PathModeRelative // to PrettyOpts.BaseDir / JSONOpts.BaseDir
	PathModeBasename
)

var pathModes = map[string]PathMode{
	"":         PathModeAuto,
	"auto":     PathModeAuto,
	"absolute": PathModeAbsolute,
	"relative": PathModeRelative,
	"basename": PathModeBasename,
}

// ParsePathMode accepts auto, absolute, relative and basename.
func ParsePathMode(s string) (PathMode, bool) {
	mode, ok := pathModes[s]
	return mode, ok
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string // для PathModeRelative
	ShowNotes bool
	Summary   bool // итоговая строка "N errors, M warnings"
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

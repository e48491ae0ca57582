package diagfmt

import (
	"path/filepath"

	"decaf/internal/source"
)

func formatPath(file string, mode PathMode, base string) string {
	if file == "" {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(file); err == nil {
			return abs
		}
	case PathModeRelative:
		if base == "" {
			return file
		}
		absBase, errBase := filepath.Abs(base)
		absFile, errFile := filepath.Abs(file)
		if errBase != nil || errFile != nil {
			return file
		}
		if rel, err := filepath.Rel(absBase, absFile); err == nil {
			return rel
		}
	case PathModeBasename:
		return filepath.Base(file)
	}
	return file
}

// formatPos renders path:line:col, or just the path for file-level positions.
func formatPos(pos source.Pos, mode PathMode, base string) string {
	pos.File = formatPath(pos.File, mode, base)
	return pos.String()
}

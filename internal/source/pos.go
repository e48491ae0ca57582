package source

import (
	"fmt"
	"path/filepath"
)

// Pos is the position the parser attached to a node.
type Pos struct {
	File string
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// IsValid reports whether the position carries a line.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	file := p.File
	if file == "" {
		file = "<unknown>"
	}
	if !p.IsValid() {
		return file
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
}

// Before orders positions by file, then line, then column.
func (p Pos) Before(other Pos) bool {
	if p.File != other.File {
		return p.File < other.File
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}

// WithBase returns a copy whose file is shown per mode:
// "basename", "absolute" or anything else for as-is.
func (p Pos) WithBase(mode string) Pos {
	switch mode {
	case "basename":
		p.File = filepath.Base(p.File)
	case "absolute":
		if abs, err := filepath.Abs(p.File); err == nil {
			p.File = abs
		}
	}
	return p
}

package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const maxValueWidth = 32

// Print renders the subtree at id: the root in a box, descendants indented
// with tree connectors. Each line shows kind, identifier, flags, operator,
// literal value and the resolved type once known.
func (t *Tree) Print(w io.Writer, id NodeID) error {
	n := t.Get(id)
	if n == nil {
		return fmt.Errorf("print %d: %w", id, ErrBadPointer)
	}
	label := t.Label(id)
	width := runewidth.StringWidth(label)
	bar := strings.Repeat("─", width+2)
	if _, err := fmt.Fprintf(w, "╭%s╮\n│ %s │\n╰%s╯\n", bar, label, bar); err != nil {
		return err
	}
	for i, child := range n.Children {
		if err := t.printNode(w, child, "", i == len(n.Children)-1); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) printNode(w io.Writer, id NodeID, prefix string, last bool) error {
	connector, childPrefix := "├─ ", prefix+"│  "
	if last {
		connector, childPrefix = "└─ ", prefix+"   "
	}
	if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, connector, t.Label(id)); err != nil {
		return err
	}
	n := t.Get(id)
	if n == nil {
		return nil
	}
	for i, child := range n.Children {
		if err := t.printNode(w, child, childPrefix, i == len(n.Children)-1); err != nil {
			return err
		}
	}
	return nil
}

// Label is the one-line description Print uses for a node.
func (t *Tree) Label(id NodeID) string {
	n := t.Get(id)
	if n == nil {
		return fmt.Sprintf("<nil %d>", id)
	}
	var sb strings.Builder
	sb.WriteString(n.Kind.String())
	if d, ok := n.Decl(); ok {
		fmt.Fprintf(&sb, " %s %s", d.Name, d.DeclType)
		if d.Flags.Has(FlagArray) && n.Kind != KindParamDecl {
			fmt.Fprintf(&sb, "[%d]", d.ArrayLen)
		}
		if labels := d.Flags.Strings(); len(labels) > 0 {
			fmt.Fprintf(&sb, " {%s}", strings.Join(labels, ","))
		}
	}
	if r, ok := n.Ref(); ok {
		fmt.Fprintf(&sb, " %s", r.Name)
	}
	if o, ok := n.Operation(); ok {
		fmt.Fprintf(&sb, " '%s'", o.Op)
	}
	if n.Kind.IsLiteral() {
		sb.WriteString(" ")
		sb.WriteString(runewidth.Truncate(n.Value.Format(n.Kind), maxValueWidth, "…"))
	}
	if n.Type.Known() {
		fmt.Fprintf(&sb, " : %s", n.Type)
	}
	if n.Pos.IsValid() {
		fmt.Fprintf(&sb, " (%d:%d)", n.Pos.Line, n.Pos.Col)
	}
	return sb.String()
}

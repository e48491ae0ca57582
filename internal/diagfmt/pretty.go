package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"decaf/internal/diag"
)

type palette struct {
	err, warn, info, code, note, pos *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		code: color.New(color.Faint),
		note: color.New(color.FgBlue, color.Bold),
		pos:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.note, p.pos} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем Notes с отступом.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var sb strings.Builder
	for _, d := range bag.Items() {
		fmt.Fprintf(&sb, "%s: %s %s: %s\n",
			p.pos.Sprint(formatPos(d.Primary, opts.PathMode, opts.BaseDir)),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		// payload таймингов читается только машиной
		if !opts.ShowNotes || d.Code == diag.ObsTimings {
			continue
		}
		for _, note := range d.Notes {
			if note.Pos.File != "" {
				fmt.Fprintf(&sb, "  %s %s: %s\n", p.note.Sprint("note:"), formatPos(note.Pos, opts.PathMode, opts.BaseDir), note.Msg)
			} else {
				fmt.Fprintf(&sb, "  %s %s\n", p.note.Sprint("note:"), note.Msg)
			}
		}
	}
	if opts.Summary {
		if line := summaryLine(bag); line != "" {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Counts tallies diagnostics by severity.
type Counts struct {
	Errors, Warnings, Infos, Dropped int
}

// Count tallies bag by severity.
func Count(bag *diag.Bag) Counts {
	var c Counts
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			c.Errors++
		case diag.SevWarning:
			c.Warnings++
		default:
			c.Infos++
		}
	}
	c.Dropped = bag.Dropped()
	return c
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func summaryLine(bag *diag.Bag) string {
	c := Count(bag)
	if c.Errors == 0 && c.Warnings == 0 && c.Dropped == 0 {
		return ""
	}
	line := plural(c.Errors, "error") + ", " + plural(c.Warnings, "warning")
	if c.Dropped > 0 {
		line += fmt.Sprintf(" (%d more not shown)", c.Dropped)
	}
	return line
}

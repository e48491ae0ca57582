package diagfmt

import (
	"encoding/json"
	"io"

	"decaf/internal/diag"
	"decaf/internal/source"
)

// LocationJSON omits line and col for file-level diagnostics.
type LocationJSON struct {
	File string `json:"file"`
	Line uint32 `json:"line,omitempty"`
	Col  uint32 `json:"col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the document written for one file. Dropped counts
// both what the bag refused and what Max cut off.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

type jsonBuilder struct{ opts JSONOpts }

func (b jsonBuilder) location(pos source.Pos) LocationJSON {
	loc := LocationJSON{Line: pos.Line, Col: pos.Col}
	if pos.File != "" {
		loc.File = formatPath(pos.File, b.opts.PathMode, b.opts.BaseDir)
	}
	return loc
}

func (b jsonBuilder) diagnostic(d diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Title:    d.Code.Title(),
		Message:  d.Message,
		Location: b.location(d.Primary),
	}
	// timing notes carry the payload, they are never hidden
	if !b.opts.IncludeNotes && d.Code != diag.ObsTimings {
		return out
	}
	for _, n := range d.Notes {
		out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: b.location(n.Pos)})
	}
	return out
}

// BuildDiagnosticsOutput converts bag without encoding it, so several
// files can go into one document.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	shown := items
	if opts.Max > 0 && opts.Max < len(items) {
		shown = items[:opts.Max]
	}
	b := jsonBuilder{opts: opts}
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, len(shown)),
		Count:       len(shown),
		Dropped:     bag.Dropped() + len(items) - len(shown),
	}
	for i, d := range shown {
		out.Diagnostics[i] = b.diagnostic(d)
	}
	return out
}

// JSON writes bag as one indented document.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, opts))
}

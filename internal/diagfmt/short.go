package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"decaf/internal/diag"
)

// Short prints one line per diagnostic, in the form editors and grep
// understand: path:line:col: severity: message [CODE].
func Short(w io.Writer, bag *diag.Bag, mode PathMode, base string) error {
	var sb strings.Builder
	for _, d := range bag.Items() {
		fmt.Fprintf(&sb, "%s: %s: %s [%s]\n", formatPos(d.Primary, mode, base), d.Severity.Label(), d.Message, d.Code.ID())
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

package main

import (
	"fmt"
	"io"
	"strings"
)

// --ui: auto shows the progress screen only when stderr is a terminal.
type uiMode uint8

const (
	uiAuto uiMode = iota
	uiOn
	uiOff
)

var uiModes = map[string]uiMode{"": uiAuto, "auto": uiAuto, "on": uiOn, "off": uiOff}

func readUIMode(value string) (uiMode, error) {
	mode, ok := uiModes[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return uiAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return mode, nil
}

func (m uiMode) enabled(w io.Writer) bool {
	if m == uiAuto {
		return isTerminal(w)
	}
	return m == uiOn
}

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"decaf/internal/config"
)

// settings is decaf.toml with command-line overrides applied.
type settings struct {
	cfg      config.Config
	manifest string // путь к decaf.toml или ""
	root     string // каталог проекта; "" без манифеста
}

// loadSettings reads --config or the nearest decaf.toml above start, then
// applies the persistent flags the user actually set.
func loadSettings(cmd *cobra.Command, start string) (settings, error) {
	flags := cmd.Root().PersistentFlags()
	var s settings

	path, err := flags.GetString("config")
	if err != nil {
		return s, err
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return s, err
		}
		s = settings{cfg: cfg, manifest: path, root: filepath.Dir(path)}
	} else {
		m, ok, err := config.Discover(start)
		if err != nil {
			return s, err
		}
		s.cfg = m.Config
		if ok {
			s.manifest, s.root = m.Path, m.Root
		}
	}

	if f := flags.Lookup("max-diagnostics"); f != nil && f.Changed {
		if s.cfg.Analysis.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return s, err
		}
	}
	if f := flags.Lookup("color"); f != nil && f.Changed {
		if s.cfg.Output.Color, err = flags.GetString("color"); err != nil {
			return s, err
		}
	}
	if err := s.cfg.Validate(); err != nil {
		return s, fmt.Errorf("flags: %w", err)
	}
	return s, nil
}

// useColor resolves output.color for w.
func (s settings) useColor(w io.Writer) bool {
	switch s.cfg.Output.Color {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(w)
	}
}

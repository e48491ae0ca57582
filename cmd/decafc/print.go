package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"decaf/internal/diag"
	"decaf/internal/diagfmt"
	"decaf/internal/sema"
	"decaf/internal/trace"
	"decaf/internal/treeio"
)

func newPrintCmd() *cobra.Command {
	var (
		analyzed bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "Print a tree document, optionally after analysis",
		Long: `print decodes a tree document and renders it. With --analyzed the tree is
checked first, so resolved types and folded literals are shown; diagnostics
go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(cmd, args[0], analyzed, format)
		},
	}
	cmd.Flags().BoolVar(&analyzed, "analyzed", false, "run the analyzer before printing")
	cmd.Flags().StringVar(&format, "format", "tree", "output format (tree|json|dtree)")
	return cmd
}

func runPrint(cmd *cobra.Command, path string, analyzed bool, format string) error {
	var out treeio.Format
	if format != "tree" {
		f, err := treeio.ParseFormat(format)
		if err != nil {
			return err
		}
		out = f
	}
	in, err := treeio.FormatForPath(path)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	tree, root, err := treeio.Decode(file, in)
	_ = file.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var bag *diag.Bag
	if analyzed {
		s, err := loadSettings(cmd, filepath.Dir(path))
		if err != nil {
			return err
		}
		bag = diag.NewBag(s.cfg.Analysis.MaxDiagnostics)
		sema.Analyze(tree, root, sema.Options{
			Reporter:     diag.BagReporter{Bag: bag},
			Tracer:       trace.FromContext(cmd.Context()),
			ForCondition: s.cfg.ForCondition(),
			EntryPoint:   s.cfg.Analysis.EntryPoint,
		})
		bag.Sort()
	}

	if format == "tree" {
		err = tree.Print(cmd.OutOrStdout(), root)
	} else {
		err = treeio.Encode(cmd.OutOrStdout(), tree, root, out)
	}
	if err != nil {
		return err
	}
	if bag != nil && bag.Len() > 0 {
		if err := diagfmt.Short(cmd.ErrOrStderr(), bag, diagfmt.PathModeAuto, ""); err != nil {
			return err
		}
		if bag.HasErrors() {
			return errDiagnostics
		}
	}
	return nil
}

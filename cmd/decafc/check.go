package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"decaf/internal/diagfmt"
	"decaf/internal/driver"
	"decaf/internal/observ"
	"decaf/internal/pipeline"
	"decaf/internal/sema"
	"decaf/internal/treeio"
	"decaf/internal/ui"
)

type checkFlags struct {
	format       string
	withNotes    bool
	fullPath     bool
	jobs         int
	ui           string
	emit         string
	emitFormat   string
	forCondition string
	entryPoint   string
	cache        bool
	noCache      bool
	dedup        bool
}

func newCheckCmd() *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check <file|dir>",
		Short: "Check a tree document or every document in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "", "output format (pretty|short|json); default from decaf.toml")
	cmd.Flags().BoolVar(&f.withNotes, "with-notes", true, "include diagnostic notes in output")
	cmd.Flags().BoolVar(&f.fullPath, "fullpath", false, "emit absolute file paths in output")
	cmd.Flags().IntVar(&f.jobs, "jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().StringVar(&f.ui, "ui", "auto", "progress UI for directories (auto|on|off)")
	cmd.Flags().StringVar(&f.emit, "emit", "", "write the annotated tree to this file (single file only)")
	cmd.Flags().StringVar(&f.emitFormat, "emit-format", "", "format of --emit (json|dtree); default from its extension")
	cmd.Flags().StringVar(&f.forCondition, "for-condition", "", "type required of for conditions ("+forConditionNames()+")")
	cmd.Flags().StringVar(&f.entryPoint, "entry-point", "", "name of the required entry method")
	cmd.Flags().BoolVar(&f.cache, "cache", false, "use the on-disk result cache")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the cache even if decaf.toml enables it")
	cmd.Flags().BoolVar(&f.dedup, "dedup", false, "collapse repeated diagnostics at one position")
	return cmd
}

func runCheck(cmd *cobra.Command, target string, f checkFlags) error {
	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	start := target
	if !st.IsDir() {
		start = filepath.Dir(target)
	}
	s, err := loadSettings(cmd, start)
	if err != nil {
		return err
	}
	if f.format != "" {
		s.cfg.Output.Format = f.format
	}
	if f.forCondition != "" {
		s.cfg.Analysis.ForCondition = f.forCondition
	}
	if f.entryPoint != "" {
		s.cfg.Analysis.EntryPoint = f.entryPoint
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	opts := driver.OptionsFromConfig(s.cfg)
	opts.Timings = timings
	opts.Dedup = f.dedup
	opts.Jobs = f.jobs
	if (s.cfg.Cache.Enabled || f.cache) && !f.noCache {
		dir, err := s.cfg.CacheDir(s.root)
		if err != nil {
			return err
		}
		if opts.Cache, err = driver.OpenDiskCache(dir); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	r := renderer{
		out:       out,
		format:    s.cfg.Output.Format,
		color:     s.useColor(out),
		withNotes: f.withNotes,
	}
	if f.fullPath {
		r.pathMode = diagfmt.PathModeAbsolute
	}

	var results []*driver.FileResult
	if st.IsDir() {
		if f.emit != "" {
			return fmt.Errorf("--emit is only supported for single files")
		}
		dirRes, err := checkDir(cmd, target, opts, f.ui)
		if err != nil {
			return err
		}
		results = dirRes.Files
		if timings {
			printTimings(cmd.ErrOrStderr(), dirRes.Timing)
		}
	} else {
		if f.emit != "" {
			if opts.EmitFormat, err = emitFormat(f); err != nil {
				return err
			}
			opts.Emit = true
		}
		res, err := driver.CheckFile(cmd.Context(), target, opts)
		if res != nil {
			res.Err = err
			results = append(results, res)
		} else if err != nil {
			return err
		}
		if f.emit != "" && res != nil && res.Annotated != nil {
			if err := os.WriteFile(f.emit, res.Annotated, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", f.emit, err)
			}
		}
	}

	for _, res := range results {
		reportInternal(cmd.ErrOrStderr(), res.Err)
	}
	if err := r.render(results, st.IsDir()); err != nil {
		return err
	}
	for _, res := range results {
		if !res.OK() {
			return errDiagnostics
		}
	}
	return nil
}

func emitFormat(f checkFlags) (treeio.Format, error) {
	if f.emitFormat != "" {
		return treeio.ParseFormat(f.emitFormat)
	}
	return treeio.FormatForPath(f.emit)
}

func checkDir(cmd *cobra.Command, dir string, opts driver.Options, uiFlag string) (*driver.DirResult, error) {
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}
	if !mode.enabled(cmd.ErrOrStderr()) {
		return driver.CheckDir(cmd.Context(), dir, opts)
	}
	files, err := driver.ListTreeFiles(dir)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	events := make(chan pipeline.Event, 256)
	type outcome struct {
		res *driver.DirResult
		err error
	}
	outcomeCh := make(chan outcome, 1)
	go func() {
		o := opts
		o.Progress = pipeline.ContextSink{Ctx: ctx, Ch: events}
		res, err := driver.CheckDir(ctx, dir, o)
		outcomeCh <- outcome{res: res, err: err}
		close(events)
	}()

	uiErr := ui.Run(cmd.ErrOrStderr(), "checking "+dir, files, events)
	if uiErr != nil {
		// UI умер: останавливаем воркеров и дочитываем канал
		cancel()
		for range events {
		}
	}
	o := <-outcomeCh
	if uiErr != nil {
		return o.res, uiErr
	}
	return o.res, o.err
}

func reportInternal(w io.Writer, err error) {
	var internal *driver.InternalError
	if !errors.As(err, &internal) {
		if err != nil {
			fmt.Fprintf(w, "%v\n", err)
		}
		return
	}
	fmt.Fprintf(w, "%v\n%s", internal, internal.Stack)
	if len(internal.Trace) > 0 {
		fmt.Fprintf(w, "recent trace events:\n%s", internal.Trace)
	}
}

func printTimings(w io.Writer, report observ.Report) {
	fmt.Fprint(w, report.Summary())
}

type renderer struct {
	out       io.Writer
	format    string
	color     bool
	withNotes bool
	pathMode  diagfmt.PathMode
}

func (r renderer) render(results []*driver.FileResult, dir bool) error {
	switch r.format {
	case "json":
		if !dir && len(results) == 1 {
			return diagfmt.JSON(r.out, results[0].Bag, diagfmt.JSONOpts{PathMode: r.pathMode, IncludeNotes: r.withNotes})
		}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, res := range results {
			output[res.Path] = diagfmt.BuildDiagnosticsOutput(res.Bag, diagfmt.JSONOpts{PathMode: r.pathMode, IncludeNotes: r.withNotes})
		}
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	case "short":
		for _, res := range results {
			if err := diagfmt.Short(r.out, res.Bag, r.pathMode, ""); err != nil {
				return err
			}
		}
		return nil
	default:
		failed := 0
		for _, res := range results {
			if !res.OK() {
				failed++
			}
			opts := diagfmt.PrettyOpts{Color: r.color, PathMode: r.pathMode, ShowNotes: r.withNotes, Summary: !dir}
			if err := diagfmt.Pretty(r.out, res.Bag, opts); err != nil {
				return err
			}
		}
		if dir {
			_, err := fmt.Fprintf(r.out, "checked %s, %s with errors\n", pluralFiles(len(results)), pluralFiles(failed))
			return err
		}
		return nil
	}
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

func forConditionNames() string {
	return strings.Join([]string{sema.ForConditionBoolean.String(), sema.ForConditionInt.String()}, "|")
}

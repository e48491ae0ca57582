package driver

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"decaf/internal/observ"
	"decaf/internal/pipeline"
	"decaf/internal/trace"
	"decaf/internal/treeio"
)

// ListTreeFiles возвращает отсортированный список документов (*.json,
// *.dtree) в директории, рекурсивно. Hidden directories are skipped.
func ListTreeFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if treeio.IsTreeFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// DirResult aggregates a directory check.
type DirResult struct {
	Files  []*FileResult // same order as ListTreeFiles
	Timing observ.Report // per-stage sums over all files
}

// Errors counts files with error diagnostics or internal errors.
func (r *DirResult) Errors() int {
	n := 0
	for _, f := range r.Files {
		if !f.OK() {
			n++
		}
	}
	return n
}

// CheckDir checks every tree document under dir with bounded parallelism.
// Each file gets its own tree, symbol table and bag. An internal error in
// one file is recorded in its FileResult.Err and does not stop the others;
// only cancellation aborts the run.
func CheckDir(ctx context.Context, dir string, opts Options) (*DirResult, error) {
	files, err := ListTreeFiles(dir)
	if err != nil {
		return nil, err
	}
	out := &DirResult{Files: make([]*FileResult, len(files))}
	if len(files) == 0 {
		return out, nil
	}

	progress := opts.progress()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check-dir", trace.CurrentSpan(ctx)).
		WithExtra("dir", dir).
		WithExtra("files", strconv.Itoa(len(files)))
	ctx = trace.WithSpan(ctx, span.ID())
	started := time.Now()

	for _, path := range files {
		progress.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageCheck, Status: pipeline.StatusQueued})
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(files)))
	for i, path := range files {
		g.Go(func() error {
			res, err := CheckFile(gctx, path, opts)
			var internal *InternalError
			switch {
			case errors.As(err, &internal):
				res.Err = err
			case err != nil && res != nil:
				// ошибка кодирования: результат анализа остаётся валидным
				res.Err = err
			case err != nil:
				return err
			}
			out.Files[i] = res
			return nil
		})
	}
	err = g.Wait()

	total := observ.NewTimer()
	for _, res := range out.Files {
		if res != nil {
			total.Merge(res.timer)
		}
	}
	out.Timing = total.Report()

	status := pipeline.StatusDone
	if err != nil || out.Errors() > 0 {
		status = pipeline.StatusError
	}
	span.WithExtra("errors", strconv.Itoa(out.Errors())).End(string(status))
	progress.OnEvent(pipeline.Event{Stage: pipeline.StageCheck, Status: status, Err: err, Elapsed: time.Since(started)})
	if err != nil {
		return nil, err
	}
	return out, nil
}

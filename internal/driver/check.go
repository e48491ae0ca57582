package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"decaf/internal/ast"
	"decaf/internal/diag"
	"decaf/internal/observ"
	"decaf/internal/pipeline"
	"decaf/internal/sema"
	"decaf/internal/source"
	"decaf/internal/trace"
	"decaf/internal/treeio"
)

// ErrInternal marks a contract violation inside the analyzer: a bug, not a
// problem in the checked program.
var ErrInternal = errors.New("internal error")

// InternalError carries a recovered panic together with the recent trace
// events, when a ring tracer was recording.
type InternalError struct {
	Path  string
	Value any
	Stack []byte
	Trace []byte
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Path, ErrInternal, e.Value)
}

func (e *InternalError) Unwrap() []error {
	errs := []error{ErrInternal}
	if err, ok := e.Value.(error); ok {
		errs = append(errs, err)
	}
	return errs
}

// FileResult is the outcome of checking one tree file.
type FileResult struct {
	Path   string
	Format treeio.Format
	Bag    *diag.Bag
	Sema   sema.Result

	// Tree and Root hold the annotated tree; nil when loading or decoding
	// failed.
	Tree      *ast.Tree
	Root      ast.NodeID
	Annotated []byte // encoded tree, only with Options.Emit

	Cached bool
	Timing observ.Report
	Err    error // internal error, set by CheckDir

	timer *observ.Timer
}

// OK reports a file without error diagnostics.
func (r *FileResult) OK() bool {
	return r != nil && r.Err == nil && !r.Bag.HasErrors()
}

// CheckFile loads, decodes and analyzes one tree document.
//
// Problems with the file itself (unreadable, malformed document) become IO
// diagnostics in the result. The returned error is reserved for
// cancellation and internal errors; on an internal error the partial result
// is returned too.
func CheckFile(ctx context.Context, path string, opts Options) (res *FileResult, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	span := trace.BeginFile(tracer, path, trace.CurrentSpan(ctx))
	progress := opts.progress()
	started := time.Now()
	timer := observ.NewTimer()

	res = &FileResult{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics), timer: timer}
	status := pipeline.StatusDone

	defer func() {
		if r := recover(); r != nil {
			err = &InternalError{Path: path, Value: r, Stack: debug.Stack(), Trace: ringDump(tracer, span.ID())}
			status = pipeline.StatusError
			diag.ReportError(diag.BagReporter{Bag: res.Bag}, diag.IOInternalError, source.Pos{File: path}, err.Error()).Emit()
		}
		res.Timing = timer.Report()
		if opts.Timings {
			appendTimingDiagnostic(res.Bag, timingPayload{Kind: "file", Path: path, TotalMS: res.Timing.TotalMS, Phases: res.Timing.Phases})
		}
		if status == pipeline.StatusDone && res.Bag.HasErrors() {
			status = pipeline.StatusError
		}
		span.WithExtra("status", string(status)).
			WithExtra("diagnostics", strconv.Itoa(res.Bag.Len())).
			End(string(status))
		progress.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageCheck, Status: status, Err: err, Elapsed: time.Since(started)})
	}()

	stage := func(st pipeline.Stage, fn func() error) error {
		progress.OnEvent(pipeline.Event{File: path, Stage: st, Status: pipeline.StatusWorking})
		began := time.Now()
		stageErr := timer.Track(string(st), fn)
		done := pipeline.StatusDone
		if stageErr != nil {
			done = pipeline.StatusError
		}
		progress.OnEvent(pipeline.Event{File: path, Stage: st, Status: done, Err: stageErr, Elapsed: time.Since(began)})
		return stageErr
	}
	filePos := source.Pos{File: path}

	format, err := treeio.FormatForPath(path)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IODecodeError, filePos, err.Error()))
		return res, nil
	}
	res.Format = format

	var data []byte
	if err := stage(pipeline.StageLoad, func() (loadErr error) {
		data, loadErr = os.ReadFile(path)
		return loadErr
	}); err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, filePos, err.Error()))
		return res, nil
	}

	key := cacheKey(data, format, opts)
	if opts.Cache != nil {
		hit, err := restore(opts.Cache, key, res)
		if err != nil {
			res.Bag.Add(diag.New(diag.SevWarning, diag.IOLoadFileError, filePos, fmt.Sprintf("cache: %v", err)))
		}
		if hit {
			status = pipeline.StatusCached
			span.WithExtra("cache", "hit")
			return res, emit(res, opts, stage)
		}
	}

	if err := stage(pipeline.StageDecode, func() (decErr error) {
		res.Tree, res.Root, decErr = treeio.Decode(bytes.NewReader(data), format)
		return decErr
	}); err != nil {
		res.Bag.Add(diag.NewError(diag.IODecodeError, filePos, err.Error()))
		return res, nil
	}

	var reporter diag.Reporter = diag.BagReporter{Bag: res.Bag}
	if opts.Dedup {
		reporter = diag.NewDedupReporter(reporter)
	}
	_ = stage(pipeline.StageAnalyze, func() error {
		res.Sema = sema.Analyze(res.Tree, res.Root, sema.Options{
			Reporter:     reporter,
			Tracer:       tracer,
			TraceParent:  span.ID(),
			ForCondition: opts.ForCondition,
			EntryPoint:   opts.entryPoint(),
		})
		return nil
	})
	res.Root = res.Sema.Root
	res.Bag.Sort()

	if err := emit(res, opts, stage); err != nil {
		return res, err
	}
	if opts.Cache != nil {
		if err := store(opts.Cache, key, res); err != nil {
			res.Bag.Add(diag.New(diag.SevWarning, diag.IOLoadFileError, filePos, fmt.Sprintf("cache: %v", err)))
		}
	}
	return res, nil
}

func emit(res *FileResult, opts Options, stage func(pipeline.Stage, func() error) error) error {
	if !opts.Emit {
		return nil
	}
	err := stage(pipeline.StageEncode, func() error {
		var buf bytes.Buffer
		if err := treeio.Encode(&buf, res.Tree, res.Root, opts.EmitFormat); err != nil {
			return err
		}
		res.Annotated = buf.Bytes()
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: encode annotated tree: %w", res.Path, err)
	}
	return nil
}

// ringDump returns the recent trace events of span root when the tracer
// keeps a ring. Events of files checked in parallel are left out.
func ringDump(t trace.Tracer, root uint64) []byte {
	ring := trace.RingOf(t)
	if ring == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := ring.DumpSpan(&buf, trace.FormatText, root); err != nil {
		return nil
	}
	return buf.Bytes()
}

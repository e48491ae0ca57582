package driver

import (
	"runtime"

	"decaf/internal/config"
	"decaf/internal/pipeline"
	"decaf/internal/sema"
	"decaf/internal/treeio"
)

// Options controls one check run. The zero value checks with default
// analysis rules, unlimited diagnostics and no cache.
type Options struct {
	ForCondition   sema.ForCondition
	EntryPoint     string
	MaxDiagnostics int  // 0 = без лимита
	Dedup          bool // collapse repeated diagnostics at one position

	Emit       bool // keep the annotated tree encoded in FileResult.Annotated
	EmitFormat treeio.Format

	Timings  bool
	Cache    *DiskCache
	Jobs     int // CheckDir workers; GOMAXPROCS when <= 0
	Progress pipeline.ProgressSink
}

// OptionsFromConfig maps the [analysis] table onto Options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		ForCondition:   cfg.ForCondition(),
		EntryPoint:     cfg.Analysis.EntryPoint,
		MaxDiagnostics: cfg.Analysis.MaxDiagnostics,
	}
}

func (o Options) progress() pipeline.ProgressSink {
	if o.Progress == nil {
		return pipeline.NopSink{}
	}
	return o.Progress
}

func (o Options) jobs(files int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, files))
}

func (o Options) entryPoint() string {
	if o.EntryPoint == "" {
		return sema.DefaultEntryPoint
	}
	return o.EntryPoint
}

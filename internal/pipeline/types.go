package pipeline

import "time"

// Stage describes a phase of checking one tree file.
type Stage string

const (
	// StageLoad reads the document from disk.
	StageLoad Stage = "load"
	// StageDecode turns the document into a tree.
	StageDecode Stage = "decode"
	// StageAnalyze runs the semantic analyzer.
	StageAnalyze Stage = "analyze"
	// StageEncode writes the annotated tree back.
	StageEncode Stage = "encode"
	// StageCheck covers a whole file or, with an empty File, the whole run.
	StageCheck Stage = "check"
)

// Stages lists per-file stages in execution order.
var Stages = []Stage{StageLoad, StageDecode, StageAnalyze, StageEncode}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished without errors.
	StatusDone Status = "done"
	// StatusCached indicates the result came from the disk cache.
	StatusCached Status = "cached"
	// StatusError indicates the stage failed or the program has errors.
	StatusError Status = "error"
)

// Terminal reports whether no further events follow for the file.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCached || s == StatusError
}

// Event reports progress for a file (or for the overall run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: workers report in parallel.
type ProgressSink interface {
	OnEvent(Event)
}

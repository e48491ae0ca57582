package driver

import (
	"encoding/json"
	"fmt"

	"decaf/internal/diag"
	"decaf/internal/observ"
	"decaf/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic records timings as an info diagnostic whose note
// carries the JSON payload. It bypasses the bag limit.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "file"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s, %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Pos{File: payload.Path}, msg).
		WithNote(source.Pos{}, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(0)
	overflow.Add(entry)
	bag.Merge(overflow)
}

// TimingPayload extracts the JSON payload of an ObsTimings diagnostic.
func TimingPayload(d diag.Diagnostic) (observ.Report, bool) {
	if d.Code != diag.ObsTimings || len(d.Notes) == 0 {
		return observ.Report{}, false
	}
	var payload timingPayload
	if err := json.Unmarshal([]byte(d.Notes[0].Msg), &payload); err != nil {
		return observ.Report{}, false
	}
	return observ.Report{TotalMS: payload.TotalMS, Phases: payload.Phases}, true
}

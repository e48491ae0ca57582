package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-test/deep"

	"decaf/internal/source"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		lvl, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if lvl.String() != strings.ToLower(name) {
			t.Fatalf("round trip %q -> %s", name, lvl)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestShouldEmit(t *testing.T) {
	if LevelError.ShouldEmit(ScopeDriver) {
		t.Fatalf("error level records nothing live")
	}
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeFile) {
		t.Fatalf("phase must emit pass but not file events")
	}
	if !LevelDetail.ShouldEmit(ScopeFile) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatalf("detail must emit file but not node events")
	}
	if !LevelDebug.ShouldEmit(ScopeNode) {
		t.Fatalf("debug must emit node events")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []StorageMode{ModeStream, ModeRing, ModeBoth} {
		got, err := ParseMode(strings.ToUpper(m.String()))
		if err != nil || got != m {
			t.Fatalf("ParseMode(%s) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopePass, "sema", 0)
	At(tr, source.Pos{File: "p.json", Line: 1, Col: 1}, "scope.open", "dropped at detail", span.ID())
	Begin(tr, ScopeFile, "file", span.ID()).End("")
	span.WithExtra("nodes", "12").WithExtra("diags", "0").End("ok")
	if err := tr.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "→ sema") {
		t.Fatalf("unexpected begin line: %q", lines[0])
	}
	if !strings.Contains(lines[3], "← sema (ok) {diags=0, nodes=12}") {
		t.Fatalf("unexpected end line: %q", lines[3])
	}
	if strings.Contains(out, "scope.open") {
		t.Fatalf("node event leaked at detail level")
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	At(tr, source.Pos{File: "p.json", Line: 4, Col: 9}, "fold", "-(5) => -5", 0)
	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid ndjson %q: %v", buf.String(), err)
	}
	want := map[string]any{"name": "fold", "scope": "node", "kind": "point", "pos": "p.json:4:9"}
	for k, v := range want {
		if decoded[k] != v {
			t.Fatalf("%s = %v, want %v (event %v)", k, decoded[k], v, decoded)
		}
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeNode, name, "", 0)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if diff := deep.Equal(names, []string{"c", "d", "e"}); diff != nil {
		t.Fatalf("snapshot order: %v", diff)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatAuto); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
}

func TestRingDumpSpan(t *testing.T) {
	ring := NewRingTracer(32, LevelDebug)
	dir := Begin(ring, ScopeDriver, "check-dir", 0)
	a := BeginFile(ring, "a.json", dir.ID())
	b := BeginFile(ring, "b.json", dir.ID())
	sema := Begin(ring, ScopePass, "sema", a.ID())
	At(ring, source.Pos{File: "a.json", Line: 2, Col: 1}, "fold", "in a", sema.ID())
	At(ring, source.Pos{File: "b.json", Line: 2, Col: 1}, "fold", "in b", b.ID())
	sema.End("")
	a.End("")
	b.End("")
	dir.End("")

	var buf bytes.Buffer
	if err := ring.DumpSpan(&buf, FormatText, a.ID()); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "in a") || strings.Contains(out, "in b") || strings.Contains(out, "check-dir") {
		t.Fatalf("dump of a must hold only a's events:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 5 {
		t.Fatalf("expected 5 events (a begin/end, sema begin/end, fold), got %d:\n%s", got, out)
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(8, LevelPhase)
	multi := NewMultiTracer(LevelPhase, NewStreamTracer(&buf, LevelPhase, FormatText), ring)
	Begin(multi, ScopeDriver, "check", 0).End("")

	if RingOf(multi) != ring || RingOf(ring) != ring || RingOf(Nop) != nil {
		t.Fatalf("RingOf must find the ring tracer")
	}
	if len(ring.Snapshot()) != 2 || strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("both tracers must see begin and end")
	}
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer must be disabled")
	}
	span := Begin(tr, ScopeDriver, "x", 0)
	if span.ID() != 0 || span.End("") != 0 {
		t.Fatalf("nop span must be inert")
	}
}

func TestNewModes(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if RingOf(tr) == nil {
		t.Fatalf("both mode must keep a ring")
	}
	tr, err = New(Config{Level: LevelPhase, Mode: ModeRing})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := tr.(*RingTracer); !ok {
		t.Fatalf("ring mode built %T", tr)
	}
	if _, err := New(Config{Level: LevelPhase}); err == nil {
		t.Fatalf("missing mode must be an error")
	}
}

func TestInFlightAndHeartbeat(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	// файловый спан не пишется на phase, но файл всё равно в полёте
	span := BeginFile(ring, "slow.json", 0)
	if diff := deep.Equal(InFlight(), []string{"slow.json"}); diff != nil {
		t.Fatalf("in flight: %v", diff)
	}

	hb := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	var beat *Event
	for beat == nil && time.Now().Before(deadline) {
		for _, ev := range ring.Snapshot() {
			if ev.Kind == KindHeartbeat {
				beat = &ev
				break
			}
		}
		time.Sleep(time.Millisecond)
	}
	hb.Stop()
	hb.Stop()
	if beat == nil || !strings.Contains(beat.Detail, "in flight: slow.json") {
		t.Fatalf("heartbeat must name the open file, got %+v", beat)
	}

	span.End("")
	if len(InFlight()) != 0 {
		t.Fatalf("file still in flight after End: %v", InFlight())
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat on a disabled tracer must be nil")
	}
}

func TestHeartbeatDetail(t *testing.T) {
	cases := map[string][]string{
		"#1, idle":                nil,
		"#1, in flight: a b":      {"a", "b"},
		"#1, in flight: a b c +2": {"a", "b", "c", "d", "e"},
	}
	for want, files := range cases {
		if got := heartbeatDetail(1, files); got != want {
			t.Fatalf("heartbeatDetail(%v) = %q, want %q", files, got, want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop || CurrentSpan(ctx) != 0 {
		t.Fatalf("expected Nop and no span on an empty context")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx = WithSpan(WithTracer(ctx, ring), 7)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer not propagated")
	}
	if CurrentSpan(ctx) != 7 {
		t.Fatalf("span not propagated")
	}
	// замена трейсера сохраняет спан
	if CurrentSpan(WithTracer(ctx, Nop)) != 7 {
		t.Fatalf("WithTracer dropped the span")
	}
}

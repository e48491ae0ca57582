package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-test/deep"
)

func TestRecorderFinal(t *testing.T) {
	var r Recorder
	boom := errors.New("boom")
	r.OnEvent(Event{File: "a.json", Stage: StageCheck, Status: StatusQueued})
	r.OnEvent(Event{File: "a.json", Stage: StageAnalyze, Status: StatusWorking})
	r.OnEvent(Event{File: "a.json", Stage: StageCheck, Status: StatusDone})
	r.OnEvent(Event{File: "b.json", Stage: StageDecode, Status: StatusError, Err: boom})
	r.OnEvent(Event{Stage: StageCheck, Status: StatusDone})

	if got := len(r.Events()); got != 5 {
		t.Fatalf("expected 5 events, got %d", got)
	}
	final := r.Final()
	want := map[string]Status{"a.json": StatusDone, "b.json": StatusError}
	got := make(map[string]Status, len(final))
	for file, evt := range final {
		got[file] = evt.Status
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("final statuses: %v", diff)
	}
	if !errors.Is(final["b.json"].Err, boom) {
		t.Fatalf("error lost: %v", final["b.json"].Err)
	}
}

func TestContextSinkDoesNotBlockAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan Event) // никто не читает
	sink := ContextSink{Ctx: ctx, Ch: ch}
	cancel()

	done := make(chan struct{})
	go func() {
		sink.OnEvent(Event{File: "x.json", Status: StatusWorking})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("OnEvent blocked after cancellation")
	}
}

func TestTerminal(t *testing.T) {
	for status, want := range map[Status]bool{
		StatusQueued:  false,
		StatusWorking: false,
		StatusDone:    true,
		StatusCached:  true,
		StatusError:   true,
	} {
		if status.Terminal() != want {
			t.Fatalf("%s.Terminal() = %v", status, !want)
		}
	}
}

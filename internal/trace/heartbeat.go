package trace

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Heartbeat periodically emits an event naming the documents still being
// checked. Heartbeats that keep naming the same file point at a hang.
type Heartbeat struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHeartbeat starts emitting to t every interval. It returns nil when
// t is disabled or interval is not positive; Stop on nil is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	go h.run(t, interval)
	return h
}

func (h *Heartbeat) run(t Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for beat := 1; ; beat++ {
		select {
		case <-h.stop:
			return
		case now := <-ticker.C:
			t.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: heartbeatDetail(beat, InFlight()),
			})
		}
	}
}

const heartbeatFiles = 3

func heartbeatDetail(beat int, files []string) string {
	detail := fmt.Sprintf("#%d", beat)
	if len(files) == 0 {
		return detail + ", idle"
	}
	detail += ", in flight: " + strings.Join(files[:min(heartbeatFiles, len(files))], " ")
	if rest := len(files) - heartbeatFiles; rest > 0 {
		detail += fmt.Sprintf(" +%d", rest)
	}
	return detail
}

// Stop ends the heartbeat goroutine and waits for it.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

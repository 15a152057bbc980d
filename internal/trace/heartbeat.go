package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a liveness event every interval. A trace that keeps
// beating with no span ends shows a stage that hangs.
type Heartbeat struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartHeartbeat returns nil when tracing is off or interval is not positive.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	go h.beat(t, interval)
	return h
}

func (h *Heartbeat) beat(t Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	gid := goroutineID()
	for n := 1; ; n++ {
		select {
		case <-h.stop:
			return
		case now := <-ticker.C:
			t.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    gid,
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d", n),
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. It may be called on
// nil and more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

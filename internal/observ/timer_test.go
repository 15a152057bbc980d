package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTimerKeepsPhaseOrder(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("load")
	tm.End(a, "")
	_ = tm.Measure("generate", func() error { return nil })
	err := tm.Measure("write", func() error { return errors.New("disk full") })
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("Measure err = %v", err)
	}

	r := tm.Report()
	if len(r.Phases) != 3 {
		t.Fatalf("phases = %d, want 3", len(r.Phases))
	}
	names := []string{r.Phases[0].Name, r.Phases[1].Name, r.Phases[2].Name}
	if strings.Join(names, ",") != "load,generate,write" {
		t.Fatalf("order = %v", names)
	}
	if r.Phases[2].Note != "disk full" {
		t.Fatalf("note = %q", r.Phases[2].Note)
	}
	if !strings.Contains(tm.Summary(), "// disk full") {
		t.Fatalf("summary lacks the note:\n%s", tm.Summary())
	}
}

func TestEndIgnoresBadIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "x")
	if r := tm.Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("report = %+v", r)
	}
}

func TestReportSumsNamedPhases(t *testing.T) {
	clock := time.Unix(0, 0)
	tm := &Timer{now: func() time.Time {
		clock = clock.Add(5 * time.Millisecond)
		return clock
	}}
	for range 2 {
		_ = tm.Measure("generate", func() error { return nil })
	}
	_ = tm.Measure("write", func() error { return nil })

	r := tm.Report()
	if got := r.Duration("generate"); got != 10*time.Millisecond {
		t.Fatalf("generate = %v, want 10ms", got)
	}
	if r.TotalMS != 15 {
		t.Fatalf("total = %v, want 15", r.TotalMS)
	}
}

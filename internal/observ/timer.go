// Package observ records how long the phases of a generation run take.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one timed step of a unit.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer keeps phases in the order they began. Each unit owns one; it is
// not safe for concurrent use.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer returns an empty Timer.
func NewTimer() *Timer { return &Timer{now: time.Now} }

// Begin opens phase name and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End closes the phase at idx. Unknown indexes are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur, p.Note = t.now().Sub(p.Start), note
}

// Measure times fn as phase name. The error of fn becomes the note.
func (t *Timer) Measure(name string, fn func() error) error {
	idx := t.Begin(name)
	err := fn()
	if err != nil {
		t.End(idx, err.Error())
	} else {
		t.End(idx, "")
	}
	return err
}

// PhaseReport is a phase as written to JSON reports.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the JSON form of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// Report lists every phase and their sum in milliseconds.
func (t *Timer) Report() Report {
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	r.TotalMS = millis(total)
	return r
}

// Duration sums the phases called name.
func (r Report) Duration(name string) time.Duration {
	var ms float64
	for _, p := range r.Phases {
		if p.Name == name {
			ms += p.DurationMS
		}
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// Summary renders the phases as an aligned text table.
func (t *Timer) Summary() string {
	r := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	row := func(name string, ms float64, note string) {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", name, ms)
		if note != "" {
			fmt.Fprintf(&b, "  // %s", note)
		}
		b.WriteByte('\n')
	}
	for _, p := range r.Phases {
		row(p.Name, p.DurationMS, p.Note)
	}
	row("total", r.TotalMS, "")
	return b.String()
}

package main

import (
	"fmt"
	"io"
	"time"

	"tracegen/internal/observ"
	"tracegen/internal/pipeline"
)

var timedStages = []pipeline.Stage{
	pipeline.StageLoad,
	pipeline.StageGenerate,
	pipeline.StageVerify,
	pipeline.StageWrite,
}

// printUnitTimings writes one line per unit with the stages it went
// through, then the slowest unit.
func printUnitTimings(out io.Writer, units []*pipeline.Unit) {
	if out == nil || len(units) == 0 {
		return
	}
	var (
		slowest string
		worst   float64
	)
	for _, u := range units {
		report := u.Timer.Report()
		fmt.Fprintf(out, "%s:", u.Name)
		for _, stage := range timedStages {
			if !hasPhase(report, string(stage)) {
				continue
			}
			fmt.Fprintf(out, " %s %.1f ms", stage, toMillis(report.Duration(string(stage))))
		}
		fmt.Fprintf(out, " (total %.1f ms)\n", report.TotalMS)
		if report.TotalMS > worst {
			slowest, worst = u.Name, report.TotalMS
		}
	}
	if len(units) > 1 {
		fmt.Fprintf(out, "slowest unit: %s %.1f ms\n", slowest, worst)
	}
}

func hasPhase(r observ.Report, name string) bool {
	for _, p := range r.Phases {
		if p.Name == name {
			return true
		}
	}
	return false
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

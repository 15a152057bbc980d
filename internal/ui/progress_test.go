package ui

import (
	"errors"
	"strings"
	"testing"

	"tracegen/internal/pipeline"
)

func TestApplyTracksUnits(t *testing.T) {
	m := NewProgressModel("generating", []string{"gl", "d3d9", "egl"}, nil).(*progressModel)
	m.apply(pipeline.Event{Unit: "gl", Stage: pipeline.StageGenerate, Status: pipeline.StatusWorking})
	m.apply(pipeline.Event{Unit: "d3d9", Stage: pipeline.StageWrite, Status: pipeline.StatusDone})
	m.apply(pipeline.Event{Unit: "unknown", Stage: pipeline.StageLoad, Status: pipeline.StatusError})

	labels := []string{m.rows[0].label(), m.rows[1].label(), m.rows[2].label()}
	if strings.Join(labels, " ") != "generating done queued" {
		t.Fatalf("labels = %v", labels)
	}
	if got := m.fraction(); got < 0.46 || got > 0.47 {
		t.Fatalf("fraction = %v, want 1.4/3", got)
	}
}

func TestViewShowsErrorsAndSummary(t *testing.T) {
	m := NewProgressModel("generating", []string{"gl"}, nil).(*progressModel)
	m.apply(pipeline.Event{Unit: "gl", Stage: pipeline.StageGenerate, Status: pipeline.StatusError, Err: errors.New("description has errors")})
	m.apply(pipeline.Event{Stage: pipeline.StageGenerate, Status: pipeline.StatusError})

	view := m.View()
	for _, want := range []string{"some units failed", "error", "gl", "description has errors"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncateUsesDisplayWidth(t *testing.T) {
	if got := truncate("関数テーブル", 8); got != "関数..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("gl", 8); got != "gl" {
		t.Fatalf("truncate = %q", got)
	}
}

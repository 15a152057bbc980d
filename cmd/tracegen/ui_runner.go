package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tracegen/internal/pipeline"
	"tracegen/internal/project"
	"tracegen/internal/ui"
)

type runOutcome struct {
	result *pipeline.Result
	err    error
}

// runWithUI runs the pipeline in the background while a progress view
// consumes its events.
func runWithUI(ctx context.Context, title string, req *pipeline.Request) (*pipeline.Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing generate request")
	}
	units := make([]string, len(req.Inputs))
	for i, path := range req.Inputs {
		units[i] = project.UnitName(path)
	}
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, &reqCopy)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, units, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"vela/internal/driver"
	"vela/internal/source"
	"vela/internal/ui"
)

type outlineOutcome struct {
	fs      *source.FileSet
	results []driver.UnitResult
	err     error
}

// runOutlineDirWithUI runs the directory pipeline behind a progress board.
// The pipeline goroutine owns the event channel and closes it when done,
// which is what stops the board.
func runOutlineDirWithUI(ctx context.Context, title, dir string, opts driver.Options) (*source.FileSet, []driver.UnitResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan outlineOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := driver.OutlineDir(ctx, dir, optsCopy)
		outcomeCh <- outlineOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	// Юниты появляются на доске по первым событиям, список заранее не нужен.
	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}

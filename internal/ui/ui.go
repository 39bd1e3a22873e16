// Package ui implements a live command-line view of a directory watch
// using [tea].
package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/rawsys/internal/watch"
)

type statsProvider interface {
	Stats() watch.Stats
}

// EventMsg is a rendered watch record. It is typed for identification as
// [tea.Msg] within a [tea.Program].
type EventMsg string

// Handler is the principal implementation of a user interface [Handler].
type Handler struct {
	stats   statsProvider
	program *tea.Program

	LogWriter *TeaLogWriter

	Initialized atomic.Bool
	Ready       atomic.Bool
	Failed      atomic.Bool
}

// NewHandler returns a pointer to a new user interface [Handler] showing
// the counters of stats and keeping the last history events.
func NewHandler(ctx context.Context, cancel context.CancelFunc, stats statsProvider, history int) *Handler {
	handler := &Handler{
		stats: stats,
	}

	model := NewTeaModel(handler, cancel, history)
	handler.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler
}

// Launch starts the command-line user interface (the [tea.Program]).
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogWriter.Stop()

	if _, err := uiHandler.program.Run(); err != nil {
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}

// Event shows a watch record in the event panel.
func (uiHandler *Handler) Event(r watch.Record) {
	uiHandler.program.Send(EventMsg(r.Time.Format("15:04:05.000") + " " + r.String()))
}

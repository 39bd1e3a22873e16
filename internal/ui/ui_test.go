package ui

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/rawsys/internal/watch"
	"github.com/stretchr/testify/assert"
)

// fakeStats counts up on every call, as a live watcher would.
type fakeStats struct {
	calls atomic.Uint64
}

func (f *fakeStats) Stats() watch.Stats {
	n := f.calls.Add(1)

	return watch.Stats{
		Backend:   "raw",
		Watches:   3,
		Events:    n * 10,
		Reads:     n,
		Bytes:     n * 480,
		LastFill:  480,
		BufferCap: 65536,
		Overflows: 1,
		ByKind: map[string]uint64{
			"IN_CREATE":      n * 4,
			"IN_CLOSE_WRITE": n * 4,
			"IN_DELETE":      n * 2,
		},
		StartTime: time.Now(),
		LastEvent: time.Now(),
	}
}

func newTestHandler(ctx context.Context, cancel context.CancelFunc, buf *bytes.Buffer) (*Handler, *tea.Program) {
	var in bytes.Buffer

	handler := &Handler{stats: &fakeStats{}}
	model := NewTeaModel(handler, cancel, 50)
	program := tea.NewProgram(model, tea.WithInput(&in), tea.WithOutput(buf), tea.WithAltScreen(), tea.WithContext(ctx))

	handler.program = program
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler, program
}

// TestTeaUI is an integration test for the command-line user interface.
func TestTeaUI(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	handler, program := newTestHandler(ctx, cancel, &buf)

	go func() {
		// Simulate events, fast-paced logs and key presses for the UI.
		for {
			time.Sleep(time.Millisecond)
			if handler.Initialized.Load() {
				program.Send(tea.WindowSizeMsg{Width: 200, Height: 200})
				time.Sleep(time.Millisecond)

				program.Send(LogMsg("log1"))
				time.Sleep(time.Millisecond)

				_, _ = handler.LogWriter.Write([]byte("log2"))
				time.Sleep(time.Millisecond)

				for range 150 {
					program.Send(EventMsg("IN_CREATE /tmp/spam"))
				}
				program.Send(EventMsg("IN_DELETE /tmp/last"))
				time.Sleep(time.Millisecond)

				program.Send(tea.WindowSizeMsg{Width: 200, Height: 250})

				time.Sleep(time.Second)
				program.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

				return
			}
			if handler.Failed.Load() {
				return
			}
		}
	}()

	if err := handler.Launch(); err != nil {
		t.Fatalf("Expected nil, got %v", err)
	}

	if buf.Len() == 0 {
		t.Fatal("UI generated no output at all")
	}

	by := buf.Bytes()

	if !bytes.Contains(by, []byte("log1")) {
		t.Fatal("UI did not show the first log message sent (via program.Send)")
	}

	if !bytes.Contains(by, []byte("log2")) {
		t.Fatal("UI did not show the second log message sent (via LogWriter)")
	}

	if !bytes.Contains(by, []byte("/tmp/last")) {
		t.Fatal("UI did not show the last event.")
	}

	if !bytes.Contains(by, []byte("IN_CLOSE_WRITE")) {
		t.Fatal("UI did not update the event kinds panel.")
	}

	if !bytes.Contains(by, []byte("overflowed")) {
		t.Fatal("UI did not warn about the queue overflow.")
	}
}

// TestTeaUI_Ctrl_C is an integration test for the command-line user interface.
// A Ctrl+C keypress is simulated, which should trigger upstream Context
// cancellation for signalling application teardown.
func TestTeaUI_Ctrl_C(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	handler, program := newTestHandler(ctx, cancel, &buf)

	go func() {
		for {
			time.Sleep(time.Millisecond)
			if handler.Initialized.Load() {
				program.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

				return
			}
			if handler.Failed.Load() {
				return
			}
		}
	}()

	err := handler.Launch()

	if err == nil {
		t.Fatalf("Expected %v, got nil", context.Canceled)
	}

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected %v, got %v", context.Canceled, err)
	}

	if buf.Len() == 0 {
		t.Fatal("UI generated no output at all")
	}
}

func TestAppendCapped_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		lines []string
		limit int
		want  []string
	}{
		{"Success_BelowLimit", []string{"a"}, 3, []string{"a", "x"}},
		{"Success_AtLimit", []string{"a", "b", "c"}, 3, []string{"b", "c", "x"}},
		{"Success_OverLimit", []string{"a", "b", "c", "d"}, 2, []string{"d", "x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, appendCapped(tc.lines, "x", tc.limit))
		})
	}
}

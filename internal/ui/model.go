package ui

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/rawsys/internal/watch"
	"github.com/dustin/go-humanize"
)

const (
	maxLogLines = 100
	topKinds    = 5
)

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for a panel's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for a panel's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// infoStyle defines the style for a panel's text.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// warnStyle highlights dropped events.
	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87"))

	// helpStyle defines the style for the help panel's text.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// WatchStatsMsg is a [tea.Msg] containing [watch.Stats] information.
type WatchStatsMsg struct {
	t     time.Time
	stats watch.Stats
}

// TeaModel is the principal [tea.Model] for the command-line user interface.
type TeaModel struct {
	width  int
	height int

	cancel context.CancelFunc

	uiHandler *Handler

	fullWidthWithBorders int
	halfWidthWithBorders int

	stats     watch.Stats
	statsTime time.Time
	prevStats watch.Stats
	prevTime  time.Time
	rate      float64

	fillProgress   progress.Model
	eventsViewport viewport.Model
	logsViewport   viewport.Model
	events         []string
	logs           []string
	history        int

	ready bool
}

// NewTeaModel returns an initial new [TeaModel] keeping the last history
// events.
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, cancel context.CancelFunc, history int) TeaModel {
	if history <= 0 {
		history = 500
	}

	fillProgress := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(80),
	)

	return TeaModel{
		uiHandler:      uiHandler,
		fillProgress:   fillProgress,
		eventsViewport: viewport.New(80, 20),
		logsViewport:   viewport.New(80, 10),
		events:         make([]string, 0, history),
		logs:           make([]string, 0, maxLogLines),
		history:        history,
		cancel:         cancel,
		ready:          false,
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	m.uiHandler.Initialized.Store(true)

	return tea.Batch(
		tea.EnterAltScreen,
		updateWatchStats(m.uiHandler.stats),
	)
}

// updateWatchStats produces a [tea.Cmd] for later scheduling in a
// [tea.Program]. When executed, a [WatchStatsMsg] with the current
// [watch.Stats] is returned.
func updateWatchStats(s statsProvider) tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { //nolint:mnd
		return WatchStatsMsg{
			t:     t,
			stats: s.Stats(),
		}
	})
}

// Update is the principal message handling method of the model.
// It sets the internal state of the model, for later rendering.
//
//nolint:mnd,funlen,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.fullWidthWithBorders = m.width - 2
		m.halfWidthWithBorders = (m.width / 2) - 2

		m.fillProgress.Width = m.halfWidthWithBorders

		// Stats panels take about a third of the height, logs a fifth.
		upperHeight := m.height / 3
		logsHeight := m.height / 5
		eventsHeight := m.height - upperHeight - logsHeight

		// Viewport heights: sections minus borders and title.
		m.eventsViewport.Width = m.fullWidthWithBorders
		m.eventsViewport.Height = max(eventsHeight-3, 1)
		m.logsViewport.Width = m.fullWidthWithBorders
		m.logsViewport.Height = max(logsHeight-3, 1)

		m.eventsViewport = renderLines(m.eventsViewport, m.events)
		m.logsViewport = renderLines(m.logsViewport, m.logs)

		if !m.ready {
			m.ready = true
			m.uiHandler.Ready.Store(true)
		}

	case WatchStatsMsg:
		m.prevStats, m.prevTime = m.stats, m.statsTime
		m.stats, m.statsTime = msg.stats, msg.t

		if !m.prevTime.IsZero() {
			if elapsed := m.statsTime.Sub(m.prevTime).Seconds(); elapsed > 0 {
				m.rate = float64(m.stats.Events-m.prevStats.Events) / elapsed
			}
		}

		var fill float64
		if m.stats.BufferCap > 0 {
			fill = float64(m.stats.LastFill) / float64(m.stats.BufferCap)
		}
		cmds = append(cmds, m.fillProgress.SetPercent(fill))

		// Queue the next update.
		cmds = append(cmds, updateWatchStats(m.uiHandler.stats))

	case EventMsg:
		m.events = appendCapped(m.events, string(msg), m.history)
		m.eventsViewport = renderLines(m.eventsViewport, m.events)

	case LogMsg:
		m.logs = appendCapped(m.logs, strings.TrimSuffix(string(msg), "\n"), maxLogLines)
		m.logsViewport = renderLines(m.logsViewport, m.logs)

	case progress.FrameMsg:
		updatedFill, cmd := m.fillProgress.Update(msg)
		if progressModel, ok := updatedFill.(progress.Model); ok {
			m.fillProgress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	// Handle viewport updates.
	m.eventsViewport, cmd = m.eventsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func appendCapped(lines []string, line string, limit int) []string {
	if len(lines) >= limit {
		lines = lines[len(lines)-limit+1:]
	}

	return append(lines, line)
}

func renderLines(vp viewport.Model, lines []string) viewport.Model {
	if len(lines) == 0 {
		return vp
	}

	vp.SetContent(lipgloss.NewStyle().
		Width(vp.Width).
		Render(strings.Join(lines, "\n")))
	vp.GotoBottom()

	return vp
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the GUI..."
	}

	statsSection := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(m.halfWidthWithBorders).Render(m.formatStatsView()),
		borderStyle.Width(m.halfWidthWithBorders).Render(m.formatKindsView()),
	)

	eventsSection := m.formatViewportSection("Events", m.eventsViewport)
	logsSection := m.formatViewportSection("Process Information", m.logsViewport)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("q: quit gui • ctrl+c: quit program • ↑/↓: scroll events")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		statsSection,
		eventsSection,
		logsSection,
		helpSection,
	)
}

func (m TeaModel) formatViewportSection(title string, vp viewport.Model) string {
	return borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render(title),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(vp.View()),
			),
		)
}

// formatStatsView is a helper function for rendering the counters panel.
func (m TeaModel) formatStatsView() string {
	s := m.stats

	lastEvent := "never"
	if !s.LastEvent.IsZero() {
		lastEvent = humanize.Time(s.LastEvent)
	}

	var perRead float64
	if s.Reads > 0 {
		perRead = float64(s.Events) / float64(s.Reads)
	}

	details := fmt.Sprintf(
		"Backend: %s, Watches: %s\n"+
			"Events: %s (%.1f/s), Reads: %s (%.1f events/read)\n"+
			"Read: %s, Buffer: %s, Last fill: %s\n"+
			"Started: %s, Last event: %s\n",
		s.Backend,
		humanize.Comma(int64(s.Watches)),
		humanize.Comma(int64(s.Events)), //nolint:gosec
		m.rate,
		humanize.Comma(int64(s.Reads)), //nolint:gosec
		perRead,
		humanize.IBytes(s.Bytes),
		humanize.IBytes(uint64(s.BufferCap)), //nolint:gosec
		humanize.IBytes(uint64(s.LastFill)),  //nolint:gosec
		s.StartTime.Format("15:04:05"),
		lastEvent,
	)

	parts := []string{
		titleStyle.Width(m.halfWidthWithBorders).Render("Watch"),
		"", // Empty line for spacing.
		m.fillProgress.View(),
		"", // Empty line for spacing.
		infoStyle.Width(m.halfWidthWithBorders).Render(details),
	}

	if s.Overflows > 0 {
		parts = append(parts, warnStyle.Render(
			fmt.Sprintf("Queue overflowed %s times, events were lost", humanize.Comma(int64(s.Overflows))), //nolint:gosec
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// formatKindsView is a helper function for rendering the most frequent
// event kinds.
func (m TeaModel) formatKindsView() string {
	kinds := slices.SortedFunc(maps.Keys(m.stats.ByKind), func(a, b string) int {
		if d := int(m.stats.ByKind[b]) - int(m.stats.ByKind[a]); d != 0 { //nolint:gosec
			return d
		}

		return strings.Compare(a, b)
	})

	var details strings.Builder
	for i, kind := range kinds {
		if i == topKinds {
			fmt.Fprintf(&details, "... and %d more\n", len(kinds)-topKinds)

			break
		}
		fmt.Fprintf(&details, "%-24s %s\n", kind, humanize.Comma(int64(m.stats.ByKind[kind]))) //nolint:gosec
	}

	if len(kinds) == 0 {
		details.WriteString("No events yet.\n")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.halfWidthWithBorders).Render("Event Kinds"),
		"", // Empty line for spacing.
		infoStyle.Width(m.halfWidthWithBorders).Render(details.String()),
	)
}

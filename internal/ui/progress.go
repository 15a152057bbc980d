// Package ui renders pipeline progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tracegen/internal/pipeline"
)

// stageVerbs label a unit while a stage is working on it.
var stageVerbs = map[pipeline.Stage]string{
	pipeline.StageLoad:     "loading",
	pipeline.StageGenerate: "generating",
	pipeline.StageVerify:   "verifying",
	pipeline.StageWrite:    "writing",
}

// stageWeights are the share of a unit counted as finished once a stage
// starts.
var stageWeights = map[pipeline.Stage]float64{
	pipeline.StageLoad:     0.1,
	pipeline.StageGenerate: 0.4,
	pipeline.StageVerify:   0.7,
	pipeline.StageWrite:    0.9,
}

const statusWidth = 12

type palette struct {
	title, queued, working, done, failed, dim lipgloss.Style
}

func newPalette() palette {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return palette{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		queued:  fg("7"),
		working: fg("6"),
		done:    fg("2"),
		failed:  fg("1"),
		dim:     fg("8"),
	}
}

type unitRow struct {
	name    string
	stage   pipeline.Stage
	status  pipeline.Status
	elapsed time.Duration
	err     error
}

func (r *unitRow) finished() bool {
	return r.status == pipeline.StatusDone || r.status == pipeline.StatusError
}

func (r *unitRow) label() string {
	switch r.status {
	case pipeline.StatusWorking:
		return stageVerbs[r.stage]
	case pipeline.StatusDone:
		return "done"
	case pipeline.StatusError:
		return "error"
	default:
		return "queued"
	}
}

func (r *unitRow) weight() float64 {
	if r.finished() {
		return 1
	}
	if r.status == pipeline.StatusWorking {
		return stageWeights[r.stage]
	}
	return 0
}

func (r *unitRow) render(p palette, width int) string {
	style := p.working
	switch r.status {
	case pipeline.StatusQueued:
		style = p.queued
	case pipeline.StatusDone:
		style = p.done
	case pipeline.StatusError:
		style = p.failed
	}
	line := fmt.Sprintf("  %s %s", style.Render(fmt.Sprintf("%*s", statusWidth, r.label())), truncate(r.name, width))
	switch {
	case r.err != nil:
		line += p.failed.Render("  " + r.err.Error())
	case r.finished() && r.elapsed > 0:
		line += p.dim.Render(fmt.Sprintf("  %s", r.elapsed.Round(time.Millisecond)))
	}
	return line
}

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	bar     progress.Model
	palette palette
	rows    []*unitRow
	byName  map[string]*unitRow
	summary string
	width   int
	closed  bool
}

type eventMsg pipeline.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows one row per unit
// until events is closed.
func NewProgressModel(title string, units []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		palette: newPalette(),
		byName:  make(map[string]*unitRow, len(units)),
		width:   80,
	}
	for _, name := range units {
		row := &unitRow{name: name, status: pipeline.StatusQueued}
		m.rows = append(m.rows, row)
		m.byName[name] = row
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for one pipeline event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(pipeline.Event(msg)), m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// apply records ev and returns the bar animation. Run-level events carry an
// empty unit name and set the summary.
func (m *progressModel) apply(ev pipeline.Event) tea.Cmd {
	if ev.Unit == "" {
		switch ev.Status {
		case pipeline.StatusDone:
			m.summary = "all units generated"
		case pipeline.StatusError:
			m.summary = "some units failed"
		}
		return nil
	}
	row, ok := m.byName[ev.Unit]
	if !ok {
		return nil
	}
	row.stage, row.status, row.err = ev.Stage, ev.Status, ev.Err
	if ev.Elapsed > 0 {
		row.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, row := range m.rows {
		sum += row.weight()
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	header := m.title
	if m.summary != "" {
		header += ": " + m.summary
	}
	if !m.closed {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(m.palette.title.Render(header))
	b.WriteString("\n\n")
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, row := range m.rows {
		b.WriteString(row.render(m.palette, nameWidth))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if m.closed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// truncate shortens value to width display cells, ending in "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

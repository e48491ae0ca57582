package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"decaf/internal/pipeline"
)

type progressModel struct {
	title    string
	events   <-chan pipeline.Event
	spinner  spinner.Model
	prog     progress.Model
	items    []fileItem
	index    map[string]int
	finished int
	failed   int
	width    int
	done     bool
}

type fileItem struct {
	path     string
	status   string
	fraction float64 // of the file's work, for the bar
	final    bool
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-file check
// progress. It quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

// Run shows the model on out until events is closed.
func Run(out io.Writer, title string, files []string, events <-chan pipeline.Event) error {
	p := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(out), tea.WithInput(nil))
	_, err := p.Run()
	return err
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(pipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := fmt.Sprintf("%s %d/%d", m.title, m.finished, len(m.items))
	if m.failed > 0 {
		header += fmt.Sprintf(", %d failed", m.failed)
	}
	bar := m.prog.View()
	if m.done {
		header, bar = "done: "+header, m.prog.ViewAs(1)
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(header) + "\n\n")
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.items {
		label := fmt.Sprintf("%*s", statusWidth, item.status)
		fmt.Fprintf(&b, "  %s %s\n", statusStyle(item.status).Render(label), truncate(item.path, nameWidth))
	}
	b.WriteString("\n" + bar + "\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) applyEvent(ev pipeline.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok || m.items[idx].final {
		return nil
	}
	item := &m.items[idx]
	// промежуточный error стадии ещё не конец файла
	if ev.Stage == pipeline.StageCheck && ev.Status.Terminal() {
		item.final, item.fraction = true, 1
		m.finished++
		if ev.Status == pipeline.StatusError {
			m.failed++
		}
	}
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		item.status = label
		if !item.final {
			item.fraction = stages[ev.Stage].fraction
		}
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range m.items {
		sum += item.fraction
	}
	return sum / float64(len(m.items))
}

// stages: the working label of each stage and the share of a file's work
// done once it starts.
var stages = map[pipeline.Stage]struct {
	label    string
	fraction float64
}{
	pipeline.StageLoad:    {"loading", 0.1},
	pipeline.StageDecode:  {"decoding", 0.3},
	pipeline.StageAnalyze: {"analyzing", 0.6},
	pipeline.StageEncode:  {"encoding", 0.9},
}

func statusLabel(stage pipeline.Stage, status pipeline.Status) string {
	switch status {
	case pipeline.StatusWorking:
		return stages[stage].label
	case pipeline.StatusDone:
		if stage != pipeline.StageCheck {
			return ""
		}
		return "ok"
	case pipeline.StatusQueued, pipeline.StatusCached, pipeline.StatusError:
		return string(status)
	}
	return ""
}

const statusWidth = 12

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	statusColor = map[string]lipgloss.Color{
		"ok": "2", "cached": "2", "error": "1",
		"loading": "6", "decoding": "6", "analyzing": "6", "encoding": "6",
	}
)

func statusStyle(status string) lipgloss.Style {
	color, ok := statusColor[status]
	if !ok {
		color = "7"
	}
	return lipgloss.NewStyle().Foreground(color)
}

// truncate cuts value to width terminal cells, marking the cut with "...".
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

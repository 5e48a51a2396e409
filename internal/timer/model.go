package timer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pomolit/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(1, 2)

	breakTitleStyle = titleStyle.
			Foreground(lipgloss.Color("42"))

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(0, 2)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 2)

	awardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true).
			Padding(0, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Padding(0, 2)
)

// Finisher records an interval once it ends. *Completer implements it.
type Finisher interface {
	Finish(ctx context.Context, in Interval, completed bool) (Result, error)
}

type KeyMap struct {
	Pause key.Binding
	Skip  key.Binding
	Next  key.Binding
	Quit  key.Binding
	Help  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Pause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "pause/resume"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Next: key.NewBinding(
			key.WithKeys("enter", "n"),
			key.WithHelp("enter", "next interval"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

type state int

const (
	stateRunning state = iota
	stateSaving
	stateFinished
)

type finishedMsg struct {
	result Result
	err    error
}

// Model is the countdown screen. Each interval is recorded through the
// Finisher when it times out or is skipped. Quitting mid-interval discards it.
type Model struct {
	ctx       context.Context
	plan      Plan
	finisher  Finisher
	taskID    string
	taskTitle string
	now       func() time.Time

	interval      Interval
	timer         timer.Model
	progress      progress.Model
	help          help.Model
	keys          KeyMap
	state         state
	completedWork int
	last          *Result
	err           error
	quitAfterSave bool
	quitting      bool
	width         int
}

// New builds a model that starts with a work interval for taskID. taskID may be empty.
func New(plan Plan, finisher Finisher, taskID, taskTitle string) Model {
	m := Model{
		ctx:       context.Background(),
		plan:      plan,
		finisher:  finisher,
		taskID:    taskID,
		taskTitle: taskTitle,
		now:       time.Now,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:      help.New(),
		keys:      DefaultKeyMap(),
	}
	m.begin(models.SessionWork)
	return m
}

// WithContext sets the context each interval is recorded under.
func (m Model) WithContext(ctx context.Context) Model {
	m.ctx = ctx
	return m
}

func (m *Model) begin(t models.SessionType) {
	m.interval = m.plan.NewInterval(t, m.taskID, m.now())
	m.timer = timer.NewWithInterval(m.interval.Length, time.Second)
	m.state = stateRunning
	m.err = nil
}

func (m Model) Init() tea.Cmd {
	return m.timer.Init()
}

func (m Model) finish(completed bool) (Model, tea.Cmd) {
	m.state = stateSaving
	in := m.interval
	in.Elapsed = in.Length - m.timer.Timeout
	finisher, ctx := m.finisher, m.ctx
	stop := m.timer.Stop()
	return m, tea.Batch(stop, func() tea.Msg {
		res, err := finisher.Finish(ctx, in, completed)
		return finishedMsg{result: res, err: err}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, min(msg.Width-8, 60))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit) && m.state == stateSaving:
			m.quitAfterSave = true
			return m, nil
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Pause) && m.state == stateRunning:
			return m, m.timer.Toggle()
		case key.Matches(msg, m.keys.Skip) && m.state == stateRunning:
			return m.finish(false)
		case key.Matches(msg, m.keys.Next) && m.state == stateFinished:
			m.begin(m.plan.Next(m.interval.Type, m.completedWork))
			return m, m.timer.Init()
		}
		return m, nil

	case timer.TimeoutMsg:
		if msg.ID != m.timer.ID() || m.state != stateRunning {
			return m, nil
		}
		m.timer.Timeout = 0
		return m.finish(true)

	case finishedMsg:
		m.state = stateFinished
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.last = &msg.result
			if msg.result.Session.IsWork() && msg.result.Session.Completed {
				m.completedWork++
			}
		}
		if m.quitAfterSave {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.timer, cmd = m.timer.Update(msg)
	return m, cmd
}

func (m Model) fraction() float64 {
	if m.interval.Length <= 0 {
		return 1
	}
	done := float64(m.interval.Length-m.timer.Timeout) / float64(m.interval.Length)
	return max(0, min(1, done))
}

func label(t models.SessionType) string {
	switch t {
	case models.SessionShortBreak:
		return "Short break"
	case models.SessionLongBreak:
		return "Long break"
	}
	return "Focus"
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := titleStyle
	if m.interval.Type.IsBreak() {
		title = breakTitleStyle
	}

	var b strings.Builder
	b.WriteString(title.Render(fmt.Sprintf("%s · #%d", label(m.interval.Type), m.completedWork+1)))
	b.WriteString("\n")
	if m.taskTitle != "" && !m.interval.Type.IsBreak() {
		b.WriteString(taskStyle.Render(m.taskTitle))
		b.WriteString("\n")
	}

	switch m.state {
	case stateRunning:
		status := formatClock(m.timer.Timeout)
		if !m.timer.Running() {
			status += " (paused)"
		}
		b.WriteString(clockStyle.Render(status))
		b.WriteString("\n  ")
		b.WriteString(m.progress.ViewAs(m.fraction()))
		b.WriteString("\n")
	case stateSaving:
		status := "Saving…"
		if m.quitAfterSave {
			status += " (will quit when done)"
		}
		b.WriteString(clockStyle.Render(status))
		b.WriteString("\n")
	case stateFinished:
		if m.err != nil {
			b.WriteString(errorStyle.Render("Failed to save: " + m.err.Error()))
			b.WriteString("\n")
		} else if m.last != nil {
			verb := "Completed"
			if !m.last.Session.Completed {
				verb = "Skipped"
			}
			b.WriteString(clockStyle.Render(fmt.Sprintf("%s after %s", verb, formatClock(time.Duration(m.last.Session.DurationSeconds)*time.Second))))
			b.WriteString("\n")
			for _, a := range m.last.Awards {
				b.WriteString(awardStyle.Render(fmt.Sprintf("★ %s: %s", a.Badge.Name, a.To)))
				b.WriteString("\n")
			}
		}
		next := m.plan.Next(m.interval.Type, m.completedWork)
		b.WriteString(taskStyle.Render("Up next: " + label(next)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m))
	return b.String()
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case stateFinished:
		return []key.Binding{m.keys.Next, m.keys.Quit, m.keys.Help}
	case stateSaving:
		return []key.Binding{m.keys.Quit}
	}
	return []key.Binding{m.keys.Pause, m.keys.Skip, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Pause, m.keys.Skip, m.keys.Next},
		{m.keys.Quit, m.keys.Help},
	}
}

// CompletedWork is the number of work intervals completed in this run.
func (m Model) CompletedWork() int {
	return m.completedWork
}

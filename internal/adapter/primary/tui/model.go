// Package tui renders the published timer state in the terminal. It never
// mutates the session: it reads the shared state file and recomputes progress
// against its own clock.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pomotimer/internal/domain"
)

const refreshInterval = time.Second

// Source is where the model reads the published state from.
type Source interface {
	Read() (domain.PublishedState, bool, error)
}

type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "終了"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "再読込"),
	),
}

type (
	refreshTickMsg struct{}
	stateChangedMsg struct{}
	stateLoadedMsg struct {
		state domain.PublishedState
		found bool
		err   error
	}
)

// Model is the bubbletea model behind `pomotimer watch`.
type Model struct {
	source  Source
	changes <-chan struct{}
	now     func() time.Time

	state domain.PublishedState
	found bool
	err   error

	bar progress.Model
}

// New creates a model. changes may be nil, in which case the view only
// refreshes on its own timer.
func New(source Source, changes <-chan struct{}, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	return Model{
		source:  source,
		changes: changes,
		now:     now,
		bar:     progress.New(progress.WithoutPercentage(), progress.WithWidth(40)),
	}
}

// Init loads the state and starts both refresh sources.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), refreshTick(), m.waitForChange())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		state, found, err := m.source.Read()
		return stateLoadedMsg{state: state, found: found, err: err}
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// Update handles messages and returns the updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			return m, m.load()
		}
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(60, msg.Width-4))
	case refreshTickMsg:
		// Progress is recomputed in View; the tick only forces a redraw.
		return m, refreshTick()
	case stateChangedMsg:
		return m, tea.Batch(m.load(), m.waitForChange())
	case stateLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.state, m.found = msg.state, msg.found
		}
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	clockStyle = lipgloss.NewStyle().Bold(true).Padding(1, 0)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// modeColors maps the published color names to terminal colors.
var modeColors = map[string]lipgloss.Color{
	"red":   lipgloss.Color("#d9534f"),
	"green": lipgloss.Color("#5cb85c"),
	"blue":  lipgloss.Color("#0275d8"),
}

// View renders the state as of the model's clock.
func (m Model) View() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(errorStyle.Render("状態を読み込めません: "+m.err.Error()) + "\n\n")
	}
	if !m.found {
		b.WriteString(dimStyle.Render("タイマーはまだ起動していません。") + "\n\n")
		b.WriteString(dimStyle.Render(helpLine()) + "\n")
		return b.String()
	}

	timer := m.state.Timer()
	now := m.now()
	color, ok := modeColors[m.state.ModeColorName]
	if !ok {
		color = lipgloss.Color("7")
	}

	b.WriteString(titleStyle.Foreground(color).Render(m.state.ModeName))
	b.WriteString(dimStyle.Render(" (" + StatusLabel(m.state.Status) + ")"))
	b.WriteString("\n")
	b.WriteString(clockStyle.Render(FormatClock(timer.DisplayRemaining(now))))
	b.WriteString("\n")

	bar := m.bar
	bar.FullColor = string(color)
	b.WriteString(bar.ViewAs(timer.FractionCompleted(now)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "セッション: %d / %d\n\n", m.state.SessionCount, m.state.TotalSessions)
	b.WriteString(dimStyle.Render(helpLine()) + "\n")
	return b.String()
}

func helpLine() string {
	parts := []string{}
	for _, binding := range []key.Binding{keys.Quit, keys.Refresh} {
		help := binding.Help()
		parts = append(parts, help.Key+": "+help.Desc)
	}
	return strings.Join(parts, "  ")
}

// StatusLabel is the short Japanese label for a status.
func StatusLabel(status domain.Status) string {
	switch status {
	case domain.StatusFocus:
		return "集中"
	case domain.StatusBreak:
		return "休憩"
	case domain.StatusPaused:
		return "一時停止"
	default:
		return "待機"
	}
}

// FormatClock renders a countdown as MM:SS, rounding partial seconds up so
// the display reaches 00:00 only at completion.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/resource-guard/handle"
	"github.com/wippyai/resource-guard/shared"
	"github.com/wippyai/resource-guard/track"
	"github.com/wippyai/resource-guard/watcher"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	aliveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	panelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateTable modelState = iota
	stateOpenInput
)

// slot is one handle the user created through the TUI. Handles stay listed
// after they are emptied so transfers are visible as state changes.
type slot struct {
	file  *handle.File
	label string
}

type interactiveModel struct {
	err      error
	reg      *track.Registry
	watch    *watcher.Watcher
	cfgView  shared.View[watcher.Config]
	input    textinput.Model
	slots    []*slot
	events   *eventLog
	lastRead string
	selected int
	nextID   int
	state    modelState
}

// eventLog collects registry notifications. The watcher goroutine never
// touches the registry, but the log still locks so a future async source
// cannot corrupt it.
type eventLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *eventLog) OnHandleEvent(e track.Event) {
	var line string
	switch e.Type {
	case track.EventOpened:
		line = fmt.Sprintf("opened %s (fd %d)", e.Name, e.Desc)
	case track.EventTransferred:
		line = fmt.Sprintf("transferred %s", e.Name)
	case track.EventDetached:
		line = fmt.Sprintf("detached %s", e.Name)
	case track.EventReleased:
		line = fmt.Sprintf("released %s", e.Name)
	case track.EventReleaseFailed:
		line = fmt.Sprintf("release of %s failed: %v", e.Name, e.Err)
	}

	l.mu.Lock()
	l.lines = append(l.lines, line)
	if len(l.lines) > 6 {
		l.lines = l.lines[len(l.lines)-6:]
	}
	l.mu.Unlock()
}

func (l *eventLog) tail() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newInteractiveModel(filePath, configPath string) (*interactiveModel, error) {
	reg := track.NewRegistry()
	handle.SetRegistry(reg)

	events := &eventLog{}
	reg.Subscribe(events)

	m := &interactiveModel{
		reg:    reg,
		events: events,
		state:  stateTable,
	}

	ti := textinput.New()
	ti.Prompt = "path: "
	ti.Width = 48
	m.input = ti

	if configPath != "" {
		w, err := watcher.New(configPath)
		if err != nil {
			return nil, err
		}
		m.watch = w
		m.cfgView = w.Config()
	}

	if err := m.open(filePath); err != nil {
		m.shutdown()
		return nil, err
	}
	return m, nil
}

func (m *interactiveModel) Init() tea.Cmd {
	return tick()
}

func (m *interactiveModel) open(path string) error {
	f, err := handle.Open(path)
	if err != nil {
		return err
	}
	m.nextID++
	m.slots = append(m.slots, &slot{file: f, label: fmt.Sprintf("h%d", m.nextID)})
	m.selected = len(m.slots) - 1
	return nil
}

func (m *interactiveModel) shutdown() {
	for _, s := range m.slots {
		_ = s.file.Close()
	}
	if m.watch != nil {
		_ = m.watch.Close()
	}
	_ = m.reg.Close()
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateOpenInput {
			switch msg.String() {
			case "enter":
				path := strings.TrimSpace(m.input.Value())
				m.state = stateTable
				if path != "" {
					m.err = m.open(path)
				}
			case "esc":
				m.state = stateTable
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.shutdown()
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.slots)-1 {
				m.selected++
			}

		case "o":
			m.input.SetValue("")
			m.input.Focus()
			m.err = nil
			m.state = stateOpenInput

		case "t":
			if s := m.current(); s != nil {
				m.nextID++
				m.slots = append(m.slots, &slot{
					file:  handle.Transfer(s.file),
					label: fmt.Sprintf("h%d", m.nextID),
				})
				m.selected = len(m.slots) - 1
			}

		case "r":
			if s := m.current(); s != nil {
				chunk := s.file.ReadChunk(64)
				if len(chunk) == 0 {
					m.lastRead = fmt.Sprintf("%s: empty read", s.label)
				} else {
					m.lastRead = fmt.Sprintf("%s: %d bytes: %q", s.label, len(chunk), preview(chunk))
				}
			}

		case "c":
			if s := m.current(); s != nil {
				m.err = s.file.Close()
			}
		}

	case tickMsg:
		return m, tick()
	}

	return m, nil
}

func (m *interactiveModel) current() *slot {
	if m.selected < 0 || m.selected >= len(m.slots) {
		return nil
	}
	return m.slots[m.selected]
}

func preview(b []byte) string {
	const max = 32
	s := string(b)
	if len(s) > max {
		s = s[:max] + "…"
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		return r
	}, s)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Resource Guard"))
	b.WriteString("\n\n")

	if m.state == stateOpenInput {
		b.WriteString("Open a file:\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter open • esc back"))
		return b.String()
	}

	b.WriteString("Handles:\n")
	for i, s := range m.slots {
		line := m.formatSlot(s)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n%s\n", panelStyle.Render(
		fmt.Sprintf("registry: %d live resource(s)", m.reg.Len()))))

	if m.cfgView.Valid() {
		cfg := m.cfgView.Load()
		b.WriteString(panelStyle.Render(
			fmt.Sprintf("config: %s:%d%s (live view)", cfg.Hostname, cfg.Port, cfg.URL)))
		b.WriteString("\n")
	}

	if m.lastRead != "" {
		b.WriteString("\n")
		b.WriteString(eventStyle.Render(m.lastRead))
		b.WriteString("\n")
	}

	if lines := m.events.tail(); len(lines) > 0 {
		b.WriteString("\nEvents:\n")
		for _, line := range lines {
			b.WriteString(eventStyle.Render("  " + line))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • o open • t transfer • r read • c close • q quit"))
	return b.String()
}

func (m *interactiveModel) formatSlot(s *slot) string {
	if s.file.Alive() {
		return fmt.Sprintf("%s %s %s (fd %d)",
			s.label, aliveStyle.Render("owned"), s.file.Name(), s.file.Fd())
	}
	return fmt.Sprintf("%s %s %s", s.label, emptyStyle.Render("empty"), s.file.Name())
}

func runInteractive(filePath, configPath string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	m, err := newInteractiveModel(filePath, configPath)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

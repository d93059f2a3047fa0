package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/models"
	"github.com/san-kum/bondsim/internal/render"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Next   key.Binding
	Delete key.Binding
	Derive key.Binding
	Back   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "open"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next junction"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete bond"),
	),
	Derive: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "re-derive"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "models"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Delete, k.Derive, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Next},
		{k.Delete, k.Derive, k.Back},
		{k.Help, k.Quit},
	}
}

type state int

const (
	stateMenu state = iota
	stateGraph
)

type model struct {
	state    state
	cursor   int
	registry *models.Registry
	names    []string
	notation string
	log      hclog.Logger

	built    *models.Model
	junction int
	bondCur  int
	eqs      string
	err      error
	stale    bool
	notice   string

	help   help.Model
	keys   keyMap
	width  int
	height int
}

// NewApp returns the browser. A non-empty start opens that model directly.
func NewApp(reg *models.Registry, notation, start string, log hclog.Logger) *model {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	m := &model{
		state:    stateMenu,
		registry: reg,
		names:    reg.List(),
		notation: notation,
		log:      log,
		help:     help.New(),
		keys:     keys,
		width:    80,
		height:   24,
	}
	for i, n := range m.names {
		if n == start {
			m.cursor = i
			m.open()
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateGraph:
		return m.graphKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		m.open()
	}
	return m, nil
}

func (m model) graphKey(msg tea.KeyMsg) (model, tea.Cmd) {
	j := m.current()
	switch {
	case key.Matches(msg, m.keys.Back):
		m.state = stateMenu
		m.built = nil
	case key.Matches(msg, m.keys.Up):
		if m.bondCur > 0 {
			m.bondCur--
		}
	case key.Matches(msg, m.keys.Down):
		if m.bondCur < j.Len()-1 {
			m.bondCur++
		}
	case key.Matches(msg, m.keys.Next):
		m.junction = (m.junction + 1) % len(m.built.Graph.Junctions())
		m.bondCur = 0
	case key.Matches(msg, m.keys.Delete):
		if j.Len() == 0 {
			return m, nil
		}
		b, err := j.RemoveBond(m.bondCur)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("removed bond %d (%s)", b.ID(), b.Endpoint())
		m.log.Debug("bond removed", "junction", j.Label(), "bond", b.ID())
		if m.bondCur >= j.Len() && m.bondCur > 0 {
			m.bondCur--
		}
		m.stale = true
	case key.Matches(msg, m.keys.Derive):
		m.derive()
	}
	return m, nil
}

// open builds the model under the menu cursor and derives it.
func (m *model) open() {
	name := m.names[m.cursor]
	built, err := m.registry.Build(name, bondgraph.WithLogger(m.log))
	if err != nil {
		m.notice = err.Error()
		return
	}
	m.built = built
	m.state = stateGraph
	m.junction = 0
	for i, j := range built.Graph.Junctions() {
		if j == built.Root {
			m.junction = i
		}
	}
	m.bondCur = 0
	m.notice = ""
	m.derive()
}

func (m *model) derive() {
	d, err := m.built.Derive()
	m.stale = false
	if err != nil {
		m.err = err
		m.eqs = ""
		return
	}
	m.err = nil
	m.eqs = render.Equations(d.Equations, m.notation)
}

func (m model) current() *bondgraph.Junction {
	return m.built.Graph.Junctions()[m.junction]
}

func (m model) View() string {
	var body string
	switch m.state {
	case stateMenu:
		body = m.viewMenu()
	case stateGraph:
		body = m.viewGraph()
	}
	return body + "\n" + dim.Render("      "+m.help.View(m.keys)) + "\n"
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("b o n d s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.names {
		desc := ""
		if spec, err := m.registry.Get(name); err == nil {
			desc = spec.Description
		}
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-20s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-20s", name)) + dimmer.Render(desc) + "\n")
		}
	}
	if m.notice != "" {
		b.WriteString("\n      " + render.Bad.Render(m.notice) + "\n")
	}
	return b.String()
}

func (m model) viewGraph() string {
	var b strings.Builder
	j := m.current()

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.built.Spec.Name) + "  " + dim.Render(j.String()) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 40)) + "\n\n")

	for i, bd := range j.Bonds() {
		line := fmt.Sprintf("%d : %s", i, render.BondLine(bd, m.notation))
		if i == m.bondCur {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(line) + "\n")
		} else {
			b.WriteString("        " + dim.Render(line) + "\n")
		}
	}
	if j.Len() == 0 {
		b.WriteString("        " + dimmer.Render("no bonds") + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString("      " + render.Bad.Render(m.err.Error()) + "\n")
	default:
		for _, line := range strings.Split(strings.TrimRight(m.eqs, "\n"), "\n") {
			b.WriteString("      " + render.Good.Render(line) + "\n")
		}
	}
	if m.stale {
		b.WriteString("      " + yellow.Render("graph changed, press r to re-derive") + "\n")
	}
	if m.notice != "" {
		b.WriteString("      " + dim.Render(m.notice) + "\n")
	}
	return b.String()
}

// Run starts the browser on the alternate screen.
func Run(reg *models.Registry, notation, start string, log hclog.Logger) error {
	p := tea.NewProgram(NewApp(reg, notation, start, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

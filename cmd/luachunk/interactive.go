package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/luachunk/chunk"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// headerLines is the space taken by the title and help rows around the
// listing viewport.
const headerLines = 4

type interactiveModel struct {
	chunk    *chunk.Chunk
	filename string
	funcs    []funcInfo
	view     viewport.Model
	selected int
	width    int
	height   int
	state    modelState
	full     bool
}

type funcInfo struct {
	proto *chunk.Prototype
	name  string
	path  []int
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateShowListing
)

func newInteractiveModel(filename string, c *chunk.Chunk, full bool) *interactiveModel {
	m := &interactiveModel{
		chunk:    c,
		filename: filename,
		full:     full,
		state:    stateSelectFunc,
		width:    80,
		height:   24,
	}
	c.Main.Walk(func(path []int, p *chunk.Prototype) bool {
		m.funcs = append(m.funcs, funcInfo{
			proto: p,
			name:  chunk.FunctionName(path),
			path:  append([]int(nil), path...),
		})
		return true
	})
	m.view = viewport.New(m.width, m.height-headerLines)
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-headerLines, 1)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
				return m, nil
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
				return m, nil
			}

		case "enter":
			if m.state == stateSelectFunc {
				m.showListing()
				return m, nil
			}

		case "f":
			m.full = !m.full
			if m.state == stateShowListing {
				m.showListing()
			}
			return m, nil

		case "esc":
			if m.state == stateShowListing {
				m.state = stateSelectFunc
				return m, nil
			}
		}
	}

	if m.state == stateShowListing {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) showListing() {
	f := m.funcs[m.selected]
	var b strings.Builder
	if err := chunk.ListFunction(&b, f.proto, f.path, m.full); err != nil {
		b.WriteString(err.Error())
	}
	m.view.SetContent(strings.TrimPrefix(b.String(), "\n"))
	m.view.GotoTop()
	m.state = stateShowListing
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Lua Chunk Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function:\n\n")
		for i, f := range m.funcs {
			line := strings.Repeat("  ", len(f.path)) + m.formatFunc(f)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter listing • f toggle tables • q quit"))

	case stateShowListing:
		b.WriteString(m.view.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%3.f%% • ↑/↓ scroll • f toggle tables • esc back • q quit",
			m.view.ScrollPercent()*100)))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f funcInfo) string {
	p := f.proto
	info := fmt.Sprintf("<%s:%d,%d> %d instructions, %d constants",
		chunk.DisplaySource(p.Source), p.LineDefined, p.LastLineDefined, len(p.Code), len(p.Constants))
	return funcStyle.Render(f.name) + " " + infoStyle.Render(info)
}

func runInteractive(filename string, c *chunk.Chunk, full bool) error {
	p := tea.NewProgram(newInteractiveModel(filename, c, full), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/fixture"
	"github.com/wippyai/perlbind/interp"
	"github.com/wippyai/perlbind/xs"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	protoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	ip       *interp.Interp
	reg      *xs.Registry
	result   string
	funcs    []funcInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type funcInfo struct {
	pkg    string
	name   string
	proto  string
	params []paramInfo
}

type paramInfo struct {
	name     string
	optional bool
	variadic bool
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(reg *xs.Registry) *interactiveModel {
	return &interactiveModel{
		reg:   reg,
		state: stateSelectFunc,
	}
}

type loadedMsg struct {
	err   error
	ip    *interp.Interp
	funcs []funcInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadExports
}

func (m *interactiveModel) loadExports() tea.Msg {
	var funcs []funcInfo
	m.reg.Each(func(e *xs.Export) {
		funcs = append(funcs, funcInfo{
			pkg:    e.Pkg,
			name:   e.Name,
			proto:  e.Proto,
			params: parseProto(e.Proto),
		})
	})
	return loadedMsg{funcs: funcs, ip: interp.New()}
}

// parseProto expands a prototype string into named parameter slots: $ is a
// required scalar, everything after ; is optional, @ slurps the rest.
func parseProto(proto string) []paramInfo {
	var params []paramInfo
	optional := false
	n := 0
	for _, ch := range proto {
		switch ch {
		case ';':
			optional = true
		case '@':
			params = append(params, paramInfo{name: "rest", optional: true, variadic: true})
		case '$', '\\':
			n++
			params = append(params, paramInfo{
				name:     fmt.Sprintf("arg%d", n),
				optional: optional,
			})
		}
	}
	return params
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputArgs || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.funcs = msg.funcs
		m.ip = msg.ip

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.params))
	for i, p := range f.params {
		ti := textinput.New()
		ti.Placeholder = "YAML value"
		if p.optional {
			ti.Placeholder = "YAML value (optional)"
		}
		ti.Prompt = p.name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	f := m.funcs[m.selected]

	var args []*dyn.Value
	for i, input := range m.inputs {
		text := strings.TrimSpace(input.Value())
		if text == "" {
			if f.params[i].optional {
				continue
			}
			text = "null"
		}
		v, err := fixture.Load(m.ip, []byte(text))
		if err != nil {
			for _, a := range args {
				a.Release()
			}
			return callResultMsg{err: err}
		}
		if f.params[i].variadic {
			args = append(args, splitArgs(v)...)
			continue
		}
		args = append(args, v)
	}

	e, ok := m.reg.Lookup(f.pkg, f.name)
	if !ok {
		return callResultMsg{err: fmt.Errorf("export %s::%s vanished", f.pkg, f.name)}
	}
	results, err := xs.CallXS(m.ip, e.Entry, args...)
	if err != nil {
		return callResultMsg{err: err}
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderValue(r, 0))
		r.Release()
	}
	if len(results) == 0 {
		b.WriteString(undefStyle.Render("(void)"))
	}
	return callResultMsg{result: b.String()}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.funcs) == 0 {
		return "Loading exports..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("perlbind inspect"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select an export to call:\n\n")
		for i, f := range m.funcs {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + m.formatFunc(f)))
			} else {
				b.WriteString(cursor + m.formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.pkg+"::"+f.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.pkg+"::"+f.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f funcInfo) string {
	return funcStyle.Render(f.pkg+"::"+f.name) + "(" + protoStyle.Render(f.proto) + ")"
}

func runInteractive(reg *xs.Registry) error {
	p := tea.NewProgram(newInteractiveModel(reg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

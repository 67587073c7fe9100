package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/spellcore/cli"
	"github.com/nathoo/spellcore/engine"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for meta-command output
}

// Model is the Bubble Tea model for the arena shell.
type Model struct {
	engine *engine.Engine

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated output (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
}

// outputMsg carries output from the engine into the Update loop.
type outputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, trace bool) error {
	m := New(eng)
	m.trace = trace
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		return outputMsg{lines: m.engine.Intro()}
	}
}

// Update handles messages (key presses, window resize, engine output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(outputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	if strings.HasPrefix(input, "/") {
		output, quit := cli.Meta(m.engine, input, &m.trace)
		if strings.EqualFold(strings.Fields(input)[0], "/help") {
			output = append(output, "", "Navigation: PgUp/PgDn to scroll, Up/Down for command history")
		}
		m = m.appendOutput(outputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	result := m.engine.Step(input)
	output := result.Output
	if m.trace {
		output = append(output, cli.TraceLines(result)...)
	}
	m = m.appendOutput(outputMsg{input: input, lines: output})
	return m, nil
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between steps.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within width columns, breaking at spaces.
// Continuation lines keep the first line's indentation.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}

	trimmed := strings.TrimLeft(text, " ")
	indent := text[:len(text)-len(trimmed)]
	if len(indent) >= width/2 {
		indent = ""
	}

	var b strings.Builder
	b.WriteString(indent)
	lineLen := len(indent)
	for i, word := range strings.Fields(trimmed) {
		w := lipgloss.Width(word)
		switch {
		case i == 0:
		case lineLen+1+w > width:
			b.WriteString("\n")
			b.WriteString(indent)
			lineLen = len(indent)
		default:
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += w
	}
	return b.String()
}

// View renders the full TUI layout: viewport, status bar, input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusDown = styleStatusBar.
			Background(lipgloss.Color("52"))

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleYou = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	styleFoe = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	styleRoster = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	styleDowned = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindYou
	kindFoe
	kindRoster
	kindDowned
	kindSystem
	kindError
	kindTrace
)

var errorPrefixes = []string{
	"You can't", "You don't", "I don't know", "which ", "aim where?",
	"wait how long?", "gen:", "Nothing to repeat",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You are down"),
		strings.HasSuffix(line, " is down."),
		strings.HasSuffix(line, " DOWN"):
		return kindDowned
	case hasAnyPrefix(line, errorPrefixes),
		strings.HasPrefix(line, "no ") && strings.Contains(line, " called "):
		return kindError
	case strings.HasPrefix(line, "You "):
		return kindYou
	case strings.Contains(line, " casts "),
		strings.Contains(line, " tries to cast "),
		strings.Contains(line, " is too spent "),
		strings.HasSuffix(line, " fumbles."):
		return kindFoe
	case strings.HasPrefix(line, "  "):
		return kindRoster
	default:
		return kindNarration
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindYou:
		return styleYou.Render(line)
	case kindFoe:
		return styleFoe.Render(line)
	case kindRoster:
		return styleRoster.Render(line)
	case kindDowned:
		return styleDowned.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// shortBuff trims the remaining time off a status buff, "swarm x10 (4.5s)"
// becomes "swarm x10".
func shortBuff(s string) string {
	if i := strings.Index(s, " ("); i >= 0 {
		return s[:i]
	}
	return s
}

// renderStatusBar produces a full-width inverted status line showing the
// player's vitals and buffs, the opponent count and the tick.
func (m Model) renderStatusBar() string {
	st := m.engine.Status()
	p := st.Player

	left := fmt.Sprintf(" %s | HP %d/%d | MP %d/%d", p.Name, p.Health, p.MaxHealth, p.Mana, p.MaxMana)
	if p.Down {
		left += " | DOWN"
	}
	right := fmt.Sprintf("Foes: %d | T:%d ", len(st.Opponents), st.Tick)

	// Show buffs if they fit, otherwise just count.
	if n := len(p.Buffs); n > 0 {
		names := make([]string, n)
		for i, b := range p.Buffs {
			names[i] = shortBuff(b)
		}
		candidate := strings.Join(names, ", ") + " | " + right
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Buffs: %d | %s", n, right)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	style := styleStatusBar
	if p.Down {
		style = styleStatusDown
	}
	return style.Width(m.width).Render(bar)
}

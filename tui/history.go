// Package tui provides a Bubble Tea terminal UI for the spellcore arena.
package tui

// History keeps the last commands typed, oldest first, and walks them
// with Prev and Next.
type History struct {
	entries []string
	max     int
	back    int // 0 = fresh input, n = n-th newest entry
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{max: max}
}

// Push records a command. Repeating the newest entry is a no-op.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	if len(h.entries) == h.max {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.max-1]
	}
	h.entries = append(h.entries, cmd)
}

// Len is the number of stored commands.
func (h *History) Len() int { return len(h.entries) }

// Prev steps to an older command, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.back < len(h.entries) {
		h.back++
	}
	return h.entries[len(h.entries)-h.back], true
}

// Next steps to a newer command. It reports false once it walks past the
// newest, back to fresh input.
func (h *History) Next() (string, bool) {
	if h.back <= 1 {
		h.back = 0
		return "", false
	}
	h.back--
	return h.entries[len(h.entries)-h.back], true
}

// ResetCursor returns to fresh input.
func (h *History) ResetCursor() {
	h.back = 0
}

// Shell command history: a capacity-bounded, oldest-drops-first log of
// entered lines.
//
// Grounded on original_source/src/shell.c's shell_history_append (a
// fixed SHELL_HISTORY_SIZE array shifted down by one slot when full,
// never a ring, so iteration order is always oldest-to-newest) and its
// dedup-against-the-last-entry rule in shell_read_line_with_history.
package main

const shellHistoryCap = 50

type shellHistory struct {
	entries []string
}

// Append adds line to the history, dropping the oldest entry once
// shellHistoryCap is reached, and skipping the append entirely if line
// repeats the most recent entry (matches shell.c's dedup check).
func (h *shellHistory) Append(line string) {
	if line == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	if len(h.entries) == shellHistoryCap {
		h.entries = append(h.entries[1:], line)
		return
	}
	h.entries = append(h.entries, line)
}

// Count returns the number of stored entries.
func (h *shellHistory) Count() int { return len(h.entries) }

// At returns the 0-indexed entry (oldest first), matching shell_cmd_history's
// 1-based display numbering (i+1).
func (h *shellHistory) At(i int) string {
	if i < 0 || i >= len(h.entries) {
		return ""
	}
	return h.entries[i]
}

// Ctrl+R reverse history search.
//
// Grounded on original_source/src/shell.c's in_search branch of
// shell_read_line_with_history: scan from the newest entry backward,
// returning the first whose text contains the search term as a
// substring (strstr), matching bash's incremental reverse-i-search in
// spirit but with a single linear pass when the search is committed
// (newline) rather than an incremental index.
package main

import "strings"

// searchHistory returns the most recent history entry containing term
// as a substring, and its index, or ("", -1, false) if none matches or
// term is empty.
func searchHistory(h *shellHistory, term string) (line string, index int, ok bool) {
	if term == "" {
		return "", -1, false
	}
	for i := h.Count() - 1; i >= 0; i-- {
		if strings.Contains(h.entries[i], term) {
			return h.entries[i], i, true
		}
	}
	return "", -1, false
}

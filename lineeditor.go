// Cooperative single-line editor: polls the keyboard ring buffer while
// opportunistically autosaving, redrawing from a remembered prompt
// position rather than any cursor-save/restore terminal feature.
//
// Grounded on original_source/src/shell.c's shell_read_line_with_history
// (the single largest function in the original source): same redraw
// strategy (shell_refresh_input's seek-to-prompt / rewrite / pad /
// walk-back-with-backspaces), same history/search/completion
// interleaving, same per-iteration autosave check between keystrokes.
package main

const (
	shellAutosaveIntervalSeconds = 60
	shellMaxLineLen              = 256
)

// lineEditor is the shell's single persistent line-editing session.
// promptRow/promptCol are captured once per line, before the first
// keystroke; renderedLength is the buffer length the last refresh()
// painted, which the next refresh() pads out to so a shrinking line
// doesn't leave stale characters on screen.
type lineEditor struct {
	buf            []byte
	cursor         int
	promptRow      int
	promptCol      int
	renderedLength int

	inSearch  bool
	searchBuf []byte

	lastAutosave    uint64
	autosaveStarted bool
}

func newLineEditor() *lineEditor {
	return &lineEditor{}
}

// shellMaybeAutosave implements shell_maybe_autosave: the first call
// after boot only arms the deadline (it never saves on the very first
// tick, matching the original's "now == 0 forces a no-op baseline"
// check indirectly via lastAutosave's zero value). Returns true if a
// save was attempted (successful or not), so the caller knows to
// repaint the prompt.
func shellMaybeAutosave() bool {
	return globalEditor.maybeAutosave()
}

// globalEditor is the one line editor instance the shell loop drives;
// shellMaybeAutosave is called both from ShellRun's own loop (before
// the prompt is printed) and from inside ReadLine's poll (mid-line), so
// it needs to reach a single shared autosave clock regardless of which
// caller is active.
var globalEditor = newLineEditor()

func (le *lineEditor) maybeAutosave() bool {
	now := uint64(PITSeconds())
	if !le.autosaveStarted {
		le.autosaveStarted = true
		le.lastAutosave = now
		return false
	}
	if !FSPersistenceAvailable() {
		le.lastAutosave = now
		return false
	}
	if now < le.lastAutosave || now-le.lastAutosave < BootcfgAutosaveIntervalSeconds() {
		return false
	}
	le.lastAutosave = now
	if err := FSSave(); err == nil {
		term.WriteLine("[autosave] Filesystem snapshot saved.")
	} else {
		term.WriteString("[autosave] ")
		shellPrintFSError(err)
	}
	return true
}

// refresh repaints the line from promptRow/promptCol: seek to the
// prompt, rewrite the buffer, pad with spaces out to the previous
// rendered length to erase anything left over from a longer line, then
// walk the cursor back to its logical position with backspaces.
func (le *lineEditor) refresh() {
	term.MoveCursor(le.promptRow, le.promptCol)
	term.WriteString(string(le.buf))

	pad := 0
	if le.renderedLength > len(le.buf) {
		pad = le.renderedLength - len(le.buf)
		for i := 0; i < pad; i++ {
			term.PutChar(' ')
		}
	}
	totalVisible := len(le.buf) + pad
	cursor := le.cursor
	if cursor > totalVisible {
		cursor = totalVisible
	}
	for i := 0; i < totalVisible-cursor; i++ {
		term.PutChar('\b')
	}
	le.renderedLength = len(le.buf)
}

func (le *lineEditor) insert(c byte) {
	if len(le.buf) >= shellMaxLineLen-1 {
		return
	}
	le.buf = append(le.buf, 0)
	copy(le.buf[le.cursor+1:], le.buf[le.cursor:len(le.buf)-1])
	le.buf[le.cursor] = c
	le.cursor++
	le.refresh()
}

func (le *lineEditor) backspace() {
	if le.cursor == 0 {
		return
	}
	copy(le.buf[le.cursor-1:], le.buf[le.cursor:])
	le.buf = le.buf[:len(le.buf)-1]
	le.cursor--
	le.refresh()
}

// tabComplete implements the Tab branch of shell_read_line_with_history:
// find the word under the cursor, look it up, either extend to the
// longest common prefix, append a trailing space on a unique exact
// match, list every match on a fresh line, or ring the bell.
func (le *lineEditor) tabComplete() {
	wordStart := le.cursor
	for wordStart > 0 && le.buf[wordStart-1] != ' ' {
		wordStart--
	}
	word := string(le.buf[wordStart:le.cursor])
	matches := completionMatches(word)

	if len(matches) == 0 {
		term.PutChar(0x07) // BEL
		return
	}

	commonLen := commonPrefixLength(matches)
	if commonLen > len(word) {
		extension := matches[0][len(word):commonLen]
		for _, c := range []byte(extension) {
			if len(le.buf) >= shellMaxLineLen-1 {
				break
			}
			le.buf = append(le.buf, 0)
			copy(le.buf[le.cursor+1:], le.buf[le.cursor:len(le.buf)-1])
			le.buf[le.cursor] = c
			le.cursor++
		}
		if len(matches) == 1 {
			// The word now spells the only match in full; finish it off
			// with the separating space in the same keystroke.
			le.insert(' ')
			return
		}
		le.refresh()
		return
	}

	if len(matches) == 1 && matches[0] == word {
		le.insert(' ')
		return
	}

	term.WriteLine("")
	for _, m := range matches {
		term.WriteLine("  " + m)
	}
	shellPrintPrompt()
	le.promptRow, le.promptCol = term.GetCursor()
	le.renderedLength = 0
	le.refresh()
}

// enterSearch begins reverse-incremental search mode (Ctrl+R).
func (le *lineEditor) enterSearch() {
	le.inSearch = true
	le.searchBuf = le.searchBuf[:0]
	term.WriteLine("")
	term.WriteString("(reverse-i-search)`': ")
}

// feedSearch handles one printable byte while inSearch is set, matching
// the original's inline search-buffer editing (no redraw of the line
// buffer itself until the search is committed).
func (le *lineEditor) feedSearch(c byte, hist *shellHistory) {
	switch c {
	case '\b':
		if len(le.searchBuf) > 0 {
			le.searchBuf = le.searchBuf[:len(le.searchBuf)-1]
			term.PutChar('\b')
			term.PutChar(' ')
			term.PutChar('\b')
		}
	case '\n', '\r':
		le.inSearch = false
		term.WriteLine("")
		shellPrintPrompt()
		le.promptRow, le.promptCol = term.GetCursor()
		le.renderedLength = 0
		if line, _, ok := searchHistory(hist, string(le.searchBuf)); ok {
			le.buf = []byte(line)
			le.cursor = len(le.buf)
		}
		le.refresh()
	default:
		if len(le.searchBuf) < shellMaxLineLen-1 {
			le.searchBuf = append(le.searchBuf, c)
			term.PutChar(c)
		}
	}
}

// ReadLine runs the full interactive editing loop for one line, exactly
// as shell_read_line_with_history does: poll the keyboard ring
// (autosaving and hlt-ing between empty polls), dispatch printable
// bytes, control characters, and special codes, until newline commits
// the buffer to history and returns it.
func (le *lineEditor) ReadLine(hist *shellHistory) string {
	le.buf = le.buf[:0]
	le.cursor = 0
	le.renderedLength = 0
	le.inSearch = false
	historyIdx := hist.Count()

	le.promptRow, le.promptCol = term.GetCursor()

	for {
		code, ok := KeyboardTryReadCode()
		if !ok {
			if le.maybeAutosave() {
				shellPrintPrompt()
				le.promptRow, le.promptCol = term.GetCursor()
				le.renderedLength = 0
				le.refresh()
			}
			hlt()
			continue
		}

		if code < 256 {
			c := byte(code)
			if c == '\r' {
				c = '\n'
			}

			if le.inSearch {
				le.feedSearch(c, hist)
				continue
			}

			switch c {
			case '\b':
				le.backspace()
			case '\n':
				term.PutChar('\n')
				line := string(le.buf)
				hist.Append(line)
				return line
			case '\t':
				le.tabComplete()
			default:
				le.insert(c)
			}
			continue
		}

		switch code {
		case KeyUp:
			if historyIdx > 0 {
				historyIdx--
				le.buf = []byte(hist.At(historyIdx))
				le.cursor = len(le.buf)
				le.refresh()
			}
		case KeyDown:
			if historyIdx < hist.Count() {
				historyIdx++
				if historyIdx < hist.Count() {
					le.buf = []byte(hist.At(historyIdx))
				} else {
					le.buf = le.buf[:0]
				}
				le.cursor = len(le.buf)
				le.refresh()
			}
		case KeyLeft:
			if le.cursor > 0 {
				le.cursor--
				term.PutChar('\b')
			}
		case KeyRight:
			if le.cursor < len(le.buf) {
				term.PutChar(le.buf[le.cursor])
				le.cursor++
			}
		case KeyCtrlR:
			le.enterSearch()
		case KeyTab:
			le.tabComplete()
		}
	}
}

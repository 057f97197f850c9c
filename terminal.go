// VGA text-mode terminal driver.
//
// Grounded on original_source/src/terminal.c: fixed 80x25 framebuffer of
// (char, attribute) cells at physical address 0xB8000, hardware cursor
// synced through CRTC index/data ports 0x3D4/0x3D5, scroll-on-overflow,
// and the remembered "default attribute" that clear() resets to (rather
// than blanking to attribute 0, which the distilled spec.md elides).
package main

import "unsafe"

const (
	vgaMemoryAddr = 0xB8000
	termCols      = 80
	termRows      = 25

	crtcIndexPort = 0x3D4
	crtcDataPort  = 0x3D5
)

// vgaColor is one of the 16 standard VGA text-mode colors.
type vgaColor uint8

const (
	ColorBlack vgaColor = iota
	ColorBlue
	ColorGreen
	ColorCyan
	ColorRed
	ColorMagenta
	ColorBrown
	ColorLightGrey
	ColorDarkGrey
	ColorLightBlue
	ColorLightGreen
	ColorLightCyan
	ColorLightRed
	ColorLightMagenta
	ColorLightBrown
	ColorWhite
)

func makeAttr(fg, bg vgaColor) uint8 {
	return uint8(fg) | uint8(bg)<<4
}

// Terminal owns the VGA cell buffer and cursor state.
type Terminal struct {
	buf           *[termRows * termCols]uint16
	row           int
	col           int
	attr          uint8
	defAttr       uint8
	bold          bool
	cursorVisible bool

	ansi ansiParser
}

var term Terminal

// TerminalInit sets up the default attribute, clears the screen and
// positions the cursor at the origin. Must run before anything else
// writes to the console (spec.md §2 bring-up order).
func TerminalInit() {
	term.buf = (*[termRows * termCols]uint16)(unsafe.Pointer(uintptr(vgaMemoryAddr)))
	term.defAttr = makeAttr(ColorLightGrey, ColorBlack)
	term.attr = term.defAttr
	term.cursorVisible = true
	term.Clear()
}

// Clear resets every cell to the default attribute with a blank
// character and homes the cursor.
func (t *Terminal) Clear() {
	t.attr = t.defAttr
	cell := uint16(' ') | uint16(t.attr)<<8
	for i := range t.buf {
		t.buf[i] = cell
	}
	t.row, t.col = 0, 0
	t.updateCursor()
}

// WriteByte applies the write rules from spec.md §4.G for a single raw
// byte: newline, backspace, or a plain printable cell write.
func (t *Terminal) WriteByte(b byte) {
	switch b {
	case '\n':
		t.row++
		t.col = 0
	case '\b':
		if t.col > 0 {
			t.col--
		} else if t.row > 0 {
			t.row--
			t.col = termCols - 1
		}
		t.putCell(t.row, t.col, ' ')
	default:
		t.putCell(t.row, t.col, b)
		t.col++
		if t.col >= termCols {
			t.col = 0
			t.row++
		}
	}
	if t.row >= termRows {
		t.scroll(t.row - termRows + 1)
		t.row = termRows - 1
	}
	t.updateCursor()
}

// Write feeds bytes through the ANSI parser, which forwards plain bytes
// to WriteByte and consumes recognized CSI sequences itself.
func (t *Terminal) Write(p []byte) (int, error) {
	for _, b := range p {
		t.ansi.feed(t, b)
	}
	return len(p), nil
}

func (t *Terminal) putCell(row, col int, ch byte) {
	t.buf[row*termCols+col] = uint16(ch) | uint16(t.attr)<<8
}

func (t *Terminal) scroll(lines int) {
	if lines <= 0 {
		return
	}
	if lines >= termRows {
		t.Clear()
		return
	}
	copy(t.buf[:(termRows-lines)*termCols], t.buf[lines*termCols:])
	blank := uint16(' ') | uint16(t.attr)<<8
	for i := (termRows - lines) * termCols; i < termRows*termCols; i++ {
		t.buf[i] = blank
	}
}

func (t *Terminal) updateCursor() {
	pos := uint16(t.row*termCols + t.col)
	if !t.cursorVisible {
		pos = 0x2000 // off-screen cursor position, hides the glyph
	}
	OutB(crtcIndexPort, 0x0F)
	OutB(crtcDataPort, uint8(pos&0xFF))
	OutB(crtcIndexPort, 0x0E)
	OutB(crtcDataPort, uint8(pos>>8))
}

// SetColor sets the foreground/background used for subsequent writes,
// matching terminal_set_color.
func (t *Terminal) SetColor(fg, bg vgaColor) {
	t.attr = makeAttr(fg, bg)
}

// GetCursor returns the current logical row/column.
func (t *Terminal) GetCursor() (row, col int) {
	return t.row, t.col
}

// WriteString writes s verbatim through the ANSI feed, matching
// terminal_write.
func (t *Terminal) WriteString(s string) {
	t.Write([]byte(s))
}

// WriteLine writes s followed by a newline, matching terminal_write_line.
func (t *Terminal) WriteLine(s string) {
	t.WriteString(s)
	t.WriteByte('\n')
}

// PutChar writes a single byte, matching terminal_putc.
func (t *Terminal) PutChar(c byte) {
	t.ansi.feed(t, c)
}

// SetCursorVisible toggles the hardware cursor (ANSI ?25l/?25h).
func (t *Terminal) SetCursorVisible(v bool) {
	t.cursorVisible = v
	t.updateCursor()
}

// MoveCursor sets the logical cursor, clamped to the visible grid.
func (t *Terminal) MoveCursor(row, col int) {
	if row < 0 {
		row = 0
	}
	if row >= termRows {
		row = termRows - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= termCols {
		col = termCols - 1
	}
	t.row, t.col = row, col
	t.updateCursor()
}

// EraseScreen implements ANSI 'J': mode 0 from cursor to end, 1 from
// start to cursor, 2 the whole screen.
func (t *Terminal) EraseScreen(mode int) {
	blank := uint16(' ') | uint16(t.attr)<<8
	start, end := 0, termRows*termCols
	switch mode {
	case 0:
		start = t.row*termCols + t.col
	case 1:
		end = t.row*termCols + t.col + 1
	case 2:
		// whole screen, defaults above already cover it
	}
	for i := start; i < end; i++ {
		t.buf[i] = blank
	}
}

// EraseLine implements ANSI 'K' with the same 0/1/2 mode convention,
// scoped to the cursor's current row.
func (t *Terminal) EraseLine(mode int) {
	blank := uint16(' ') | uint16(t.attr)<<8
	rowStart := t.row * termCols
	start, end := rowStart, rowStart+termCols
	switch mode {
	case 0:
		start = rowStart + t.col
	case 1:
		end = rowStart + t.col + 1
	case 2:
	}
	for i := start; i < end; i++ {
		t.buf[i] = blank
	}
}

// ANSI CSI (ESC '[' ...) escape sequence parser feeding the terminal
// driver. Grounded on original_source/src/terminal.c's
// terminal_parse_ansi_sequence/terminal_apply_ansi_code.
package main

type ansiState int

const (
	ansiIdle ansiState = iota
	ansiEsc
	ansiCSI
)

// ansiParser is a tiny incremental state machine: feed it one byte at a
// time and it either writes through to the terminal or consumes bytes
// that are part of a recognized (or unrecognized-but-well-formed) CSI
// sequence.
type ansiParser struct {
	state   ansiState
	params  []int
	cur     int
	haveCur bool
	private bool // seen a leading '?' (cursor show/hide)
}

func (p *ansiParser) reset() {
	p.state = ansiIdle
	p.params = p.params[:0]
	p.cur = 0
	p.haveCur = false
	p.private = false
}

func (p *ansiParser) feed(t *Terminal, b byte) {
	switch p.state {
	case ansiIdle:
		if b == 0x1B {
			p.reset()
			p.state = ansiEsc
			return
		}
		t.WriteByte(b)
	case ansiEsc:
		if b == '[' {
			p.state = ansiCSI
			return
		}
		// Not a CSI sequence; drop back to idle and swallow the byte,
		// matching the original's silent-consume-on-unknown behavior.
		p.reset()
	case ansiCSI:
		p.feedCSI(t, b)
	}
}

func (p *ansiParser) feedCSI(t *Terminal, b byte) {
	switch {
	case b == '?':
		p.private = true
	case b >= '0' && b <= '9':
		p.cur = p.cur*10 + int(b-'0')
		p.haveCur = true
	case b == ';':
		p.params = append(p.params, p.cur)
		p.cur = 0
		p.haveCur = false
	default:
		if p.haveCur || len(p.params) == 0 {
			p.params = append(p.params, p.cur)
		}
		p.finish(t, b)
		p.reset()
	}
}

func (p *ansiParser) finish(t *Terminal, final byte) {
	params := p.params
	get := func(idx, def int) int {
		if idx < len(params) {
			return params[idx]
		}
		return def
	}

	if p.private {
		if final == 'l' && get(0, 0) == 25 {
			t.SetCursorVisible(false)
		} else if final == 'h' && get(0, 0) == 25 {
			t.SetCursorVisible(true)
		}
		return
	}

	switch final {
	case 'm':
		if len(params) == 0 {
			applyAnsiCode(t, 0)
			return
		}
		for _, code := range params {
			applyAnsiCode(t, code)
		}
	case 'A':
		t.MoveCursor(t.row-max1(get(0, 1)), t.col)
	case 'B':
		t.MoveCursor(t.row+max1(get(0, 1)), t.col)
	case 'C':
		t.MoveCursor(t.row, t.col+max1(get(0, 1)))
	case 'D':
		t.MoveCursor(t.row, t.col-max1(get(0, 1)))
	case 'H', 'f':
		row := get(0, 1) - 1
		col := get(1, 1) - 1
		t.MoveCursor(row, col)
	case 'J':
		t.EraseScreen(get(0, 0))
	case 'K':
		t.EraseLine(get(0, 0))
	default:
		// Unrecognized final byte: silently consumed, per spec.md §4.G.
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// applyAnsiCode implements a single SGR parameter: 0 resets to the
// terminal's remembered default attribute, 1 sets bold (brightens the
// foreground), 7 swaps foreground/background, 30-37/90-97 set the
// foreground, 40-47/100-107 set the background.
func applyAnsiCode(t *Terminal, code int) {
	switch {
	case code == 0:
		t.attr = t.defAttr
		t.bold = false
	case code == 1:
		t.bold = true
		fg := vgaColor(t.attr & 0x0F)
		bg := vgaColor(t.attr >> 4)
		t.attr = makeAttr(brighten(fg), bg)
	case code == 7:
		fg := t.attr & 0x0F
		bg := t.attr >> 4
		t.attr = bg | fg<<4
	case code >= 30 && code <= 37:
		t.attr = (t.attr & 0xF0) | uint8(ansiToTerminalColor(code-30, t.bold))
	case code >= 90 && code <= 97:
		t.attr = (t.attr & 0xF0) | uint8(ansiToTerminalColor(code-90, true))
	case code >= 40 && code <= 47:
		t.attr = (t.attr & 0x0F) | uint8(ansiToTerminalColor(code-40, false))<<4
	case code >= 100 && code <= 107:
		t.attr = (t.attr & 0x0F) | uint8(ansiToTerminalColor(code-100, true))<<4
	}
}

// ansiToTerminalColor maps an ANSI 0-7 color index to the matching VGA
// color, brightened when bold/high-intensity is requested.
func ansiToTerminalColor(idx int, bright bool) vgaColor {
	base := [8]vgaColor{
		ColorBlack, ColorRed, ColorGreen, ColorBrown,
		ColorBlue, ColorMagenta, ColorCyan, ColorLightGrey,
	}
	c := base[idx&7]
	if bright {
		return brighten(c)
	}
	return c
}

func brighten(c vgaColor) vgaColor {
	switch c {
	case ColorBlack:
		return ColorDarkGrey
	case ColorBlue:
		return ColorLightBlue
	case ColorGreen:
		return ColorLightGreen
	case ColorCyan:
		return ColorLightCyan
	case ColorRed:
		return ColorLightRed
	case ColorMagenta:
		return ColorLightMagenta
	case ColorBrown:
		return ColorLightBrown
	case ColorLightGrey:
		return ColorWhite
	default:
		return c
	}
}

// AT keyboard scancode decoder.
//
// Grounded on original_source/src/keyboard.c: the exact keymap_lower/
// keymap_upper tables, the shift/ctrl/e0 flag state machine, and
// keyboard_handle_scancode's branch order (checked in the same sequence
// here: 0xE0, shift press/release, ctrl press/release, release bit,
// e0-pending arrow keys, tab, ctrl+R, plain lookup).
package main

const (
	KeyUp    = 0x100
	KeyDown  = 0x101
	KeyLeft  = 0x102
	KeyRight = 0x103
	KeyTab   = 0x104
	KeyCtrlR = 0x105
)

var keymapLower = [128]byte{
	0, 27, '1', '2', '3', '4', '5', '6',
	'7', '8', '9', '0', '-', '=', '\b', '\t',
	'q', 'w', 'e', 'r', 't', 'y', 'u', 'i',
	'o', 'p', '[', ']', '\n', 0, 'a', 's',
	'd', 'f', 'g', 'h', 'j', 'k', 'l', ';',
	'\'', '`', 0, '\\', 'z', 'x', 'c', 'v',
	'b', 'n', 'm', ',', '.', '/', 0, '*',
	0, ' ', 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, '7',
	'8', '9', '-', '4', '5', '6', '+', '1',
	'2', '3', '0', '.',
}

var keymapUpper = [128]byte{
	0, 27, '!', '@', '#', '$', '%', '^',
	'&', '*', '(', ')', '_', '+', '\b', '\t',
	'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I',
	'O', 'P', '{', '}', '\n', 0, 'A', 'S',
	'D', 'F', 'G', 'H', 'J', 'K', 'L', ':',
	'"', '~', 0, '|', 'Z', 'X', 'C', 'V',
	'B', 'N', 'M', '<', '>', '?', 0, '*',
	0, ' ', 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, '7',
	'8', '9', '-', '4', '5', '6', '+', '1',
	'2', '3', '0', '.',
}

// keyboardState holds the decoder's three flags, matching
// original_source/src/keyboard.c's file-scoped shift_pressed/
// ctrl_pressed/e0_sequence statics.
type keyboardState struct {
	shift bool
	ctrl  bool
	e0    bool
}

var kbState keyboardState

// KeyboardInit resets decoder state and the ring buffer. Must run after
// IDTInit but before interrupts are enabled (spec.md §2 bring-up order).
func KeyboardInit() {
	kbState = keyboardState{}
	kbRing = codeRing{}
}

// keyboardIRQHandler is called by idt_amd64.s's irqKeyboardStub on every
// IRQ1. It drains the data port before sending EOI, matching spec.md
// §4.B's explicit ordering note.
func keyboardIRQHandler() {
	scancode := InB(0x60)
	decodeScancode(scancode)
	PICSendEOI(1)
}

// decodeScancode implements spec.md §4.D's exact branch order.
func decodeScancode(scancode uint8) {
	if scancode == 0xE0 {
		kbState.e0 = true
		return
	}
	if scancode == 0x2A || scancode == 0x36 {
		kbState.shift = true
		return
	}
	if scancode == 0xAA || scancode == 0xB6 {
		kbState.shift = false
		return
	}
	if scancode == 0x1D {
		kbState.ctrl = true
		return
	}
	if scancode == 0x9D {
		kbState.ctrl = false
		return
	}
	if scancode&0x80 != 0 {
		kbState.e0 = false
		return
	}
	if kbState.e0 {
		kbState.e0 = false
		switch scancode {
		case 0x48:
			kbRing.push(KeyUp)
		case 0x50:
			kbRing.push(KeyDown)
		case 0x4B:
			kbRing.push(KeyLeft)
		case 0x4D:
			kbRing.push(KeyRight)
		}
		return
	}
	if scancode == 0x0F {
		kbRing.push(KeyTab)
		return
	}
	if kbState.ctrl && scancode == 0x13 {
		kbRing.push(KeyCtrlR)
		return
	}
	var c byte
	if int(scancode) < len(keymapLower) {
		if kbState.shift {
			c = keymapUpper[scancode]
		} else {
			c = keymapLower[scancode]
		}
	}
	if c != 0 {
		kbRing.push(uint16(c))
	}
}

// KeyboardReadCode blocks (halting between polls) until a code is available.
func KeyboardReadCode() uint16 {
	for {
		if code, ok := kbRing.pop(); ok {
			return code
		}
		hlt()
	}
}

// KeyboardTryReadCode returns (0, false) immediately if the ring is empty,
// instead of blocking.
func KeyboardTryReadCode() (uint16, bool) {
	return kbRing.pop()
}

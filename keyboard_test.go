package main

import "testing"

func resetKeyboard() {
	kbState = keyboardState{}
	kbRing = codeRing{}
}

func TestDecodeScancodePlainLowercase(t *testing.T) {
	resetKeyboard()
	decodeScancode(0x1E) // 'a' make code
	code, ok := kbRing.pop()
	if !ok || code != 'a' {
		t.Fatalf("decode 0x1E = (%d, %v), want 'a'", code, ok)
	}
}

func TestDecodeScancodeShiftUppercase(t *testing.T) {
	resetKeyboard()
	decodeScancode(0x2A) // left shift press
	decodeScancode(0x1E) // 'a' -> 'A' while shifted
	code, ok := kbRing.pop()
	if !ok || code != 'A' {
		t.Fatalf("shifted decode = (%d, %v), want 'A'", code, ok)
	}
}

func TestDecodeScancodeShiftRelease(t *testing.T) {
	resetKeyboard()
	decodeScancode(0x2A)
	decodeScancode(0xAA) // shift release
	decodeScancode(0x1E)
	code, _ := kbRing.pop()
	if code != 'a' {
		t.Fatalf("after shift release, decode = %d, want 'a'", code)
	}
}

func TestDecodeScancodeKeyReleaseIgnored(t *testing.T) {
	resetKeyboard()
	decodeScancode(0x1E | 0x80) // release, bit 7 set
	if !kbRing.empty() {
		t.Error("a bare key-release scancode should not push a code")
	}
}

func TestDecodeScancodeE0Arrows(t *testing.T) {
	resetKeyboard()
	cases := []struct {
		scancode byte
		want     uint16
	}{
		{0x48, KeyUp},
		{0x50, KeyDown},
		{0x4B, KeyLeft},
		{0x4D, KeyRight},
	}
	for _, c := range cases {
		resetKeyboard()
		decodeScancode(0xE0)
		decodeScancode(c.scancode)
		code, ok := kbRing.pop()
		if !ok || code != c.want {
			t.Errorf("E0+0x%X = (%d, %v), want %d", c.scancode, code, ok, c.want)
		}
	}
}

func TestDecodeScancodeE0UnknownDiscarded(t *testing.T) {
	resetKeyboard()
	decodeScancode(0xE0)
	decodeScancode(0x1C) // a make code (keypad Enter) that is not one of the mapped arrow codes
	if !kbRing.empty() {
		t.Error("unmapped E0-prefixed scancode should be discarded")
	}
}

func TestDecodeScancodeTab(t *testing.T) {
	resetKeyboard()
	decodeScancode(0x0F)
	code, ok := kbRing.pop()
	if !ok || code != KeyTab {
		t.Fatalf("tab decode = (%d, %v), want KeyTab", code, ok)
	}
}

func TestDecodeScancodeCtrlR(t *testing.T) {
	resetKeyboard()
	decodeScancode(0x1D) // ctrl press
	decodeScancode(0x13) // 'r' scancode
	code, ok := kbRing.pop()
	if !ok || code != KeyCtrlR {
		t.Fatalf("ctrl+r decode = (%d, %v), want KeyCtrlR", code, ok)
	}
}

func TestRingBufferFIFOUpToCapacity(t *testing.T) {
	var r codeRing
	n := ringCapacity - 1 // one slot sacrificed
	for i := 0; i < n; i++ {
		if !r.push(uint16(i)) {
			t.Fatalf("push %d failed before reaching capacity", i)
		}
	}
	if r.push(9999) {
		t.Error("push beyond capacity-1 should fail (drop), ring should report full")
	}
	for i := 0; i < n; i++ {
		code, ok := r.pop()
		if !ok || code != uint16(i) {
			t.Fatalf("pop %d = (%d, %v), want (%d, true)", i, code, ok, i)
		}
	}
	if !r.empty() {
		t.Error("ring should be empty after draining all pushed codes")
	}
}

func TestRingBufferEmptyPop(t *testing.T) {
	var r codeRing
	if _, ok := r.pop(); ok {
		t.Error("pop on an empty ring should return ok=false")
	}
}

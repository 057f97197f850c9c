// CPU exception pretty-printer.
//
// Grounded on original_source/src/interrupts.c's exception_messages[] and
// exception_handler_common: print the exception name, (for the vectors
// that carry one) the error code in hex, and the faulting RIP, then halt
// forever. Exception handlers must never allocate or take locks, so this
// path bypasses the console logger and writes to the terminal driver
// byte by byte; the only heap traffic a fault can cause here is zero.
package main

import "unsafe"

var exceptionMessages = [32]string{
	"Divide by zero", "Debug", "Non-maskable interrupt", "Breakpoint",
	"Overflow", "Bound range exceeded", "Invalid opcode", "Device not available",
	"Double fault", "Coprocessor segment overrun", "Invalid TSS", "Segment not present",
	"Stack-segment fault", "General protection fault", "Page fault", "Reserved",
	"x87 floating-point exception", "Alignment check", "Machine check", "SIMD floating-point exception",
	"Virtualization exception", "Control protection exception", "Reserved", "Reserved",
	"Reserved", "Reserved", "Reserved", "Reserved",
	"Hypervisor injection exception", "VMM communication exception", "Security exception", "Reserved",
}

// vectorsWithErrorCode lists the vectors the CPU pushes an error code
// for; exceptionDispatch uses it to decide whether to print the error
// code. idt_amd64.s's stub selection (which stubs push a dummy 0) must
// agree with it.
var vectorsWithErrorCode = [7]int{8, 10, 11, 12, 13, 14, 17}

// currentVector/currentErrCode/currentFramePtr are written by the
// assembly trampoline in idt_amd64.s immediately before calling
// exceptionDispatch, and read here. A single set of globals is sufficient
// because this kernel is single-core and exception handlers never
// reenter each other's state (the CPU masks further interrupts of the
// same class while one is in progress).
var (
	currentVector   uint64
	currentErrCode  uint64
	currentFramePtr uintptr
)

// exceptionWriteString emits s one byte at a time through WriteByte,
// bypassing both the logger and the []byte(s) conversion Write would
// make.
func exceptionWriteString(s string) {
	for i := 0; i < len(s); i++ {
		term.WriteByte(s[i])
	}
}

// exceptionWriteHex prints value as a 0x-prefixed uppercase hex number
// without allocating (no fmt, no string building).
func exceptionWriteHex(value uint64) {
	term.WriteByte('0')
	term.WriteByte('x')
	started := false
	for shift := 60; shift >= 0; shift -= 4 {
		nibble := byte((value >> uint(shift)) & 0xF)
		if nibble == 0 && !started && shift != 0 {
			continue
		}
		started = true
		if nibble < 10 {
			term.WriteByte('0' + nibble)
		} else {
			term.WriteByte('A' + nibble - 10)
		}
	}
}

// exceptionDispatch is called from idt_amd64.s's isrCommon. It never
// returns: per spec.md §4.B, every exception is terminal.
func exceptionDispatch() {
	vector := currentVector
	errCode := currentErrCode
	frame := (*InterruptFrame)(unsafe.Pointer(currentFramePtr))

	name := "Unknown exception"
	if vector < uint64(len(exceptionMessages)) {
		name = exceptionMessages[vector]
	}

	hasErrCode := false
	for _, v := range vectorsWithErrorCode {
		if uint64(v) == vector {
			hasErrCode = true
		}
	}

	term.WriteByte('\n')
	term.SetColor(ColorLightRed, ColorBlack)
	exceptionWriteString("EXCEPTION: ")
	exceptionWriteString(name)
	if hasErrCode {
		exceptionWriteString(" error=")
		exceptionWriteHex(errCode)
	}
	exceptionWriteString(" rip=")
	exceptionWriteHex(frame.RIP)
	exceptionWriteString("\nSystem halted.\n")

	for {
		haltCPU()
	}
}

// haltCPU issues CLI;HLT once. exceptionDispatch calls it in its final
// loop instead of duplicating the two instructions.
func haltCPU() {
	disableInterrupts()
	hlt()
}

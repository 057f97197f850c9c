// Interrupt Descriptor Table setup.
//
// Grounded on original_source/src/interrupts.c and include/interrupts.h:
// 256 16-byte gate descriptors, interrupt-gate type/attribute byte 0x8E,
// IST index 0, limit = sizeof(table)-1 loaded via LIDT.
package main

import (
	"encoding/binary"
	"unsafe"
)

const (
	idtEntries   = 256
	idtGateIntr  = 0x8E // present, ring 0, 32/64-bit interrupt gate
	kernelCS     = 0x08 // code segment selector set up by the bootloader's GDT
)

// idtEntry is one 16-byte IDT gate descriptor: handler offset split into
// three fields (legacy x86 layout carried into long mode), selector, IST
// index, type/attributes, and two reserved/high words.
type idtEntry struct {
	offsetLow  uint16
	selector   uint16
	ist        uint8
	typeAttr   uint8
	offsetMid  uint16
	offsetHigh uint32
	reserved   uint32
}

// idtDescriptor is the 10-byte packed operand LIDT takes: 16-bit limit
// (table size minus one) followed immediately by the 64-bit base. A Go
// struct would pad the base out to offset 8, so the descriptor is laid
// out byte by byte instead.
var idtDescriptor [10]byte

var idt [idtEntries]idtEntry

// InterruptFrame is the stack layout an interrupt handler sees once a
// common entry stub has pushed nothing further, matching
// include/interrupts.h's interrupt_frame: rip/cs/rflags/rsp/ss, with the
// reserved halves the original pads each selector field out to for
// alignment, since CS/SS are pushed as 64-bit slots by the CPU.
type InterruptFrame struct {
	RIP     uint64
	CS      uint64
	RFLAGS  uint64
	RSP     uint64
	SS      uint64
}

// setGate installs one IDT entry pointing at the given handler address.
func setGate(vector int, handler uintptr) {
	idt[vector] = idtEntry{
		offsetLow:  uint16(handler),
		selector:   kernelCS,
		ist:        0,
		typeAttr:   idtGateIntr,
		offsetMid:  uint16(handler >> 16),
		offsetHigh: uint32(handler >> 32),
	}
}

// LoadIDT issues the LIDT instruction over the packed descriptor bytes
// at desc; implemented in idt_amd64.s.
func LoadIDT(desc *byte)

// funcPC recovers the entry address of a declared-but-bodyless asm stub.
// A Go func value for a top-level function with no closure is a pointer
// to a single word holding its entry PC; this is the same trick
// freestanding Go kernels use in place of a linker-exposed "address of
// function" operator, which the language does not provide.
func funcPC(f func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&f))
}

// The 32 CPU exception entry trampolines, one per vector because x86
// gives a handler no other way to learn which vector fired. Declared
// individually (Go has no array-of-bodyless-funcs shorthand) and
// implemented in idt_amd64.s, one TEXT block per vector.
func exceptionStub0()
func exceptionStub1()
func exceptionStub2()
func exceptionStub3()
func exceptionStub4()
func exceptionStub5()
func exceptionStub6()
func exceptionStub7()
func exceptionStub8()
func exceptionStub9()
func exceptionStub10()
func exceptionStub11()
func exceptionStub12()
func exceptionStub13()
func exceptionStub14()
func exceptionStub15()
func exceptionStub16()
func exceptionStub17()
func exceptionStub18()
func exceptionStub19()
func exceptionStub20()
func exceptionStub21()
func exceptionStub22()
func exceptionStub23()
func exceptionStub24()
func exceptionStub25()
func exceptionStub26()
func exceptionStub27()
func exceptionStub28()
func exceptionStub29()
func exceptionStub30()
func exceptionStub31()

var exceptionStubs = [32]func(){
	exceptionStub0, exceptionStub1, exceptionStub2, exceptionStub3,
	exceptionStub4, exceptionStub5, exceptionStub6, exceptionStub7,
	exceptionStub8, exceptionStub9, exceptionStub10, exceptionStub11,
	exceptionStub12, exceptionStub13, exceptionStub14, exceptionStub15,
	exceptionStub16, exceptionStub17, exceptionStub18, exceptionStub19,
	exceptionStub20, exceptionStub21, exceptionStub22, exceptionStub23,
	exceptionStub24, exceptionStub25, exceptionStub26, exceptionStub27,
	exceptionStub28, exceptionStub29, exceptionStub30, exceptionStub31,
}

// irqTimerStub and irqKeyboardStub are the IRQ0/IRQ1 entry trampolines.
func irqTimerStub()
func irqKeyboardStub()

// IDTInit installs all 32 CPU exception vectors and the two driver IRQ
// vectors (0x20 timer, 0x21 keyboard), then loads the table. Every other
// vector is left zeroed; spec.md §3 only requires the vectors actually
// used by the running system to be non-zero.
func IDTInit() {
	for v := 0; v < 32; v++ {
		setGate(v, funcPC(exceptionStubs[v]))
	}
	setGate(0x20, funcPC(irqTimerStub))
	setGate(0x21, funcPC(irqKeyboardStub))

	limit := uint16(unsafe.Sizeof(idt)) - 1
	base := uint64(uintptr(unsafe.Pointer(&idt[0])))
	binary.LittleEndian.PutUint16(idtDescriptor[0:2], limit)
	binary.LittleEndian.PutUint64(idtDescriptor[2:10], base)
	LoadIDT(&idtDescriptor[0])
}

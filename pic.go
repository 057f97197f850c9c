// 8259 Programmable Interrupt Controller remap and EOI handling.
//
// Grounded on original_source/src/interrupts.c: exact ICW byte sequence,
// final interrupt masks, and the "slave first, then always master" EOI
// rule from pic_send_eoi.
package main

const (
	pic1Command = 0x20
	pic1Data    = 0x21
	pic2Command = 0xA0
	pic2Data    = 0xA1

	icw1Init = 0x11 // ICW1_INIT | ICW1_ICW4
	icw4Mode = 0x01 // 8086 mode

	pic1Mask = 0xFC // only IRQ0 (timer) and IRQ1 (keyboard) unmasked
	pic2Mask = 0xFF // slave fully masked, nothing routed there

	picEOI = 0x20

	irqBase = 0x20 // master vectors start at 0x20, slave at 0x28
)

// PICRemap reprograms both 8259s so master IRQs land on vectors
// 0x20-0x27 and slave IRQs on 0x28-0x2F, then masks everything except
// the timer and keyboard lines.
func PICRemap() {
	OutB(pic1Command, icw1Init)
	IOWait()
	OutB(pic2Command, icw1Init)
	IOWait()

	OutB(pic1Data, irqBase)
	IOWait()
	OutB(pic2Data, irqBase+8)
	IOWait()

	OutB(pic1Data, 0x04) // tell master: slave lives on IRQ2
	IOWait()
	OutB(pic2Data, 0x02) // tell slave: its cascade identity is 2
	IOWait()

	OutB(pic1Data, icw4Mode)
	IOWait()
	OutB(pic2Data, icw4Mode)
	IOWait()

	OutB(pic1Data, pic1Mask)
	OutB(pic2Data, pic2Mask)
}

// PICSendEOI signals end-of-interrupt for the given IRQ (0-15). IRQs
// from the slave PIC (>=8) require an EOI to both controllers; the
// master always gets one.
func PICSendEOI(irq int) {
	if irq >= 8 {
		OutB(pic2Command, picEOI)
	}
	OutB(pic1Command, picEOI)
}

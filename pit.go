// PIT (8254) timer: periodic tick source and monotonic clock.
//
// Grounded on original_source/src/pit.c: base frequency 1193182 Hz,
// mode-3 (square wave) channel 0, 100 Hz default, divisor computed as
// base/frequency, low byte then high byte.
package main

const (
	pitBaseFrequency = 1193182
	pitChannel0Data  = 0x40
	pitCommandPort   = 0x43
	pitMode3Ch0      = 0x36

	pitDefaultHz = 100
)

// pitTicks is written only by the IRQ0 handler (pitIRQHandler) and read
// by task context; spec.md §5 permits this without locking because the
// write is a single aligned 64-bit increment and only one core exists.
var pitTicks uint64
var pitFrequency uint32

// PITInit programs channel 0 for the requested frequency in Hz,
// defaulting to 100 Hz when 0 is passed (original_source/src/pit.c's own
// default), matching spec.md §4.C.
func PITInit(hz uint32) {
	if hz == 0 {
		hz = pitDefaultHz
	}
	pitFrequency = hz
	divisor := uint16(pitBaseFrequency / hz)

	OutB(pitCommandPort, pitMode3Ch0)
	OutB(pitChannel0Data, uint8(divisor&0xFF))
	OutB(pitChannel0Data, uint8(divisor>>8))
}

// pitIRQHandler is called by idt_amd64.s's irqTimerStub on every IRQ0.
func pitIRQHandler() {
	pitTicks++
	PICSendEOI(0)
}

// PITTicks returns the monotonic tick counter.
func PITTicks() uint64 { return pitTicks }

// PITCurrentFrequency returns the programmed PIT frequency in Hz.
func PITCurrentFrequency() uint32 { return pitFrequency }

// PITSeconds returns elapsed time since PITInit as a float64, matching
// spec.md §4.C's seconds = ticks / frequency.
func PITSeconds() float64 {
	if pitFrequency == 0 {
		return 0
	}
	return float64(pitTicks) / float64(pitFrequency)
}

// PITElapsedMillis converts a tick delta into milliseconds, used by the
// ATA driver's timeout loops (original_source/src/ata.c measures timeout
// as pit_ticks()*1000/pit_current_frequency()).
func PITElapsedMillis(sinceTicks uint64) uint64 {
	if pitFrequency == 0 {
		return 0
	}
	return (pitTicks - sinceTicks) * 1000 / uint64(pitFrequency)
}

// System control: halt, poweroff, and reboot primitives, grounded on
// original_source/src/system.c's three functions exactly (QEMU/Bochs
// power-off port writes, keyboard-controller input-buffer drain before
// the reset pulse on port 0x64).
package main

// SysHalt disables interrupts and spins on HLT forever. It never
// returns.
func SysHalt() {
	for {
		disableInterrupts()
		hlt()
	}
}

// SysPoweroff signals the QEMU/Bochs "isa-debug-exit"-style power-off
// ports, then halts. On real hardware (or an emulator without the
// device) the writes are harmless no-ops and SysHalt takes over.
func SysPoweroff() {
	OutW(0x604, 0x2000)
	OutW(0xB004, 0x2000)
	SysHalt()
}

// SysReboot drains the keyboard controller's input buffer (status bit
// 0x02) before pulsing its reset line (0xFE to port 0x64), matching
// system_reboot's loop exactly.
func SysReboot() {
	for InB(0x64)&0x02 != 0 {
	}
	OutB(0x64, 0xFE)
	SysHalt()
}

// Kernel entry: the ordered bring-up sequence of spec.md §2 and the
// idle halt loop control never falls past, assuming the long-mode
// handoff and stack setup spec.md §6 puts out of scope as an external
// bootloader collaborator.
//
// Grounded on original_source/src/kernel.c's kernel_main: the exact
// Terminal -> Allocator -> Interrupts -> PIT -> Keyboard -> ATA ->
// Filesystem -> Shell order, extended (per spec.md §2's dependency
// table, which the original's own kernel_main never actually wires up)
// to initialize ATA and the filesystem before handing off to the
// shell, rather than leaving them to the first command that happens to
// touch them.
package main

import "unsafe"

// kernelEnd is a linker-provided symbol marking the first byte past the
// loaded kernel image; the real symbol is supplied by the link script
// spec.md's boot contract describes as an external collaborator. This
// placeholder keeps the package self-contained for hosted compilation
// and testing of everything above the hardware-facing layer.
var kernelEnd byte

const heapSizeBytes = 1 << 20 // 1 MiB, matching spec.md §6's boot contract

// heapAlignUp rounds addr up to a 4 KiB boundary, matching kernel.c's
// ((uintptr_t)&_kernel_end + 0xFFF) & ~0xFFF.
func heapAlignUp(addr uintptr) uintptr {
	const pageSize = 0x1000
	return (addr + pageSize - 1) &^ (pageSize - 1)
}

// kmain performs the bring-up sequence and then runs the shell forever.
// It never returns; if ShellRun somehow did return, the idle halt loop
// below takes over rather than falling off the end of the image.
func kmain() {
	TerminalInit()
	term.SetColor(ColorLightGreen, ColorBlack)
	term.WriteLine("Welcome to MyOs!")
	term.SetColor(ColorLightGrey, ColorBlack)
	klogInit()
	Klog.Info("terminal initialized")

	heapStart := heapAlignUp(uintptr(unsafe.Pointer(&kernelEnd)))
	heapMem := unsafe.Slice((*byte)(unsafe.Pointer(heapStart)), heapSizeBytes)
	HeapInit(heapMem)
	Klog.Info("heap initialized", klogF("bytes", heapSizeBytes))

	BootcfgParse(bootParamsBlob)

	disableInterrupts()
	IDTInit()
	PICRemap()
	PITInit(BootcfgPITFrequency())
	KeyboardInit()
	enableInterrupts()
	Klog.Info("interrupts enabled", klogF("pit_hz", PITCurrentFrequency()))

	ATAInit()
	if ATAIsAvailable() {
		Klog.Info("ATA drive detected", klogF("sectors", ATATotalSectors()), klogF("model", ATAModel()))
	} else {
		Klog.Warn("no ATA drive detected, persistence disabled")
	}

	FSInit()
	if BootcfgAutoLoadFS() && FSPersistenceAvailable() {
		if err := FSLoad(); err != nil {
			Klog.Warn("autoload_fs requested but loadfs failed", klogF("err", err.Error()))
		}
	}
	Klog.Info("filesystem ready", klogF("cwd", FSGetCWD()))

	ShellRun()

	SysHalt()
}

// main is the hosted entry point a normal `go build` toolchain expects
// of package main; a freestanding image instead enters through
// boot_amd64.s's _start trampoline (outside this specification's
// scope, per spec.md §1) which calls kmain directly after installing its
// own stack (long mode is already up when the bootloader jumps there). Kept here so the package remains buildable and
// the bring-up sequence has exactly one body.
func main() {
	kmain()
}

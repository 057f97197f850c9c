// ATA PIO driver for the primary bus, master drive.
//
// Grounded on original_source/src/ata.c: exact register offsets from
// ATA_PRIMARY_IO (0x1F0) and ATA_PRIMARY_CTRL (0x3F6), the IDENTIFY
// protocol (select drive 0, zero the count/LBA registers, issue 0xEC,
// the three-stage status poll: BSY clear, LBA1/LBA2 zero check, DRQ or
// ERR), the model/serial/firmware string byte-swap-and-trim routine,
// LBA28 vs LBA48 sector-count selection via word 83 bit 10, and the
// chunked (<=256 sector) read/write transfer loop with a cache-flush
// and BSY wait after every write chunk. Timeouts are measured via PIT
// ticks (pit.go) instead of the original's own millisecond helper,
// since both ultimately divide pit_ticks()*1000 by the PIT frequency.
package main

const (
	ataPrimaryIO   = 0x1F0
	ataPrimaryCtrl = 0x3F6

	ataRegData      = ataPrimaryIO + 0
	ataRegError     = ataPrimaryIO + 1
	ataRegSecCount0 = ataPrimaryIO + 2
	ataRegLBA0      = ataPrimaryIO + 3
	ataRegLBA1      = ataPrimaryIO + 4
	ataRegLBA2      = ataPrimaryIO + 5
	ataRegHDDevSel  = ataPrimaryIO + 6
	ataRegCommand   = ataPrimaryIO + 7
	ataRegStatus    = ataPrimaryIO + 7

	ataRegControl = ataPrimaryCtrl

	ataCmdReadPIO    = 0x20
	ataCmdWritePIO   = 0x30
	ataCmdCacheFlush = 0xE7
	ataCmdIdentify   = 0xEC

	ataSRErr  = 0x01
	ataSRDRQ  = 0x08
	ataSRDF   = 0x20
	ataSRDRDY = 0x40
	ataSRBSY  = 0x80

	ataTimeoutMillis = 5000
)

// ataDrive holds the state original_source/src/ata.c keeps in its
// file-scoped statics (ata_present, ata_total_sectors, ata_model, ...).
type ataDrive struct {
	present      bool
	totalSectors uint64
	model        string
	serial       string
	firmware     string
}

var ata ataDrive

// ataElapsedMillis mirrors ata_get_time_ms's guard: with no PIT running
// there is no way to measure elapsed time, so timeouts never fire.
func ataElapsedMillis(sinceTicks uint64) uint64 {
	if PITCurrentFrequency() == 0 {
		return 0
	}
	return PITElapsedMillis(sinceTicks)
}

func ataSelectDrive(lba uint32) {
	OutB(ataRegHDDevSel, 0xE0|uint8((lba>>24)&0x0F))
}

// ataWaitBusyClear polls STATUS until BSY clears, returning a
// KernelError on hardware error (ERR|DF) or timeout.
func ataWaitBusyClear() error {
	start := PITTicks()
	var status uint8
	for {
		status = InB(ataRegStatus)
		if ataElapsedMillis(start) > ataTimeoutMillis {
			return newErr(KindTimeout, "ata.wait", "")
		}
		if status&ataSRBSY == 0 {
			break
		}
	}
	if status&(ataSRErr|ataSRDF) != 0 {
		return newErr(KindHardware, "ata.wait", "")
	}
	return nil
}

// ataWaitDRQ polls STATUS until DRQ sets, returning a KernelError on
// hardware error or timeout.
func ataWaitDRQ() error {
	start := PITTicks()
	for {
		status := InB(ataRegStatus)
		if status&(ataSRErr|ataSRDF) != 0 {
			return newErr(KindHardware, "ata.wait", "")
		}
		if ataElapsedMillis(start) > ataTimeoutMillis {
			return newErr(KindTimeout, "ata.wait", "")
		}
		if status&ataSRDRQ != 0 {
			return nil
		}
	}
}

// ataSwapString byte-swaps adjacent pairs (IDENTIFY strings arrive
// word-swapped) and trims trailing spaces, matching ata_swap_string.
func ataSwapString(raw []byte) string {
	b := make([]byte, len(raw))
	copy(b, raw)
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end])
}

// wordsToBytes reinterprets a little-endian slice of IDENTIFY words as
// bytes, in word order (each word's high byte follows its low byte),
// matching the original's memcpy(dst, &buffer[n], len) over a uint16
// array on a little-endian target.
func wordsToBytes(words []uint16) []byte {
	b := make([]byte, len(words)*2)
	for i, w := range words {
		b[2*i] = byte(w)
		b[2*i+1] = byte(w >> 8)
	}
	return b
}

// ATAInit issues IDENTIFY DEVICE on the primary master and populates
// ata's fields on success. It is not an error for no drive to be
// present: ATAIsAvailable reports that, and the filesystem and shell
// fall back to their no-disk behavior (spec.md §4.G, §6).
func ATAInit() {
	ata = ataDrive{}

	OutB(ataRegControl, 0x00)
	ataSelectDrive(0)
	OutB(ataRegSecCount0, 0)
	OutB(ataRegLBA0, 0)
	OutB(ataRegLBA1, 0)
	OutB(ataRegLBA2, 0)
	OutB(ataRegCommand, ataCmdIdentify)

	status := InB(ataRegStatus)
	if status == 0 {
		return // no drive on this bus
	}

	start := PITTicks()
	for status&ataSRBSY != 0 {
		status = InB(ataRegStatus)
		if ataElapsedMillis(start) > ataTimeoutMillis {
			return
		}
	}

	lba1 := InB(ataRegLBA1)
	lba2 := InB(ataRegLBA2)
	if lba1 != 0 || lba2 != 0 {
		return // not ATA (ATAPI or similar)
	}

	start = PITTicks()
	for status&ataSRDRQ == 0 && status&ataSRErr == 0 {
		status = InB(ataRegStatus)
		if ataElapsedMillis(start) > ataTimeoutMillis {
			return
		}
	}
	if status&ataSRErr != 0 {
		return
	}

	var buf [256]uint16
	InsW(ataRegData, buf[:], 256)

	ata.model = ataSwapString(wordsToBytes(buf[27:47]))
	ata.serial = ataSwapString(wordsToBytes(buf[10:20]))
	ata.firmware = ataSwapString(wordsToBytes(buf[23:27]))

	if buf[83]&0x400 != 0 {
		ata.totalSectors = uint64(buf[100]) |
			uint64(buf[101])<<16 |
			uint64(buf[102])<<32 |
			uint64(buf[103])<<48
	} else {
		ata.totalSectors = uint64(buf[60]) | uint64(buf[61])<<16
	}

	ata.present = true
}

// ATAIsAvailable reports whether ATAInit found a usable drive.
func ATAIsAvailable() bool { return ata.present }

// ATATotalSectors returns the drive's reported sector count, or 0 if
// no drive is present.
func ATATotalSectors() uint64 { return ata.totalSectors }

// ATAModel, ATASerial and ATAFirmware return the IDENTIFY strings, or
// "" if no drive is present.
func ATAModel() string    { return ata.model }
func ATASerial() string   { return ata.serial }
func ATAFirmware() string { return ata.firmware }

// ataTransfer moves sectorCount 512-byte sectors starting at lba
// to/from buf, chunked into <=256-sector bursts the way the hardware's
// sector-count register requires (0 means 256).
func ataTransfer(lba uint32, sectorCount uint16, buf []uint16, write bool) error {
	if !ata.present {
		return newErr(KindHardware, "ata.transfer", "")
	}
	if sectorCount == 0 || len(buf) < int(sectorCount)*256 {
		return newErr(KindInvalid, "ata.transfer", "")
	}

	remaining := uint32(sectorCount)
	off := 0
	for remaining > 0 {
		chunk := remaining
		if chunk > 256 {
			chunk = 256
		}
		sectorValue := uint8(chunk)
		if chunk == 256 {
			sectorValue = 0
		}

		ataSelectDrive(lba)
		OutB(ataRegSecCount0, sectorValue)
		OutB(ataRegLBA0, uint8(lba&0xFF))
		OutB(ataRegLBA1, uint8((lba>>8)&0xFF))
		OutB(ataRegLBA2, uint8((lba>>16)&0xFF))
		if write {
			OutB(ataRegCommand, ataCmdWritePIO)
		} else {
			OutB(ataRegCommand, ataCmdReadPIO)
		}

		for i := uint32(0); i < chunk; i++ {
			if err := ataWaitBusyClear(); err != nil {
				return err
			}
			if err := ataWaitDRQ(); err != nil {
				return err
			}
			sector := buf[off : off+256]
			if write {
				OutsW(ataRegData, sector, 256)
			} else {
				InsW(ataRegData, sector, 256)
			}
			off += 256
		}

		if write {
			OutB(ataRegCommand, ataCmdCacheFlush)
			ataWaitBusyClear() //nolint:errcheck // best-effort flush, matching ata_transfer
		}

		lba += chunk
		remaining -= chunk
	}

	return nil
}

// ATAReadSectors reads sectorCount sectors starting at lba into buf,
// which must hold at least sectorCount*256 uint16 words (512 bytes per
// sector, addressed as words since PIO transfers 16 bits at a time).
func ATAReadSectors(lba uint32, sectorCount uint16, buf []uint16) error {
	return ataTransfer(lba, sectorCount, buf, false)
}

// ATAWriteSectors writes sectorCount sectors starting at lba from buf.
func ATAWriteSectors(lba uint32, sectorCount uint16, buf []uint16) error {
	return ataTransfer(lba, sectorCount, buf, true)
}

// ATALastError reads the ERROR register, giving the shell a hardware
// error code distinct from a plain timeout (spec.md §3.G).
func ATALastError() (uint8, error) {
	if !ata.present {
		return 0, newErr(KindHardware, "ata.lasterror", "")
	}
	return InB(ataRegError), nil
}

// Disk image persistence glue: serializes the in-memory node tree
// through internal/diskimage and writes/reads it via the ATA driver.
//
// Grounded on original_source/src/filesystem.c's fs_save/fs_load/
// fs_persistence_available and their fixed LBA window (2048..2048+256);
// the actual byte layout lives in internal/diskimage, shared with the
// host-side cmd/diskimage tool.
package main

import "github.com/xyproto/longmode/internal/diskimage"

// fsCollectEntries walks the tree in the same depth-first pre-order
// fs_serialize_node uses (a node before its children, root itself
// skipped), building the flattened entry list diskimage.Encode expects.
func fsCollectEntries(node *fsNode, out *[]diskimage.Entry) {
	if node != fsRoot {
		entry := diskimage.Entry{Path: fsBuildPath(node)}
		if node.typ == fsNodeDirectory {
			entry.Type = diskimage.NodeDir
		} else {
			entry.Type = diskimage.NodeFile
			entry.Data = node.data[:node.size]
		}
		*out = append(*out, entry)
	}
	// fs_attach_child prepends on insert, so replaying the image would
	// reverse sibling order if entries were emitted in list order. Emit
	// siblings oldest-first instead: load's mkdir/create replay then
	// rebuilds the exact newest-first list the live tree had, making
	// save-then-load preserve child-list order.
	for i := len(node.children) - 1; i >= 0; i-- {
		fsCollectEntries(node.children[i], out)
	}
}

func bytesToWords(b []byte) []uint16 {
	words := make([]uint16, (len(b)+1)/2)
	for i := range words {
		lo := b[2*i]
		var hi byte
		if 2*i+1 < len(b) {
			hi = b[2*i+1]
		}
		words[i] = uint16(lo) | uint16(hi)<<8
	}
	return words
}

// fsImageSave encodes the current tree and writes it to the reserved
// LBA window. Returns ErrInvalid if there is no ATA disk, matching
// fs_save's behavior of treating "no disk" as a plain failure.
func fsImageSave() error {
	if !ATAIsAvailable() {
		return newErr(KindInvalid, "fs.save", "")
	}

	var entries []diskimage.Entry
	fsCollectEntries(fsRoot, &entries)

	buf, err := diskimage.Encode(entries)
	if err != nil {
		return newErr(KindNoMem, "fs.save", "")
	}

	sectors := len(buf) / diskimage.SectorSize
	if sectors == 0 || sectors > diskimage.LBACount {
		return newErr(KindInvalid, "fs.save", "")
	}

	words := bytesToWords(buf)
	// ATAWriteSectors expects a full 256-word-per-sector buffer; pad up
	// to the sector count it was given.
	padded := make([]uint16, sectors*256)
	copy(padded, words)

	if err := ATAWriteSectors(diskimage.LBAStart, uint16(sectors), padded); err != nil {
		return newErr(KindHardware, "fs.save", "")
	}
	return nil
}

// fsImageLoad reads the reserved LBA window and replaces the current
// tree with its contents, matching fs_load including its header-only
// "zero entries" short circuit.
func fsImageLoad() error {
	if !ATAIsAvailable() {
		return newErr(KindInvalid, "fs.load", "")
	}

	words := make([]uint16, diskimage.LBACount*256)
	if err := ATAReadSectors(diskimage.LBAStart, diskimage.LBACount, words); err != nil {
		return newErr(KindHardware, "fs.load", "")
	}
	buf := wordsToBytes(words)

	header, err := diskimage.DecodeHeader(buf)
	if err != nil {
		return newErr(KindInvalid, "fs.load", "")
	}
	if header.EntryCount == 0 {
		fsClearChildren(fsRoot)
		fsCwd = fsRoot
		return nil
	}

	_, entries, err := diskimage.Decode(buf[:header.TotalSize])
	if err != nil {
		return newErr(KindInvalid, "fs.load", "")
	}

	fsClearChildren(fsRoot)
	fsCwd = fsRoot

	for _, e := range entries {
		if e.Type == diskimage.NodeDir {
			if err := FSMkdir(e.Path); err != nil && !isExist(err) {
				return err
			}
			continue
		}
		if err := FSCreateFile(e.Path); err != nil && !isExist(err) {
			return err
		}
		if err := FSWriteFile(e.Path, e.Data); err != nil {
			return err
		}
	}
	return nil
}

func isExist(err error) bool {
	ke, ok := err.(*KernelError)
	return ok && ke.Kind == KindExist
}

// FSPersistenceAvailable reports whether savefs/loadfs have a disk to
// work with, matching fs_persistence_available.
func FSPersistenceAvailable() bool { return ATAIsAvailable() }

// FSSave is the shell-facing entry point for the "savefs" command.
func FSSave() error { return fsImageSave() }

// FSLoad is the shell-facing entry point for the "loadfs" command.
func FSLoad() error { return fsImageLoad() }

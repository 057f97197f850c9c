// Package diskimage is the binary codec for the kernel's RAM filesystem
// snapshot format, shared verbatim between the freestanding kernel's
// fs_image.go (which writes/reads it through the ATA driver) and the
// hosted cmd/diskimage tool (which builds/inspects/validates image
// files offline, on a developer's machine, with no ATA involved).
//
// Grounded on original_source/src/filesystem.c's fs_image_header_t /
// fs_image_entry_t packed structs and its depth-first pre-order
// serializer (fs_serialize_node walks a node before its children, the
// root itself is never written): "one codec, two consumers" mirrors
// codegen_elf_writer.go's ELF writer being re-parsed with the same
// struct layout by compiler_test.go.
package diskimage

import (
	"encoding/binary"
	"fmt"
)

const (
	// Magic is "SFYM" read little-endian, matching the original's
	// FS_IMAGE_MAGIC 0x4D594653 (ASCII "MYFS" byte-swapped by the
	// uint32 store order on a little-endian target).
	Magic   uint32 = 0x4D594653
	Version uint32 = 1

	// SectorSize and the default LBA window this image occupies,
	// matching FS_IMAGE_SECTOR_SIZE / FS_IMAGE_LBA_START / _LBA_COUNT.
	SectorSize  = 512
	LBAStart    = 2048
	LBACount    = 256
	BufferBytes = LBACount * SectorSize

	headerSize = 16 // magic, version, total_size, entry_count: 4 uint32s
	entrySize  = 8  // type, reserved, path_len(u16), data_len(u32)

	// NodeDir and NodeFile mirror fs_node_type_t's two values.
	NodeDir  uint8 = 0
	NodeFile uint8 = 1

	// MaxPathLen is the longest path an entry may carry, matching the
	// original's FS_MAX_PATH_LEN bound (256 including the NUL the C side
	// reserves, so at most 255 bytes on disk). The on-disk path_len field
	// is 16 bits wide, but anything past this limit is rejected by both
	// Encode and Decode.
	MaxPathLen = 255
)

// Entry is one node in the flattened, depth-first pre-order node list a
// tree is encoded from (or decoded into). Path is the node's full path
// from the filesystem root (e.g. "/etc/motd"); the root itself is never
// represented as an Entry, matching fs_serialize_node skipping fs_root.
type Entry struct {
	Type uint8
	Path string
	Data []byte // empty for directories
}

// Header is the fixed-size preamble written before the entry list.
type Header struct {
	Magic      uint32
	Version    uint32
	TotalSize  uint32
	EntryCount uint32
}

// Encode serializes entries into a single buffer: a Header followed by
// each entry's fixed record (type, reserved byte, path length, data
// length) then its path bytes then its data bytes, zero-padded up to
// the next SectorSize boundary. It returns an error if the result would
// not fit in BufferBytes or any path exceeds MaxPathLen bytes, the
// FS_MAX_PATH_LEN bound fs_write_entry enforces before an entry is ever
// written.
func Encode(entries []Entry) ([]byte, error) {
	size := headerSize
	for _, e := range entries {
		if len(e.Path) == 0 || len(e.Path) > MaxPathLen {
			return nil, fmt.Errorf("diskimage: encode %q: path length %d out of range (1..%d)", e.Path, len(e.Path), MaxPathLen)
		}
		size += entrySize + len(e.Path) + len(e.Data)
	}

	padded := size
	if rem := padded % SectorSize; rem != 0 {
		padded += SectorSize - rem
	}
	if padded > BufferBytes {
		return nil, fmt.Errorf("diskimage: encode: %d bytes exceeds %d-byte image buffer", padded, BufferBytes)
	}

	buf := make([]byte, padded)
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], Version)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(size))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(entries)))

	pos := headerSize
	for _, e := range entries {
		buf[pos] = e.Type
		buf[pos+1] = 0
		binary.LittleEndian.PutUint16(buf[pos+2:pos+4], uint16(len(e.Path)))
		binary.LittleEndian.PutUint32(buf[pos+4:pos+8], uint32(len(e.Data)))
		pos += entrySize
		copy(buf[pos:], e.Path)
		pos += len(e.Path)
		if len(e.Data) > 0 {
			copy(buf[pos:], e.Data)
			pos += len(e.Data)
		}
	}

	return buf, nil
}

// DecodeHeader reads just the fixed preamble, used by both consumers to
// validate a buffer before committing to a full Decode.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, fmt.Errorf("diskimage: buffer too small for header (%d bytes)", len(buf))
	}
	h := Header{
		Magic:      binary.LittleEndian.Uint32(buf[0:4]),
		Version:    binary.LittleEndian.Uint32(buf[4:8]),
		TotalSize:  binary.LittleEndian.Uint32(buf[8:12]),
		EntryCount: binary.LittleEndian.Uint32(buf[12:16]),
	}
	if h.Magic != Magic || h.Version != Version {
		return h, fmt.Errorf("diskimage: bad header (magic=%#x version=%d)", h.Magic, h.Version)
	}
	if int(h.TotalSize) < headerSize || int(h.TotalSize) > len(buf) {
		return h, fmt.Errorf("diskimage: header total_size %d out of range for %d-byte buffer", h.TotalSize, len(buf))
	}
	return h, nil
}

// Decode parses buf into its Header and flattened entry list. entries
// is empty (not nil, nil) when the header claims zero entries, matching
// fs_load's short-circuit for an empty persisted filesystem.
func Decode(buf []byte) (Header, []Entry, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return h, nil, err
	}

	entries := make([]Entry, 0, h.EntryCount)
	pos := headerSize
	limit := int(h.TotalSize)

	for i := uint32(0); i < h.EntryCount; i++ {
		if pos+entrySize > limit {
			return h, nil, fmt.Errorf("diskimage: entry %d: truncated record header", i)
		}
		typ := buf[pos]
		pathLen := int(binary.LittleEndian.Uint16(buf[pos+2 : pos+4]))
		dataLen := int(binary.LittleEndian.Uint32(buf[pos+4 : pos+8]))
		pos += entrySize

		if pathLen == 0 || pathLen > MaxPathLen || pos+pathLen > limit {
			return h, nil, fmt.Errorf("diskimage: entry %d: invalid path length %d", i, pathLen)
		}
		path := string(buf[pos : pos+pathLen])
		pos += pathLen

		if pos+dataLen > limit {
			return h, nil, fmt.Errorf("diskimage: entry %d %q: truncated data (%d bytes)", i, path, dataLen)
		}
		var data []byte
		if dataLen > 0 {
			data = make([]byte, dataLen)
			copy(data, buf[pos:pos+dataLen])
			pos += dataLen
		}

		entries = append(entries, Entry{Type: typ, Path: path, Data: data})
	}

	return h, entries, nil
}

package diskimage

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entries := []Entry{
		{Type: NodeDir, Path: "/etc"},
		{Type: NodeFile, Path: "/etc/motd", Data: []byte("hello\n")},
		{Type: NodeDir, Path: "/docs"},
		{Type: NodeFile, Path: "/docs/readme.txt", Data: []byte("readme")},
	}

	buf, err := Encode(entries)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(buf)%SectorSize != 0 {
		t.Fatalf("Encode: buffer length %d is not sector-aligned", len(buf))
	}

	h, got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if h.EntryCount != uint32(len(entries)) {
		t.Fatalf("header entry count = %d, want %d", h.EntryCount, len(entries))
	}
	if len(got) != len(entries) {
		t.Fatalf("decoded %d entries, want %d", len(got), len(entries))
	}
	for i, want := range entries {
		if got[i].Type != want.Type || got[i].Path != want.Path || !bytes.Equal(got[i].Data, want.Data) {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestEncodeEmptyEntryList(t *testing.T) {
	buf, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil): %v", err)
	}
	h, got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if h.EntryCount != 0 || len(got) != 0 {
		t.Fatalf("expected an empty entry list, got header=%+v entries=%v", h, got)
	}
}

func TestEncodePathLengthBounds(t *testing.T) {
	atLimit := "/" + strings.Repeat("p", MaxPathLen-1)
	if _, err := Encode([]Entry{{Type: NodeFile, Path: atLimit}}); err != nil {
		t.Fatalf("Encode rejected a %d-byte path at the limit: %v", len(atLimit), err)
	}

	// One byte past MaxPathLen must be rejected even though it fits the
	// 16-bit on-disk path_len field with room to spare.
	tooLong := "/" + strings.Repeat("p", MaxPathLen)
	if _, err := Encode([]Entry{{Type: NodeFile, Path: tooLong}}); err == nil {
		t.Fatalf("expected an error for a %d-byte path (limit %d)", len(tooLong), MaxPathLen)
	}
}

func TestDecodeRejectsOversizedPathLength(t *testing.T) {
	// Hand-build a header plus one entry record claiming a 300-byte
	// path: it fits the sector, so only the MaxPathLen bound can reject
	// it.
	buf := make([]byte, SectorSize)
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], Version)
	binary.LittleEndian.PutUint32(buf[8:12], SectorSize)
	binary.LittleEndian.PutUint32(buf[12:16], 1)
	buf[16] = NodeFile
	binary.LittleEndian.PutUint16(buf[18:20], 300)
	binary.LittleEndian.PutUint32(buf[20:24], 0)

	if _, _, err := Decode(buf); err == nil {
		t.Fatal("expected an error decoding an entry with path_len 300")
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := make([]byte, SectorSize)
	if _, _, err := Decode(buf); err == nil {
		t.Fatal("expected an error decoding an all-zero buffer")
	}
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	entries := []Entry{{Type: NodeFile, Path: "/a", Data: []byte("data")}}
	buf, err := Encode(entries)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, _, err := Decode(buf[:headerSize+2]); err == nil {
		t.Fatal("expected an error decoding a truncated buffer")
	}
}

func TestEncodeRejectsWhenLargerThanImageBuffer(t *testing.T) {
	entries := []Entry{{Type: NodeFile, Path: "/big", Data: make([]byte, BufferBytes)}}
	if _, err := Encode(entries); err == nil {
		t.Fatal("expected an error when the encoded image exceeds BufferBytes")
	}
}

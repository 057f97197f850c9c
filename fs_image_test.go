package main

import (
	"testing"

	"github.com/xyproto/longmode/internal/diskimage"
)

func TestBytesToWordsRoundTripsWithWordsToBytes(t *testing.T) {
	original := []byte{1, 2, 3, 4, 5, 6}
	words := bytesToWords(original)
	back := wordsToBytes(words)
	if len(back) != len(original) {
		t.Fatalf("round trip length = %d, want %d", len(back), len(original))
	}
	for i, b := range original {
		if back[i] != b {
			t.Fatalf("round trip byte %d = %d, want %d", i, back[i], b)
		}
	}
}

func TestFSCollectEntriesSkipsRootAndEmitsSiblingsOldestFirst(t *testing.T) {
	resetFS()
	FSMkdir("/m")
	FSCreateFile("/m/a")
	FSCreateFile("/m/b")

	var entries []diskimage.Entry
	fsCollectEntries(fsRoot, &entries)

	for _, e := range entries {
		if e.Path == "/" {
			t.Fatal("fsCollectEntries should never include the root node")
		}
	}

	var mIdx, bIdx, aIdx = -1, -1, -1
	for i, e := range entries {
		switch e.Path {
		case "/m":
			mIdx = i
		case "/m/b":
			bIdx = i
		case "/m/a":
			aIdx = i
		}
	}
	if mIdx == -1 || bIdx == -1 || aIdx == -1 {
		t.Fatalf("expected /m, /m/b, /m/a among entries, got %+v", entries)
	}
	if mIdx > aIdx {
		t.Fatalf("a directory must precede its children: m=%d a=%d", mIdx, aIdx)
	}
	if aIdx > bIdx {
		t.Fatalf("expected oldest-first sibling order (a before b), got a=%d b=%d", aIdx, bIdx)
	}
}

// TestImageReplayPreservesChildListOrder drives the same replay loop
// fsImageLoad runs (mkdir/create/write per entry, in entry order)
// against the codec output, without a disk in between: after one
// save-shaped collect and one load-shaped replay, the tree must list
// identically and a second collect must produce the same entry sequence.
func TestImageReplayPreservesChildListOrder(t *testing.T) {
	resetFS()
	FSMkdir("/d")
	FSCreateFile("/d/old")
	FSCreateFile("/d/new")
	FSWriteFile("/d/new", []byte("n"))

	var first []diskimage.Entry
	fsCollectEntries(fsRoot, &first)

	wantList, err := FSListDir("/d")
	if err != nil {
		t.Fatalf("list before replay: %v", err)
	}

	fsClearChildren(fsRoot)
	fsCwd = fsRoot
	for _, e := range first {
		if e.Type == diskimage.NodeDir {
			if err := FSMkdir(e.Path); err != nil {
				t.Fatalf("replay mkdir %s: %v", e.Path, err)
			}
			continue
		}
		if err := FSCreateFile(e.Path); err != nil {
			t.Fatalf("replay create %s: %v", e.Path, err)
		}
		if err := FSWriteFile(e.Path, e.Data); err != nil {
			t.Fatalf("replay write %s: %v", e.Path, err)
		}
	}

	gotList, err := FSListDir("/d")
	if err != nil {
		t.Fatalf("list after replay: %v", err)
	}
	if len(gotList) != len(wantList) {
		t.Fatalf("child count after replay = %d, want %d", len(gotList), len(wantList))
	}
	for i := range wantList {
		if gotList[i].Name != wantList[i].Name {
			t.Fatalf("child %d = %q, want %q (order must survive save/load)", i, gotList[i].Name, wantList[i].Name)
		}
	}

	var second []diskimage.Entry
	fsCollectEntries(fsRoot, &second)
	if len(second) != len(first) {
		t.Fatalf("second collect has %d entries, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i].Path != first[i].Path || second[i].Type != first[i].Type {
			t.Fatalf("entry %d = %+v, want %+v", i, second[i], first[i])
		}
	}
}

// Heap allocator: a single contiguous region managed as a doubly linked
// free list with split-on-allocate and coalesce-on-free.
//
// Grounded on original_source/src/memory.c for the algorithms (first-fit
// search, split threshold, physical-adjacency coalescing, the aligned-
// allocation header-backpointer trick) and on vibe67's arena.go for the
// surrounding shape this kernel keeps: a named allocator value with
// Init/Alloc-style methods and a table of size-class constants, generalized
// here from arena's own bump-and-reset semantics to a true free list,
// because arena.go's blocks are never individually freed and spec.md's
// invariants require exactly that.
package main

import (
	"fmt"
	"unsafe"
)

const (
	heapAlignment   = 8
	heapMinBlock    = 16
	blockHeaderSize = int(unsafe.Sizeof(blockHeader{}))
)

// blockHeader precedes every payload in the heap region. size is the
// payload size in bytes; next/prev are byte offsets from the heap base
// (0 meaning "none") so the header never stores a raw pointer, matching
// the original's "offset instead of provenance-tracked pointer" model
// closely enough to keep the split/coalesce logic identical while staying
// inside a single []byte-backed Go allocation.
type blockHeader struct {
	size int64
	next int64
	prev int64
	free bool
}

// Heap owns one contiguous payload region and its free list.
type Heap struct {
	mem   []byte
	base  uintptr
	used  int64
	total int64

	blockCount     int64
	freeBlockCount int64
}

var kheap Heap

// HeapInit carves the allocator's region out of the given backing slice.
// Matches spec.md §4.A's init(base, size): the first header sits at the
// very start of mem, with no free blocks before it.
func HeapInit(mem []byte) {
	kheap = Heap{mem: mem, total: int64(len(mem))}
	if len(mem) < blockHeaderSize+heapMinBlock {
		return
	}
	kheap.base = uintptr(unsafe.Pointer(&mem[0]))
	h := kheap.headerAt(0)
	*h = blockHeader{
		size: int64(len(mem)) - int64(blockHeaderSize),
		next: 0,
		prev: 0,
		free: true,
	}
	kheap.blockCount = 1
	kheap.freeBlockCount = 1
}

func (hp *Heap) headerAt(off int64) *blockHeader {
	return (*blockHeader)(unsafe.Pointer(&hp.mem[off]))
}

func alignUp(size, align int64) int64 {
	return (size + align - 1) &^ (align - 1)
}

func roundSize(size int) int64 {
	s := alignUp(int64(size), heapAlignment)
	if s < heapMinBlock {
		s = heapMinBlock
	}
	return s
}

// Alloc implements spec.md §4.A's allocation algorithm: first-fit search,
// split the selected block if the leftover is big enough to host another
// header plus the minimum payload.
func (hp *Heap) Alloc(size int) unsafe.Pointer {
	if size <= 0 || hp.mem == nil {
		return nil
	}
	need := roundSize(size)

	off := int64(0)
	for off < int64(len(hp.mem)) {
		h := hp.headerAt(off)
		if h.free && h.size >= need {
			hp.splitAndTake(off, h, need)
			return unsafe.Pointer(&hp.mem[off+int64(blockHeaderSize)])
		}
		if h.next == 0 {
			break
		}
		off = h.next
	}
	return nil
}

func (hp *Heap) splitAndTake(off int64, h *blockHeader, need int64) {
	leftover := h.size - need
	if leftover >= int64(blockHeaderSize)+heapMinBlock {
		newOff := off + int64(blockHeaderSize) + need
		newHdr := hp.headerAt(newOff)
		*newHdr = blockHeader{
			size: leftover - int64(blockHeaderSize),
			next: h.next,
			prev: off,
			free: true,
		}
		if h.next != 0 {
			hp.headerAt(h.next).prev = newOff
		}
		h.next = newOff
		h.size = need
		hp.blockCount++
		hp.freeBlockCount++
	}
	h.free = false
	hp.used += h.size
	hp.freeBlockCount--
}

// AllocAligned implements the header-backpointer trick from spec.md
// §3/§4.A: over-allocate by alignment+8 bytes, advance past the first 8
// bytes, round up to the alignment boundary, and stash the owning block's
// header offset in the 8 bytes immediately before the returned pointer.
func (hp *Heap) AllocAligned(size int, alignment int) unsafe.Pointer {
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		return nil
	}
	raw := hp.Alloc(size + alignment + 8)
	if raw == nil {
		return nil
	}
	rawAddr := uintptr(raw)
	aligned := alignUp(int64(rawAddr+8), int64(alignment))
	backPtr := (*int64)(unsafe.Pointer(uintptr(aligned - 8)))
	*backPtr = hp.headerOffsetForPayload(rawAddr)
	return unsafe.Pointer(uintptr(aligned))
}

func (hp *Heap) headerOffsetForPayload(payloadAddr uintptr) int64 {
	return int64(payloadAddr) - int64(hp.base) - int64(blockHeaderSize)
}

// Free implements spec.md §4.A: recover the header either directly
// (regular allocation) or via the stored backpointer (aligned
// allocation), validate it, mark it free, and coalesce with adjacent free
// neighbors. Invalid or double-free pointers are silently ignored.
func (hp *Heap) Free(ptr unsafe.Pointer) {
	if ptr == nil || hp.mem == nil {
		return
	}
	addr := uintptr(ptr)
	heapEnd := hp.base + uintptr(len(hp.mem))
	if addr < hp.base+uintptr(blockHeaderSize) || addr >= heapEnd {
		return
	}

	off := hp.headerOffsetForPayload(addr)
	if !hp.validHeaderOffset(off) || hp.headerAt(off).free {
		// Not a valid regular allocation header; try the aligned path,
		// where the owning header's offset sits in the 8 bytes before
		// the payload pointer.
		if addr-8 < hp.base {
			return
		}
		off = *(*int64)(unsafe.Pointer(addr - 8))
		if !hp.validHeaderOffset(off) {
			return
		}
	}
	h := hp.headerAt(off)
	payload := hp.base + uintptr(off) + uintptr(blockHeaderSize)
	if h.free || h.size <= 0 || addr < payload || addr >= payload+uintptr(h.size) {
		return
	}
	h.free = true
	hp.used -= h.size
	hp.freeBlockCount++
	hp.coalesce(off)
}

// validHeaderOffset rejects offsets that cannot name a block header:
// out of range, or not on the 8-byte grid every header in this heap
// lands on (the base header sits at 0 and every split offset is a sum
// of 8-aligned quantities).
func (hp *Heap) validHeaderOffset(off int64) bool {
	if off < 0 || off%heapAlignment != 0 || off+int64(blockHeaderSize) > int64(len(hp.mem)) {
		return false
	}
	return true
}

func (hp *Heap) coalesce(off int64) {
	h := hp.headerAt(off)
	if h.next != 0 {
		next := hp.headerAt(h.next)
		if next.free {
			h.size += int64(blockHeaderSize) + next.size
			h.next = next.next
			if next.next != 0 {
				hp.headerAt(next.next).prev = off
			}
			hp.blockCount--
			hp.freeBlockCount--
		}
	}
	if off != 0 {
		prev := hp.headerAt(h.prev)
		if prev.free {
			prev.size += int64(blockHeaderSize) + h.size
			prev.next = h.next
			if h.next != 0 {
				hp.headerAt(h.next).prev = h.prev
			}
			hp.blockCount--
			hp.freeBlockCount--
		}
	}
}

// Realloc implements spec.md §4.A: shrinking is a no-op on the pointer,
// growing first tries to absorb a free, physically-adjacent next block,
// falling back to allocate-copy-free.
func (hp *Heap) Realloc(ptr unsafe.Pointer, size int) unsafe.Pointer {
	if ptr == nil {
		return hp.Alloc(size)
	}
	off := hp.headerOffsetForPayload(uintptr(ptr))
	if !hp.validHeaderOffset(off) {
		return nil
	}
	h := hp.headerAt(off)
	need := roundSize(size)
	if need <= h.size {
		return ptr
	}
	if h.next != 0 {
		next := hp.headerAt(h.next)
		if next.free && h.size+int64(blockHeaderSize)+next.size >= need {
			oldSize := h.size
			absorbed := h.size + int64(blockHeaderSize) + next.size
			h.next = next.next
			if next.next != 0 {
				hp.headerAt(next.next).prev = off
			}
			// The absorbed free block is gone; used grows by whatever of
			// it this grow actually consumes, accounted inside the split
			// helper below against oldSize.
			hp.blockCount--
			hp.freeBlockCount--
			h.size = absorbed
			hp.splitAndTakeGrown(off, h, need, oldSize)
			return ptr
		}
	}
	newPtr := hp.Alloc(size)
	if newPtr == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(newPtr), size), unsafe.Slice((*byte)(ptr), h.size))
	hp.Free(ptr)
	return newPtr
}

// splitAndTakeGrown finishes an in-place grow after a free neighbor has
// been merged into h (h.size already holds the merged total). It splits
// off the remainder as a new free block when there's room, and adjusts
// hp.used by the net change from the allocation's prior payload size.
func (hp *Heap) splitAndTakeGrown(off int64, h *blockHeader, need, oldSize int64) {
	leftover := h.size - need
	if leftover >= int64(blockHeaderSize)+heapMinBlock {
		newOff := off + int64(blockHeaderSize) + need
		newHdr := hp.headerAt(newOff)
		*newHdr = blockHeader{
			size: leftover - int64(blockHeaderSize),
			next: h.next,
			prev: off,
			free: true,
		}
		if h.next != 0 {
			hp.headerAt(h.next).prev = newOff
		}
		h.next = newOff
		h.size = need
		hp.blockCount++
		hp.freeBlockCount++
		hp.used += need - oldSize
	} else {
		hp.used += h.size - oldSize
	}
}

// Calloc allocates a zeroed size*num byte region, rejecting overflow.
func (hp *Heap) Calloc(num, size int) unsafe.Pointer {
	if num == 0 || size == 0 {
		return nil
	}
	total := num * size
	if total/num != size {
		return nil
	}
	p := hp.Alloc(total)
	if p == nil {
		return nil
	}
	clear(unsafe.Slice((*byte)(p), total))
	return p
}

// Used, Total, BlockCount, FreeBlockCount, LargestFree are the
// observability counters spec.md §4.A requires.
func (hp *Heap) Used() int64           { return hp.used }
func (hp *Heap) Total() int64          { return hp.total }
func (hp *Heap) BlockCount() int64     { return hp.blockCount }
func (hp *Heap) FreeBlockCount() int64 { return hp.freeBlockCount }

func (hp *Heap) LargestFree() int64 {
	var largest int64
	off := int64(0)
	for off < int64(len(hp.mem)) {
		h := hp.headerAt(off)
		if h.free && h.size > largest {
			largest = h.size
		}
		if h.next == 0 {
			break
		}
		off = h.next
	}
	return largest
}

func (hp *Heap) String() string {
	return fmt.Sprintf("heap: used=%d total=%d blocks=%d free_blocks=%d largest_free=%d",
		hp.used, hp.total, hp.blockCount, hp.freeBlockCount, hp.LargestFree())
}

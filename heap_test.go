package main

import (
	"testing"
	"unsafe"
)

func newTestHeap(t *testing.T, size int) *Heap {
	t.Helper()
	mem := make([]byte, size)
	HeapInit(mem)
	return &kheap
}

func TestHeapAllocBasic(t *testing.T) {
	hp := newTestHeap(t, 4096)

	p := hp.Alloc(100)
	if p == nil {
		t.Fatal("Alloc(100) returned nil")
	}
	if hp.Used() == 0 {
		t.Fatal("Used() should be nonzero after an allocation")
	}
}

func TestHeapAllocZeroAndNegative(t *testing.T) {
	hp := newTestHeap(t, 4096)
	if hp.Alloc(0) != nil {
		t.Error("Alloc(0) should return nil")
	}
	if hp.Alloc(-1) != nil {
		t.Error("Alloc(-1) should return nil")
	}
}

func TestHeapAllocExhaustion(t *testing.T) {
	hp := newTestHeap(t, 256)
	if hp.Alloc(10000) != nil {
		t.Error("Alloc beyond heap capacity should return nil")
	}
}

// TestHeapScenarioS3 mirrors spec.md §8 scenario S3: allocate A(100),
// B(200), C(50); free B; allocate D(150), which must land in B's hole;
// after freeing A, C, D the used counter must return to its initial value.
func TestHeapScenarioS3(t *testing.T) {
	hp := newTestHeap(t, 64*1024)
	initialUsed := hp.Used()

	a := hp.Alloc(100)
	b := hp.Alloc(200)
	c := hp.Alloc(50)
	if a == nil || b == nil || c == nil {
		t.Fatal("initial allocations failed")
	}

	hp.Free(b)
	usedAfterFreeB := hp.Used()

	d := hp.Alloc(150)
	if d == nil {
		t.Fatal("Alloc(150) after freeing B failed")
	}
	if uintptr(d) < uintptr(b) || uintptr(d) >= uintptr(b)+200 {
		t.Errorf("D should reuse B's hole: b=%p d=%p", b, d)
	}
	if hp.Used() <= usedAfterFreeB {
		t.Error("Used() should increase after allocating D")
	}

	hp.Free(a)
	hp.Free(c)
	hp.Free(d)
	if hp.Used() != initialUsed {
		t.Errorf("Used() after freeing everything = %d, want %d", hp.Used(), initialUsed)
	}
}

func TestHeapCoalesceNoAdjacentFreeBlocks(t *testing.T) {
	hp := newTestHeap(t, 4096)
	a := hp.Alloc(64)
	b := hp.Alloc(64)
	c := hp.Alloc(64)

	hp.Free(a)
	hp.Free(b)
	hp.Free(c)

	// All three should have coalesced with the tail free block into one
	// run; block count should be small (ideally 1), never leaving two
	// adjacent free blocks distinct.
	if hp.FreeBlockCount() > 1 {
		t.Errorf("expected adjacent free blocks to coalesce, free_block_count=%d", hp.FreeBlockCount())
	}
}

func TestHeapFreeInvalidPointerIsNoop(t *testing.T) {
	hp := newTestHeap(t, 4096)
	before := hp.Used()

	hp.Free(nil)
	var x byte
	hp.Free(unsafe.Pointer(&x)) // not a pointer this heap ever returned

	if hp.Used() != before {
		t.Error("Free on invalid/foreign pointers must not change Used()")
	}
}

func TestHeapDoubleFreeIsNoop(t *testing.T) {
	hp := newTestHeap(t, 4096)
	p := hp.Alloc(32)
	hp.Free(p)
	used := hp.Used()
	hp.Free(p) // double free
	if hp.Used() != used {
		t.Error("double Free must be a no-op")
	}
}

func TestHeapAllocAligned(t *testing.T) {
	hp := newTestHeap(t, 16*1024)

	for _, align := range []int{8, 16, 64, 256} {
		p := hp.AllocAligned(100, align)
		if p == nil {
			t.Fatalf("AllocAligned(100, %d) returned nil", align)
		}
		if uintptr(p)%uintptr(align) != 0 {
			t.Errorf("AllocAligned(100, %d) = %p, not aligned", align, p)
		}
		before := hp.Used()
		hp.Free(p)
		after := hp.Used()
		if after >= before {
			t.Errorf("Free on aligned pointer did not reduce Used(): before=%d after=%d", before, after)
		}
	}
}

func TestHeapAllocAlignedRejectsNonPowerOfTwo(t *testing.T) {
	hp := newTestHeap(t, 4096)
	if hp.AllocAligned(64, 3) != nil {
		t.Error("AllocAligned with a non-power-of-two alignment should return nil")
	}
}

func TestHeapReallocShrinkKeepsPointer(t *testing.T) {
	hp := newTestHeap(t, 4096)
	p := hp.Alloc(200)
	shrunk := hp.Realloc(p, 50)
	if shrunk != p {
		t.Error("Realloc shrink should return the same pointer")
	}
}

func TestHeapReallocGrowAbsorbsNextFreeBlock(t *testing.T) {
	hp := newTestHeap(t, 4096)
	a := hp.Alloc(64)
	b := hp.Alloc(64)
	hp.Free(b)

	grown := hp.Realloc(a, 100)
	if grown != a {
		t.Error("Realloc grow that fits in the adjacent free block should return the same pointer")
	}
}

func TestHeapCalcOverflow(t *testing.T) {
	hp := newTestHeap(t, 4096)
	const big = 1 << 62
	if hp.Calloc(big, big) != nil {
		t.Error("Calloc should reject a num*size overflow")
	}
}

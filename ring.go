// Lock-free single-producer single-consumer ring buffer carrying decoded
// keyboard codes from ISR context to task context.
//
// Grounded on original_source/src/keyboard.c's keyboard_buffer (volatile
// head/tail indices, one slot sacrificed to distinguish full from empty)
// and spec.md §3/§9's note that ordering only requires single-word-
// aligned reads/writes of head and tail, never a lock.
package main

const ringCapacity = 128

// codeRing is a fixed-capacity array of 16-bit codes. head is written
// only by the producer (the keyboard ISR), tail only by the consumer
// (task context); each index read by the other side is a single aligned
// word, which is the entirety of the synchronization this needs on a
// single core (spec.md §5).
type codeRing struct {
	buf  [ringCapacity]uint16
	head int
	tail int
}

var kbRing codeRing

// push attempts to enqueue a code; returns false (dropping it) if the
// ring is full. Called only from interrupt context.
func (r *codeRing) push(code uint16) bool {
	next := (r.head + 1) % ringCapacity
	if next == r.tail {
		return false // full: one slot sacrificed, per spec.md §3
	}
	r.buf[r.head] = code
	r.head = next
	return true
}

// pop dequeues one code, returning (0, false) if empty. Called only from
// task context.
func (r *codeRing) pop() (uint16, bool) {
	if r.head == r.tail {
		return 0, false
	}
	code := r.buf[r.tail]
	r.tail = (r.tail + 1) % ringCapacity
	return code, true
}

func (r *codeRing) empty() bool {
	return r.head == r.tail
}

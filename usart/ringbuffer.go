// usart/ringbuffer.go

// Fixed-capacity byte ring addressed by insert/extract indices. One slot is
// always left free so that "empty" (insert == extract) and "full"
// (insert+1 == extract) are distinguishable without a separate count.

package usart

import "go.uber.org/atomic"

// DefaultBufferSize is the ring size used when a descriptor leaves it zero.
const DefaultBufferSize = 128

// RingBuffer is a single-producer, single-consumer byte ring. The producer
// only ever stores insert and the consumer only ever stores extract, so the
// two sides need no lock when they run in different contexts (ISR and
// mainline).
type RingBuffer struct {
	buf     []byte
	insert  atomic.Uint32
	extract atomic.Uint32
}

// NewRingBuffer returns a ring with n slots, n-1 of them usable.
func NewRingBuffer(n int) *RingBuffer {
	if n < 2 {
		panic("usart: ring size must be >= 2")
	}
	return &RingBuffer{buf: make([]byte, n)}
}

// Size returns N, the length of the backing storage.
func (rb *RingBuffer) Size() int { return len(rb.buf) }

// Cap returns the number of bytes the ring can hold (N-1).
func (rb *RingBuffer) Cap() int { return len(rb.buf) - 1 }

func (rb *RingBuffer) next(i uint32) uint32 {
	i++
	if i == uint32(len(rb.buf)) {
		return 0
	}
	return i
}

// Used returns how many bytes are waiting in the ring.
func (rb *RingBuffer) Used() int {
	in := rb.insert.Load()
	ex := rb.extract.Load()
	if in >= ex {
		return int(in - ex)
	}
	return len(rb.buf) - int(ex-in)
}

// Free returns how many more bytes Put would accept.
func (rb *RingBuffer) Free() int { return rb.Cap() - rb.Used() }

// Empty reports insert == extract.
func (rb *RingBuffer) Empty() bool { return rb.insert.Load() == rb.extract.Load() }

// Full reports that the next Put would fail.
func (rb *RingBuffer) Full() bool { return rb.next(rb.insert.Load()) == rb.extract.Load() }

// Put stores a byte. If the buffer is full it returns false and leaves the
// ring untouched; the oldest contents are never overwritten.
func (rb *RingBuffer) Put(val byte) bool {
	in := rb.insert.Load()
	n := rb.next(in)
	if n == rb.extract.Load() {
		return false
	}
	rb.buf[in] = val   // 1) write data
	rb.insert.Store(n) // 2) publish
	return true
}

// Get returns the oldest byte. If the buffer is empty it returns (0, false).
func (rb *RingBuffer) Get() (byte, bool) {
	ex := rb.extract.Load()
	if ex == rb.insert.Load() {
		return 0, false
	}
	v := rb.buf[ex]               // 1) read current element
	rb.extract.Store(rb.next(ex)) // 2) publish consumption
	return v, true
}

// Clear drops any buffered bytes. It must only be called when neither side
// is active (before the interrupt is bound, or with it masked).
func (rb *RingBuffer) Clear() {
	rb.insert.Store(0)
	rb.extract.Store(0)
}

package usart

import "testing"

func TestRingBuffer_PutGetRoundTrip(t *testing.T) {
	rb := NewRingBuffer(8)
	for i := 0; i < 20; i++ { // wrap the indices a few times
		if !rb.Put(byte(i)) {
			t.Fatalf("put %d failed on empty ring", i)
		}
		got, ok := rb.Get()
		if !ok || got != byte(i) {
			t.Fatalf("get = %d,%v want %d,true", got, ok, i)
		}
		if !rb.Empty() {
			t.Fatalf("ring not empty after round trip %d", i)
		}
	}
}

func TestRingBuffer_LastSlotStaysFree(t *testing.T) {
	const n = 5
	rb := NewRingBuffer(n)
	if rb.Cap() != n-1 || rb.Size() != n {
		t.Fatalf("cap=%d size=%d, want %d,%d", rb.Cap(), rb.Size(), n-1, n)
	}
	for i := 0; i < n-1; i++ {
		if !rb.Put(byte('a' + i)) {
			t.Fatalf("put %d rejected before full", i)
		}
	}
	in, ex := rb.insert.Load(), rb.extract.Load()

	if rb.Put('z') {
		t.Fatalf("put accepted on a full ring")
	}
	if rb.insert.Load() != in || rb.extract.Load() != ex {
		t.Fatalf("indices moved on a rejected put")
	}
	if !rb.Full() || rb.Free() != 0 || rb.Used() != n-1 {
		t.Fatalf("full=%v free=%d used=%d", rb.Full(), rb.Free(), rb.Used())
	}
	for i := 0; i < n-1; i++ {
		b, ok := rb.Get()
		if !ok || b != byte('a'+i) {
			t.Fatalf("get %d = %q,%v want %q", i, b, ok, 'a'+i)
		}
	}
	if _, ok := rb.Get(); ok {
		t.Fatalf("get succeeded on empty ring")
	}
}

func TestRingBuffer_UsedAcrossWrap(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Put(1)
	rb.Put(2)
	rb.Get()
	rb.Get()
	rb.Put(3) // insert wraps to 0 after this put
	rb.Put(4)
	if rb.Used() != 2 || rb.Free() != 1 {
		t.Fatalf("used=%d free=%d, want 2,1", rb.Used(), rb.Free())
	}
	rb.Clear()
	if !rb.Empty() || rb.Used() != 0 {
		t.Fatalf("ring not empty after Clear")
	}
}

func TestNewRingBuffer_TooSmall(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for size 1")
		}
	}()
	NewRingBuffer(1)
}

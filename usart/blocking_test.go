package usart_test

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRead_NonBlockingSemantics(t *testing.T) {
	p, r := newSimPort(t, 16, 16)
	buf := make([]byte, 8)

	if n, err := p.Read(buf); err != nil || n != 0 {
		t.Fatalf("Read on empty: n=%d err=%v; want 0,nil", n, err)
	}

	for _, b := range []byte("ABC") {
		r.Receive(b)
		r.Service()
	}

	n, err := p.Read(buf)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 3 || string(buf[:n]) != "ABC" {
		t.Fatalf("got n=%d data=%q; want 3, \"ABC\"", n, string(buf[:n]))
	}

	if n, _ := p.Read(buf); n != 0 {
		t.Fatalf("expected empty after drain, got n=%d", n)
	}
}

func TestRecvByteContext_UnblocksOnReceive(t *testing.T) {
	p, r := newSimPort(t, 16, 16)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	var got byte
	var err error

	go func() {
		defer close(done)
		got, err = p.RecvByteContext(ctx)
	}()

	time.Sleep(20 * time.Millisecond)

	r.Receive('Z')
	r.Service()

	select {
	case <-done:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("timeout waiting for RecvByteContext")
	}

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 'Z' {
		t.Fatalf("got %q want %q", got, 'Z')
	}
}

func TestRecvSomeContext_ReadsSomeBytes(t *testing.T) {
	p, r := newSimPort(t, 16, 16)

	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()

	buf := make([]byte, 8)
	done := make(chan struct{})
	var n int
	var err error

	go func() {
		defer close(done)
		n, err = p.RecvSomeContext(ctx, buf)
	}()

	time.Sleep(10 * time.Millisecond)

	for _, b := range []byte("xyz") {
		r.Receive(b)
		r.Service()
	}

	select {
	case <-done:
	case <-time.After(400 * time.Millisecond):
		t.Fatal("timeout waiting for RecvSomeContext")
	}

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n <= 0 || string(buf[:n]) != "xyz"[:n] {
		t.Fatalf("unexpected data: n=%d data=%q", n, string(buf[:n]))
	}
}

func TestRecvFullContext_ReadsExactLen(t *testing.T) {
	p, r := newSimPort(t, 16, 16)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	want := []byte("HELLO")
	got := make([]byte, len(want))

	done := make(chan struct{})
	var n int
	var err error

	go func() {
		defer close(done)
		n, err = p.RecvFullContext(ctx, got)
	}()

	time.Sleep(10 * time.Millisecond)

	for i := range want {
		r.Receive(want[i])
		r.Service()
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(600 * time.Millisecond):
		t.Fatal("timeout waiting for RecvFullContext")
	}

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(want) || string(got) != string(want) {
		t.Fatalf("got %q (n=%d), want %q", string(got), n, string(want))
	}
}

func TestRecvFullContext_ShortOnDeadline(t *testing.T) {
	p, r := newSimPort(t, 16, 16)
	r.Receive('a')
	r.Service()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	buf := make([]byte, 4)
	n, err := p.RecvFullContext(ctx, buf)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if n != 1 || buf[0] != 'a' {
		t.Fatalf("n=%d buf=%q, want the one byte received", n, buf[:n])
	}
}

func TestWaitReadableContext_RespectsCancel(t *testing.T) {
	p, _ := newSimPort(t, 16, 16)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.WaitReadableContext(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for WaitReadableContext to return after cancel")
	}
}

func TestReadable_CoalescesNotifies(t *testing.T) {
	p, r := newSimPort(t, 16, 16)

	for _, b := range []byte("abc") {
		r.Receive(b)
		r.Service()
	}

	select {
	case <-p.Readable():
	default:
		t.Fatal("no Readable notification after receive")
	}
	select {
	case <-p.Readable():
		t.Fatal("notifications not coalesced")
	default:
	}
	if n := p.TryRead(make([]byte, 4)); n != 3 {
		t.Fatalf("TryRead = %d, want 3", n)
	}
}

func TestFlush_WaitsForTransmitterIdle(t *testing.T) {
	p, r := newSimPort(t, 16, 16)
	p.Write([]byte("hello"))

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Flush(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("Flush returned before any tick: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	for i := 0; i < 8; i++ {
		r.Tick()
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Flush: %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for Flush")
	}
	if p.TxRunning() || p.PendingTransmit() != 0 {
		t.Fatalf("running=%v pending=%d after Flush", p.TxRunning(), p.PendingTransmit())
	}
}

func TestFlush_ContextDeadline(t *testing.T) {
	p, _ := newSimPort(t, 16, 16)
	p.EnqueueByte('x') // never ticked out

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := p.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestFlush_IdleReturnsAtOnce(t *testing.T) {
	p, _ := newSimPort(t, 16, 16)
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush on idle port: %v", err)
	}
}

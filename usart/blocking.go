// usart/blocking.go

package usart

import (
	"context"
	"time"

	"github.com/jangala-dev/tinygo-usart/x/mathx"
)

// WaitReadableContext blocks until data is available or ctx is done.
func (p *Periph) WaitReadableContext(ctx context.Context) error {
	for {
		if p.Buffered() > 0 {
			return nil
		}
		p.dbgReadWait()
		select {
		case <-p.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RecvSomeContext blocks until at least one byte is available, then reads up
// to len(buf).
func (p *Periph) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for {
		if n := p.TryRead(buf); n > 0 {
			return n, nil
		}
		if err := p.WaitReadableContext(ctx); err != nil {
			return 0, err
		}
	}
}

// RecvByteContext blocks for a single byte or until ctx is done.
func (p *Periph) RecvByteContext(ctx context.Context) (byte, error) {
	for {
		if b, ok := p.rx.Get(); ok {
			return b, nil
		}
		if err := p.WaitReadableContext(ctx); err != nil {
			return 0, err
		}
	}
}

// RecvFullContext reads exactly len(buf) bytes unless ctx ends first, in
// which case it returns what it has with the context error.
func (p *Periph) RecvFullContext(ctx context.Context, buf []byte) (int, error) {
	read := 0
	for read < len(buf) {
		if n := p.TryRead(buf[read:]); n > 0 {
			read += n
			continue
		}
		if err := p.WaitReadableContext(ctx); err != nil {
			return read, err
		}
	}
	return read, nil
}

// Flush blocks until every queued byte has been handed to the hardware and
// the transmitter has reported empty: the TX ring is empty and txRunning is
// false. The ISR has no edge for "last byte gone" other than the final
// transmit-empty event, so Flush waits on Writable with a short timed poll
// as a backstop.
func (p *Periph) Flush(ctx context.Context) error {
	tick := p.drainTick()
	t := time.NewTimer(tick)
	defer t.Stop()
	for {
		if p.tx.Empty() && !p.txRunning.Load() {
			return nil
		}
		select {
		case <-p.txNotify:
		case <-t.C:
			t.Reset(tick)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drainTick is about two character times at the configured baud (10 bits
// per character), kept within [20µs, 10ms].
func (p *Periph) drainTick() time.Duration {
	if p.line.BaudRate == 0 {
		return 50 * time.Microsecond
	}
	perBit := time.Second / time.Duration(p.line.BaudRate)
	return mathx.Clamp(2*10*perBit, 20*time.Microsecond, 10*time.Millisecond)
}

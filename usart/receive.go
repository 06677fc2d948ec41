// usart/receive.go

package usart

// DequeueReceivedByte pops the oldest received byte. ok is false when
// nothing is waiting. The RX ring has a single consumer; no masking is
// needed because the ISR only advances the insert side.
func (p *Periph) DequeueReceivedByte() (b byte, ok bool) {
	return p.rx.Get()
}

// ReadByte reads a single byte from the software RX ring.
// If there is no data available, it returns ErrBufferEmpty.
func (p *Periph) ReadByte() (byte, error) {
	b, ok := p.rx.Get()
	if !ok {
		return 0, ErrBufferEmpty
	}
	return b, nil
}

// TryRead returns immediately with up to len(buf) bytes copied from the RX
// ring. A return value of 0 means "no data now".
func (p *Periph) TryRead(buf []byte) int {
	n := 0
	for n < len(buf) {
		b, ok := p.rx.Get()
		if !ok {
			break
		}
		buf[n] = b
		n++
	}
	return n
}

// Read is non-blocking, like machine.UART.Read: it returns 0, nil on an
// empty ring rather than waiting or reporting io.EOF.
func (p *Periph) Read(buf []byte) (int, error) {
	return p.TryRead(buf), nil
}

// Readable returns a coalesced notification for RX readiness.
// A receive interrupt that stores a byte will send on this channel.
func (p *Periph) Readable() <-chan struct{} { return p.notify }

// Writable returns a coalesced notification for TX progress: the ISR sends
// on it each time it services a transmit-empty event.
func (p *Periph) Writable() <-chan struct{} { return p.txNotify }

// usart/transmit.go

package usart

// EnqueueByte queues one byte for transmission. It never blocks and never
// reports failure: when the line is idle the byte goes straight to the
// transmit register, otherwise it is appended to the TX ring, and it is
// dropped if the ring is full. Must not be called from interrupt context.
func (p *Periph) EnqueueByte(b byte) {
	if !p.enqueue(b) {
		p.dbgTxDrop()
	}
}

// enqueue is EnqueueByte reporting whether the byte was accepted.
func (p *Periph) enqueue(b byte) bool {
	m := p.maskTx()
	defer m.release()

	if p.txRunning.Load() {
		// Transmitter busy: the next transmit-empty interrupt will pick it up.
		return p.tx.Put(b)
	}

	// Idle: we own the start. The direct write guarantees a transmit-empty
	// event that keeps the queue moving, so the source must end up enabled.
	p.txRunning.Store(true)
	p.regs.WriteData(b)
	m.arm()
	p.dbgDirectWrite()
	return true
}

// WriteByte queues c with EnqueueByte. It always returns nil.
func (p *Periph) WriteByte(c byte) error {
	p.EnqueueByte(c)
	return nil
}

// Write implements io.Writer on top of EnqueueByte. Bytes that do not fit
// are dropped; Write still reports len(p) so callers streaming telemetry are
// never stalled. Use TryWrite when back-pressure matters.
func (p *Periph) Write(data []byte) (int, error) {
	for _, b := range data {
		p.EnqueueByte(b)
	}
	return len(data), nil
}

// TryWrite queues bytes from data until the TX ring is full and returns how
// many were accepted. It never blocks and never drops an accepted byte.
func (p *Periph) TryWrite(data []byte) int {
	for i, b := range data {
		if !p.enqueue(b) {
			return i
		}
	}
	return len(data)
}

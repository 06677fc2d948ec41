// usart/isr.go

package usart

// HandleInterrupt services one USART interrupt. It is bound to the
// interrupt controller by Init and runs to completion without blocking.
//
// TX: on transmit-empty, move the next queued byte into the data register;
// when the ring is empty clear txRunning and mask the source until the next
// EnqueueByte re-arms it.
//
// RX: a clean received byte goes into the RX ring (the newest byte is
// dropped when the ring is full). The data register is read either way so
// reception does not stall.
//
// Errors: for each of overrun, noise and framing set in the status
// snapshot, read the data register once and count it. The byte is lost.
func (p *Periph) HandleInterrupt() {
	p.dbgISR()
	r := p.regs

	if r.TxInterruptEnabled() && r.Status().Has(StatusTxEmpty) {
		if b, ok := p.tx.Get(); ok {
			r.WriteData(b)
		} else {
			p.txRunning.Store(false)
			r.SetTxInterrupt(false)
		}
		signal(p.txNotify)
	}

	if !r.RxInterruptEnabled() {
		return
	}
	st := r.Status()
	if st.Has(StatusRxNotEmpty) && !st.Any(StatusLineErrors) {
		b := r.ReadData()
		ok := p.rx.Put(b)
		p.dbgOnByte(ok)
		if ok {
			signal(p.notify)
		}
		return
	}

	if st.Has(StatusOverrun) {
		_ = r.ReadData()
		p.overrun.Inc()
	}
	if st.Has(StatusNoise) {
		_ = r.ReadData()
		p.noise.Inc()
	}
	if st.Has(StatusFraming) {
		_ = r.ReadData()
		p.framing.Inc()
	}
}

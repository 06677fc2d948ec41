// usart/mask.go

package usart

// txMask masks the transmit-empty interrupt for the lifetime of a
// foreground critical section. The ISR is the only other writer of
// tx.extract and txRunning, so masking this one source is enough.
//
//	m := p.maskTx()
//	defer m.release()
//
// release restores the enable state seen by maskTx, or leaves the source
// enabled if arm was called (the foreground started a transmission).
type txMask struct {
	regs   Registers
	enable bool
}

func (p *Periph) maskTx() *txMask {
	was := p.regs.TxInterruptEnabled()
	p.regs.SetTxInterrupt(false)
	return &txMask{regs: p.regs, enable: was}
}

// arm requests that release leaves the interrupt enabled.
func (m *txMask) arm() { m.enable = true }

func (m *txMask) release() {
	if m.enable {
		m.regs.SetTxInterrupt(true)
	}
}

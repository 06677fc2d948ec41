//go:build usartdebug

package usart

// Called at ISR entry.
func (p *Periph) dbgISR() { p.stats.ISRCount.Inc() }

// Called per received clean byte with the Put() outcome.
func (p *Periph) dbgOnByte(putOK bool) {
	if !putOK {
		p.stats.RxDrops.Inc()
		return
	}
	p.stats.RxPuts.Inc()
	// track high-water mark
	used := uint32(p.rx.Used())
	for {
		hi := p.stats.RxMaxUsed.Load()
		if used <= hi {
			break
		}
		if p.stats.RxMaxUsed.CompareAndSwap(hi, used) {
			break
		}
	}
}

func (p *Periph) dbgTxDrop()      { p.stats.TxDrops.Inc() }
func (p *Periph) dbgDirectWrite() { p.stats.DirectWrites.Inc() }
func (p *Periph) dbgReadWait()    { p.stats.ReadWaits.Inc() }

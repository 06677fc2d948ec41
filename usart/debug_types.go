//go:build usartdebug

package usart

import "go.uber.org/atomic"

// Stats holds counters since the last reset. Normal builds carry none of
// them, so ring overflows are only visible here.
type Stats struct {
	// ISR-level
	ISRCount     atomic.Uint32 // number of ISR entries
	DirectWrites atomic.Uint32 // bytes written by the foreground to an idle transmitter

	// Rings
	TxDrops   atomic.Uint32 // EnqueueByte calls dropped on a full TX ring
	RxPuts    atomic.Uint32 // received bytes stored
	RxDrops   atomic.Uint32 // received bytes dropped on a full RX ring
	RxMaxUsed atomic.Uint32 // high-water mark of RX ring occupancy
	ReadWaits atomic.Uint32 // times a blocking receive had to wait
}

// StatsSnapshot is a plain copy of Stats.
type StatsSnapshot struct {
	ISRCount     uint32
	DirectWrites uint32
	TxDrops      uint32
	RxPuts       uint32
	RxDrops      uint32
	RxMaxUsed    uint32
	ReadWaits    uint32
}

func (p *Periph) DebugReset() {
	p.stats.ISRCount.Store(0)
	p.stats.DirectWrites.Store(0)
	p.stats.TxDrops.Store(0)
	p.stats.RxPuts.Store(0)
	p.stats.RxDrops.Store(0)
	p.stats.RxMaxUsed.Store(0)
	p.stats.ReadWaits.Store(0)
}

func (p *Periph) DebugStats() StatsSnapshot {
	return StatsSnapshot{
		ISRCount:     p.stats.ISRCount.Load(),
		DirectWrites: p.stats.DirectWrites.Load(),
		TxDrops:      p.stats.TxDrops.Load(),
		RxPuts:       p.stats.RxPuts.Load(),
		RxDrops:      p.stats.RxDrops.Load(),
		RxMaxUsed:    p.stats.RxMaxUsed.Load(),
		ReadWaits:    p.stats.ReadWaits.Load(),
	}
}

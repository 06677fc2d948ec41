// usart/stats.go

package usart

// LineErrors is a snapshot of the receive-line error counters. Ring
// overflows in either direction are not counted here.
type LineErrors struct {
	Overrun uint32
	Noise   uint32
	Framing uint32
}

// Total returns the sum of all three counters.
func (e LineErrors) Total() uint32 { return e.Overrun + e.Noise + e.Framing }

// OverrunErrors returns the number of overrun events seen by the ISR.
func (p *Periph) OverrunErrors() uint32 { return p.overrun.Load() }

// NoiseErrors returns the number of noise events seen by the ISR.
func (p *Periph) NoiseErrors() uint32 { return p.noise.Load() }

// FramingErrors returns the number of framing events seen by the ISR.
func (p *Periph) FramingErrors() uint32 { return p.framing.Load() }

// Errors returns all three counters. Each value is read atomically; the set
// is not a single atomic snapshot.
func (p *Periph) Errors() LineErrors {
	return LineErrors{
		Overrun: p.overrun.Load(),
		Noise:   p.noise.Load(),
		Framing: p.framing.Load(),
	}
}

//go:build !usartdebug

package usart

type Stats struct{}

type StatsSnapshot struct{}

func (p *Periph) DebugReset()               {}
func (p *Periph) DebugStats() StatsSnapshot { return StatsSnapshot{} }

//go:build !usartdebug

package usart

func (p *Periph) dbgISR()         {}
func (p *Periph) dbgOnByte(bool)  {}
func (p *Periph) dbgTxDrop()      {}
func (p *Periph) dbgDirectWrite() {}
func (p *Periph) dbgReadWait()    {}

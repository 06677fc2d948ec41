// usart/periph.go

// Package usart provides an interrupt-driven USART byte-queue engine for
// flight-control microcontrollers. Each instance owns a software TX ring and
// a software RX ring. The foreground never blocks: EnqueueByte either hands
// the byte straight to the idle transmitter or queues it, and drops it when
// the queue is full. The interrupt handler moves queued bytes into the
// transmit register, moves received bytes into the RX ring, and counts
// overrun, noise and framing errors.
//
// The register block is reached through the Registers interface so the same
// engine drives real STM32 peripherals (stm32f4.go) and the host simulator
// in usart/sim.
package usart

import (
	"go.uber.org/atomic"
	"tinygo.org/x/drivers"
)

// Periph is the per-instance driver state.
// Invariants (TX path):
//   - txRunning is true iff the transmit register holds a byte whose
//     transmit-empty interrupt has not been serviced yet.
//   - Foreground changes tx.insert and txRunning only with the TX interrupt
//     masked; the ISR changes tx.extract and txRunning only while it runs.
//
// Signalling:
//   - notify is coalesced and sent when the ISR stores a received byte.
//   - txNotify is coalesced and sent on every serviced transmit-empty event.
//     Callers must re-check state after waking.
type Periph struct {
	name string
	regs Registers // non-owning, fixed at construction

	tx        *RingBuffer // software TX ring drained by the ISR
	rx        *RingBuffer // software RX ring filled by the ISR
	txRunning atomic.Bool

	overrun atomic.Uint32
	noise   atomic.Uint32
	framing atomic.Uint32

	notify   chan struct{} // coalesced RX readiness notifications
	txNotify chan struct{} // coalesced TX progress notifications

	line LineConfig // last configured line settings (diagnostics, Flush timing)

	stats Stats // debug counters, empty unless built with usartdebug
}

var _ drivers.UART = (*Periph)(nil)

// New builds the state for one instance. txSize and rxSize are ring sizes N
// (N-1 usable bytes each); zero selects DefaultBufferSize.
func New(regs Registers, txSize, rxSize int) *Periph {
	if txSize == 0 {
		txSize = DefaultBufferSize
	}
	if rxSize == 0 {
		rxSize = DefaultBufferSize
	}
	return &Periph{
		regs:     regs,
		tx:       NewRingBuffer(txSize),
		rx:       NewRingBuffer(rxSize),
		notify:   make(chan struct{}, 1),
		txNotify: make(chan struct{}, 1),
		line:     DefaultLineConfig,
	}
}

// Name returns the port name given by the descriptor, if any.
func (p *Periph) Name() string { return p.name }

// Line returns the line settings applied at Init.
func (p *Periph) Line() LineConfig { return p.line }

// TxRunning reports whether the transmitter currently owns a byte.
func (p *Periph) TxRunning() bool { return p.txRunning.Load() }

// PendingTransmit returns the number of bytes queued behind the transmitter.
func (p *Periph) PendingTransmit() int { return p.tx.Used() }

// PendingReceive returns the number of received bytes waiting to be read.
func (p *Periph) PendingReceive() int { return p.rx.Used() }

// TxFree returns the remaining space in the software TX ring in bytes.
func (p *Periph) TxFree() int { return p.tx.Free() }

// Buffered returns the number of bytes currently stored in the software RX
// ring. Together with Read and Write it satisfies drivers.UART.
func (p *Periph) Buffered() int { return p.rx.Used() }

func signal(ch chan struct{}) bool {
	select {
	case ch <- struct{}{}:
		return true
	default:
		return false
	}
}

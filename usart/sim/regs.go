// Package sim is a host-side model of one USART register block. It
// implements usart.Hardware so the byte-queue engine can be driven and
// inspected without a microcontroller.
//
// Time only moves when the caller says so: Tick advances the line by one
// character and then services pending interrupts; Service services them
// without moving the line. The handler bound with BindInterrupt runs on the
// goroutine that called Tick or Service, never from inside a register
// access. As on a single core, foreground transmit calls and Tick/Service
// must not run concurrently; the receive side may be read from another
// goroutine.
package sim

import (
	"sync"

	"github.com/jangala-dev/tinygo-usart/usart"
)

// maxServiceLoops bounds how often Service re-enters the handler while a
// source stays pending.
const maxServiceLoops = 16

// Regs is a simulated USART: a transmit holding register in front of a
// shift register, a receive data register with its line-error flags, and
// the interrupt enables.
type Regs struct {
	mu sync.Mutex

	// OnTransmit, if set, is called with every byte that leaves the shift
	// register. It runs with no lock held.
	OnTransmit func(b byte)

	// NoFlowControl models an instance with no RTS/CTS pins: ConfigureMode
	// rejects a mode asking for flow control.
	NoFlowControl bool

	// control
	mode     usart.Mode
	line     usart.LineConfig
	enabled  bool // UE
	lineSet  bool
	txie     bool
	rxie     bool
	handler  func()
	priority uint8
	calls    []string

	// transmit side
	holding     byte
	holdingFull bool
	shift       byte
	shiftBusy   bool
	writes      []byte
	wire        []byte
	overwrites  int

	// receive side
	data byte
	rxne bool
	errs usart.Status
}

var _ usart.Hardware = (*Regs)(nil)

func New() *Regs { return &Regs{} }

// ---- usart.Registers ----

func (r *Regs) Status() usart.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

func (r *Regs) statusLocked() usart.Status {
	var s usart.Status
	if !r.holdingFull {
		s |= usart.StatusTxEmpty
	}
	if r.rxne {
		s |= usart.StatusRxNotEmpty
	}
	return s | r.errs
}

func (r *Regs) TxInterruptEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txie
}

func (r *Regs) SetTxInterrupt(enabled bool) {
	r.mu.Lock()
	r.txie = enabled
	r.mu.Unlock()
}

func (r *Regs) RxInterruptEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rxie
}

// WriteData loads the transmit holding register. Writing while it is still
// full replaces the byte and is counted in Overwrites.
func (r *Regs) WriteData(b byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, b)
	if r.holdingFull {
		r.overwrites++
	}
	r.holding = b
	r.holdingFull = true
}

// ReadData returns the receive data register and clears RXNE and the
// line-error flags.
func (r *Regs) ReadData() byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rxne = false
	r.errs = 0
	return r.data
}

// ---- usart.Hardware ----

func (r *Regs) ConfigureMode(m usart.Mode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.FlowControl && r.NoFlowControl {
		return usart.ErrNoFlowControl
	}
	r.mode = m
	r.calls = append(r.calls, "mode")
	return nil
}

func (r *Regs) ConfigureLine(cfg usart.LineConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.line = cfg
	r.lineSet = true
	r.rxie = r.mode.RxEnabled
	r.enabled = true
	r.calls = append(r.calls, "line")
	return nil
}

func (r *Regs) BindInterrupt(priority uint8, handler func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.lineSet {
		return usart.ErrNotConfigured
	}
	r.priority = priority
	r.handler = handler
	r.calls = append(r.calls, "irq")
	return nil
}

// ---- line side ----

// Tick advances the transmitter by one character time: the byte in the
// shift register reaches the wire and the holding register, if full, moves
// into the shift register. Pending interrupts are then serviced.
func (r *Regs) Tick() {
	r.mu.Lock()
	var (
		out  byte
		sent bool
	)
	if r.enabled && r.mode.TxEnabled {
		if r.shiftBusy {
			out, sent = r.shift, true
			r.wire = append(r.wire, out)
			r.shiftBusy = false
		}
		if r.holdingFull {
			r.shift = r.holding
			r.shiftBusy = true
			r.holdingFull = false
		}
	}
	hook := r.OnTransmit
	r.mu.Unlock()

	if sent && hook != nil {
		hook(out)
	}
	r.Service()
}

// Drain ticks until both transmit registers are empty or limit ticks have
// elapsed, and returns the number of ticks used. Callers check Idle to tell
// whether the transmitter finished; it may do so on the last tick.
func (r *Regs) Drain(limit int) int {
	n := 0
	for n < limit && !r.Idle() {
		r.Tick()
		n++
	}
	return n
}

// Idle reports whether nothing is waiting to go out on the wire.
func (r *Regs) Idle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.holdingFull && !r.shiftBusy
}

// Receive latches b into the receive data register. A byte arriving while
// the previous one is unread is lost and sets the overrun flag. It returns
// false when the receiver is off.
func (r *Regs) Receive(b byte) bool {
	return r.ReceiveWithErrors(b, 0)
}

// ReceiveWithErrors is Receive with noise, framing or overrun flags raised
// alongside the byte. Flags outside usart.StatusLineErrors are ignored.
func (r *Regs) ReceiveWithErrors(b byte, flags usart.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || !r.mode.RxEnabled {
		return false
	}
	r.errs |= flags & usart.StatusLineErrors
	if r.rxne {
		r.errs |= usart.StatusOverrun
		return true
	}
	r.data = b
	r.rxne = true
	return true
}

// Service invokes the bound handler while an enabled source is pending.
func (r *Regs) Service() {
	for i := 0; i < maxServiceLoops; i++ {
		r.mu.Lock()
		h := r.handler
		pending := r.pendingLocked()
		r.mu.Unlock()
		if h == nil || !pending {
			return
		}
		h()
	}
}

func (r *Regs) pendingLocked() bool {
	st := r.statusLocked()
	if r.txie && st.Has(usart.StatusTxEmpty) {
		return true
	}
	return r.rxie && st.Any(usart.StatusRxNotEmpty|usart.StatusLineErrors)
}

// ---- inspection ----

// Wire returns a copy of every byte transmitted so far.
func (r *Regs) Wire() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.wire...)
}

// Writes returns a copy of every value written to the data register, in
// order, whether or not it reached the wire.
func (r *Regs) Writes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.writes...)
}

// Overwrites counts data-register writes made while the holding register
// was still full.
func (r *Regs) Overwrites() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overwrites
}

// Calls returns the setup calls seen, in order ("mode", "line", "irq").
func (r *Regs) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *Regs) Line() usart.LineConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.line
}

func (r *Regs) Mode() usart.Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *Regs) Priority() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.priority
}

// Bound reports whether an interrupt handler has been registered.
func (r *Regs) Bound() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handler != nil
}

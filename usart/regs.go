// usart/regs.go

package usart

// Status is a snapshot of the USART status register, reduced to the flags
// the driver acts on.
type Status uint8

const (
	// StatusTxEmpty: the transmit holding register can take a new byte (TXE).
	StatusTxEmpty Status = 1 << iota
	// StatusRxNotEmpty: a received byte is waiting in the data register (RXNE).
	StatusRxNotEmpty
	// StatusOverrun: a byte arrived before the previous one was read (ORE).
	StatusOverrun
	// StatusNoise: noise was detected on the received frame (NE).
	StatusNoise
	// StatusFraming: the stop bit was not where it should be (FE).
	StatusFraming
)

// StatusLineErrors is the set of receive-line error flags.
const StatusLineErrors = StatusOverrun | StatusNoise | StatusFraming

// Has reports whether all bits in f are set.
func (s Status) Has(f Status) bool { return s&f == f }

// Any reports whether at least one bit in f is set.
func (s Status) Any(f Status) bool { return s&f != 0 }

func (s Status) String() string {
	if s == 0 {
		return "-"
	}
	names := [...]string{"TXE", "RXNE", "ORE", "NE", "FE"}
	out := ""
	for i, n := range names {
		if s&(1<<i) == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += n
	}
	return out
}

// Registers is the slice of a USART register block the byte-queue engine
// touches. Implementations are a real peripheral (stm32f4.go) or the
// simulator in usart/sim.
//
// Reading the data register clears RXNE and any pending line-error flags,
// as on the STM32 (SR read followed by DR read).
type Registers interface {
	Status() Status

	TxInterruptEnabled() bool
	SetTxInterrupt(enabled bool)
	RxInterruptEnabled() bool

	WriteData(b byte)
	ReadData() byte
}

// Hardware is a Registers block plus the one-shot setup calls performed
// once per instance by Init.
type Hardware interface {
	Registers

	// ConfigureLine programs baud rate and frame format, enables the
	// receive interrupt source and turns the peripheral on.
	ConfigureLine(cfg LineConfig) error
	// ConfigureMode enables the transmitter and/or receiver and optional
	// RTS/CTS flow control.
	ConfigureMode(m Mode) error
	// BindInterrupt registers handler with the interrupt controller at the
	// given priority. It must follow ConfigureLine.
	BindInterrupt(priority uint8, handler func()) error
}

// usart/init.go

package usart

// DefaultIRQPriority is the priority used when a descriptor leaves it zero
// (middle of the Cortex-M range).
const DefaultIRQPriority = 0x80

// maxBufferSize keeps RAM use sane on small parts.
const maxBufferSize = 1 << 14

// Descriptor is everything Init needs to bring one instance up. The
// hardware-specific half (register block, clock gate, vector, pins) lives in
// the Hardware value passed alongside it.
//
// Mode is taken as given: the zero Mode (both directions off) is a valid,
// inert configuration, so use DefaultMode explicitly for a normal port.
type Descriptor struct {
	Name         string
	Line         LineConfig
	Mode         Mode
	TxBufferSize int   // ring size N, N-1 usable; 0 selects DefaultBufferSize
	RxBufferSize int   // as TxBufferSize
	IRQPriority  uint8 // 0 selects DefaultIRQPriority
}

// DefaultDescriptor returns a 115200 8N1, TX+RX, no flow control port with
// default ring sizes.
func DefaultDescriptor(name string) Descriptor {
	return Descriptor{Name: name, Line: DefaultLineConfig, Mode: DefaultMode}
}

func (d Descriptor) withDefaults() Descriptor {
	d.Line = d.Line.withDefaults()
	if d.TxBufferSize == 0 {
		d.TxBufferSize = DefaultBufferSize
	}
	if d.RxBufferSize == 0 {
		d.RxBufferSize = DefaultBufferSize
	}
	if d.IRQPriority == 0 {
		d.IRQPriority = DefaultIRQPriority
	}
	return d
}

// Validate checks a descriptor after defaults are applied.
func (d Descriptor) Validate() error {
	if err := d.Line.Validate(); err != nil {
		return err
	}
	if d.TxBufferSize < 2 || d.TxBufferSize > maxBufferSize ||
		d.RxBufferSize < 2 || d.RxBufferSize > maxBufferSize {
		return ErrInvalidBufferSize
	}
	return nil
}

// Init is the one routine behind every instance: it builds the Periph for
// d, then runs the hardware setup in the order the peripheral needs it:
//  1. ConfigureMode (directions, flow control)
//  2. ConfigureLine (baud/format, RX interrupt source, enable)
//  3. BindInterrupt (after the line is configured)
//
// The rings are empty and txRunning is false when the interrupt is bound.
func Init(d Descriptor, hw Hardware) (*Periph, error) {
	d = d.withDefaults()
	if err := d.Validate(); err != nil {
		return nil, &InitError{Port: d.Name, Op: "validate", Err: err}
	}

	p := New(hw, d.TxBufferSize, d.RxBufferSize)
	p.name = d.Name
	p.line = d.Line

	if err := hw.ConfigureMode(d.Mode); err != nil {
		return nil, &InitError{Port: d.Name, Op: "mode", Err: err}
	}
	if err := hw.ConfigureLine(d.Line); err != nil {
		return nil, &InitError{Port: d.Name, Op: "line", Err: err}
	}
	if err := hw.BindInterrupt(d.IRQPriority, p.HandleInterrupt); err != nil {
		return nil, &InitError{Port: d.Name, Op: "irq", Err: err}
	}
	return p, nil
}

// usart/config.go

package usart

// Parity defines the parity setting used for USART communication.
type Parity uint8

const (
	// ParityNone disables parity generation and checking (the most common setting).
	ParityNone Parity = iota
	// ParityEven sets even parity (total number of 1 bits is even).
	ParityEven
	// ParityOdd sets odd parity (total number of 1 bits is odd).
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "invalid"
	}
}

// LineConfig is the line rate and frame format.
type LineConfig struct {
	BaudRate uint32
	DataBits uint8 // 7..9, excluding the parity bit; 0 means 8
	StopBits uint8 // 1 or 2; 0 means 1
	Parity   Parity
}

// DefaultLineConfig is 115200 8N1.
var DefaultLineConfig = LineConfig{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: ParityNone}

func (c LineConfig) withDefaults() LineConfig {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultLineConfig.BaudRate
	}
	if c.DataBits == 0 {
		c.DataBits = 8
	}
	if c.StopBits == 0 {
		c.StopBits = 1
	}
	return c
}

// Validate checks a filled-in line configuration.
func (c LineConfig) Validate() error {
	if c.BaudRate == 0 {
		return ErrInvalidBaud
	}
	if c.DataBits < 7 || c.DataBits > 9 {
		return ErrInvalidDataBits
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return ErrInvalidStopBits
	}
	if c.Parity > ParityOdd {
		return ErrInvalidParity
	}
	// The parity bit is carried inside the 8 or 9 bit data word on STM32, so
	// 7 bits need parity and 9 bits cannot have it.
	if c.DataBits == 7 && c.Parity == ParityNone {
		return ErrInvalidDataBits
	}
	if c.DataBits == 9 && c.Parity != ParityNone {
		return ErrInvalidDataBits
	}
	return nil
}

// Mode selects which directions are enabled. Both false is a valid, inert
// configuration.
type Mode struct {
	TxEnabled   bool
	RxEnabled   bool
	FlowControl bool // hardware RTS/CTS
}

// DefaultMode enables both directions without flow control.
var DefaultMode = Mode{TxEnabled: true, RxEnabled: true}

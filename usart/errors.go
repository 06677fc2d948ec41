// usart/errors.go

package usart

import "errors"

var (
	ErrBufferEmpty = errors.New("usart: buffer empty")

	// Init / configuration
	ErrInvalidBaud       = errors.New("usart: invalid baud rate")
	ErrInvalidDataBits   = errors.New("usart: invalid data bits")
	ErrInvalidStopBits   = errors.New("usart: invalid stop bits")
	ErrInvalidParity     = errors.New("usart: invalid parity")
	ErrInvalidBufferSize = errors.New("usart: invalid buffer size")
	ErrUnknownPort       = errors.New("usart: unknown port")
	ErrNotConfigured     = errors.New("usart: interrupt bound before line configured")
	ErrNoFlowControl     = errors.New("usart: flow control requested without RTS/CTS pins")
)

// InitError keeps the port and the setup step that failed.
type InitError struct {
	Port string
	Op   string // "validate", "mode", "line", "irq", "lookup"
	Err  error
}

func (e *InitError) Error() string {
	msg := e.Port + ": " + e.Op
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InitError) Unwrap() error { return e.Err }

// Package boards holds the per-board USART assignments. Exactly one board
// is compiled in, chosen by build tag (apogee, lisa_mx); without one the
// host board is used.
package boards

import "github.com/jangala-dev/tinygo-usart/usart"

// Port binds a hardware instance name to the descriptor it is brought up
// with.
type Port struct {
	Name       string
	Descriptor usart.Descriptor
}

type Board struct {
	Name  string
	Ports []Port
}

// Lookup resolves a port name to its hardware, usually
// usart.HardwareByName on target or a simulator on the host.
type Lookup func(name string) (usart.Hardware, bool)

// Port returns the port with the given name.
func (b Board) Port(name string) (Port, bool) {
	for _, p := range b.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Init brings up every port on the board in order and returns the
// instances by name. The first failure stops it; ports initialised before
// it stay running.
func (b Board) Init(lookup Lookup) (map[string]*usart.Periph, error) {
	out := make(map[string]*usart.Periph, len(b.Ports))
	for _, port := range b.Ports {
		hw, ok := lookup(port.Name)
		if !ok {
			return out, &usart.InitError{Port: port.Name, Op: "lookup", Err: usart.ErrUnknownPort}
		}
		d := port.Descriptor
		if d.Name == "" {
			d.Name = port.Name
		}
		p, err := usart.Init(d, hw)
		if err != nil {
			return out, err
		}
		out[port.Name] = p
	}
	return out, nil
}

func port(name string, baud uint32, mode usart.Mode) Port {
	d := usart.DefaultDescriptor(name)
	d.Line.BaudRate = baud
	d.Mode = mode
	return Port{Name: name, Descriptor: d}
}

var (
	txOnly = usart.Mode{TxEnabled: true}
	duplex = usart.DefaultMode
	flow   = usart.Mode{TxEnabled: true, RxEnabled: true, FlowControl: true}
)

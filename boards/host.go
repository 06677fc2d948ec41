//go:build !apogee && !lisa_mx

package boards

// Current is a two-port board for host builds and tests.
var Current = Board{
	Name: "host",
	Ports: []Port{
		port("usart1", 115200, duplex),
		port("usart2", 57600, txOnly),
	},
}

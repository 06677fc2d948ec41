//go:build lisa_mx

package boards

// Current is the Lisa/MX autopilot.
var Current = Board{
	Name: "lisa_mx",
	Ports: []Port{
		port("usart1", 38400, duplex), // GPS
		port("usart2", 57600, flow),   // telemetry with RTS/CTS
		port("usart3", 115200, duplex),
	},
}

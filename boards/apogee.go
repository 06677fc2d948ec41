//go:build apogee

package boards

// Current is the Apogee autopilot (STM32F405).
var Current = Board{
	Name: "apogee",
	Ports: []Port{
		port("usart1", 57600, duplex),  // telemetry modem
		port("usart2", 115200, txOnly), // debug console
		port("usart3", 38400, duplex),  // GPS
		port("usart6", 115200, duplex), // spektrum receiver
	},
}

// usart/stm32f4_instances.go
//go:build stm32f4

package usart

import (
	"device/stm32"
	"machine"
	"runtime/interrupt"
)

// Bus clocks set up by the TinyGo runtime for a 168 MHz STM32F4.
const (
	apb1Clock = 42000000
	apb2Clock = 84000000
)

// Alternate functions for the USART and UART pins.
const (
	af7USART123 = 7
	af8USART456 = 8
)

var (
	USART1 = &HW{
		Name:        "usart1",
		Bus:         stm32.USART1,
		ClockEnable: &stm32.RCC.APB2ENR,
		ClockBit:    stm32.RCC_APB2ENR_USART1EN,
		PClk:        apb2Clock,
		TX:          machine.PA9,
		RX:          machine.PA10,
		RTS:         machine.PA12,
		CTS:         machine.PA11,
		AltFunc:     af7USART123,
	}
	USART2 = &HW{
		Name:        "usart2",
		Bus:         stm32.USART2,
		ClockEnable: &stm32.RCC.APB1ENR,
		ClockBit:    stm32.RCC_APB1ENR_USART2EN,
		PClk:        apb1Clock,
		TX:          machine.PA2,
		RX:          machine.PA3,
		RTS:         machine.PA1,
		CTS:         machine.PA0,
		AltFunc:     af7USART123,
	}
	USART3 = &HW{
		Name:        "usart3",
		Bus:         stm32.USART3,
		ClockEnable: &stm32.RCC.APB1ENR,
		ClockBit:    stm32.RCC_APB1ENR_USART3EN,
		PClk:        apb1Clock,
		TX:          machine.PB10,
		RX:          machine.PB11,
		RTS:         machine.PB14,
		CTS:         machine.PB13,
		AltFunc:     af7USART123,
	}
	USART6 = &HW{
		Name:        "usart6",
		Bus:         stm32.USART6,
		ClockEnable: &stm32.RCC.APB2ENR,
		ClockBit:    stm32.RCC_APB2ENR_USART6EN,
		PClk:        apb2Clock,
		TX:          machine.PC6,
		RX:          machine.PC7,
		RTS:         machine.PG8,
		CTS:         machine.PG15,
		AltFunc:     af8USART456,
	}

	// UART4 and UART5 have no RTS/CTS lines.
	UART4 = &HW{
		Name:        "uart4",
		Bus:         stm32.UART4,
		ClockEnable: &stm32.RCC.APB1ENR,
		ClockBit:    stm32.RCC_APB1ENR_UART4EN,
		PClk:        apb1Clock,
		TX:          machine.PA0,
		RX:          machine.PA1,
		RTS:         machine.NoPin,
		CTS:         machine.NoPin,
		AltFunc:     af8USART456,
	}
	UART5 = &HW{
		Name:        "uart5",
		Bus:         stm32.UART5,
		ClockEnable: &stm32.RCC.APB1ENR,
		ClockBit:    stm32.RCC_APB1ENR_UART5EN,
		PClk:        apb1Clock,
		TX:          machine.PC12,
		RX:          machine.PD2,
		RTS:         machine.NoPin,
		CTS:         machine.NoPin,
		AltFunc:     af8USART456,
	}
)

func init() {
	USART1.intr = interrupt.New(stm32.IRQ_USART1, handleUSART1)
	USART2.intr = interrupt.New(stm32.IRQ_USART2, handleUSART2)
	USART3.intr = interrupt.New(stm32.IRQ_USART3, handleUSART3)
	USART6.intr = interrupt.New(stm32.IRQ_USART6, handleUSART6)
	UART4.intr = interrupt.New(stm32.IRQ_UART4, handleUART4)
	UART5.intr = interrupt.New(stm32.IRQ_UART5, handleUART5)
}

func handleUSART1(interrupt.Interrupt) { USART1.dispatch() }
func handleUSART2(interrupt.Interrupt) { USART2.dispatch() }
func handleUSART3(interrupt.Interrupt) { USART3.dispatch() }
func handleUSART6(interrupt.Interrupt) { USART6.dispatch() }
func handleUART4(interrupt.Interrupt) { UART4.dispatch() }
func handleUART5(interrupt.Interrupt) { UART5.dispatch() }

// HardwareByName returns the instance called name, if this part has it.
func HardwareByName(name string) (Hardware, bool) {
	switch name {
	case "usart1":
		return USART1, true
	case "usart2":
		return USART2, true
	case "usart3":
		return USART3, true
	case "usart6":
		return USART6, true
	case "uart4":
		return UART4, true
	case "uart5":
		return UART5, true
	}
	return nil, false
}

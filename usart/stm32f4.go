// usart/stm32f4.go
//go:build stm32f4

package usart

import (
	"device/stm32"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"

	"github.com/jangala-dev/tinygo-usart/x/mathx"
)

// USART register bits. The layout is shared by the F1 and F4 families.
const (
	srFE   = 1 << 1
	srNE   = 1 << 2
	srORE  = 1 << 3
	srRXNE = 1 << 5
	srTXE  = 1 << 7

	cr1RE     = 1 << 2
	cr1TE     = 1 << 3
	cr1RXNEIE = 1 << 5
	cr1TXEIE  = 1 << 7
	cr1PS     = 1 << 9
	cr1PCE    = 1 << 10
	cr1M      = 1 << 12
	cr1UE     = 1 << 13

	cr2StopMask = 3 << 12
	cr2Stop2    = 2 << 12

	cr3RTSE = 1 << 8
	cr3CTSE = 1 << 9

	brrMin = 16
	brrMax = 0xFFFF
)

// HW describes one STM32 USART instance: register block, clock gate,
// interrupt vector and pin assignment. It implements Hardware.
type HW struct {
	Name        string
	Bus         *stm32.USART_Type
	ClockEnable *volatile.Register32 // RCC APBxENR
	ClockBit    uint32
	PClk        uint32 // peripheral clock feeding the baud generator, Hz

	TX, RX, RTS, CTS machine.Pin
	AltFunc          uint8

	intr    interrupt.Interrupt // created in init with a constant IRQ number
	handler func()
}

var _ Hardware = (*HW)(nil)

// Status translates SR into the portable flag set.
func (hw *HW) Status() Status {
	sr := hw.Bus.SR.Get()
	var s Status
	if sr&srTXE != 0 {
		s |= StatusTxEmpty
	}
	if sr&srRXNE != 0 {
		s |= StatusRxNotEmpty
	}
	if sr&srORE != 0 {
		s |= StatusOverrun
	}
	if sr&srNE != 0 {
		s |= StatusNoise
	}
	if sr&srFE != 0 {
		s |= StatusFraming
	}
	return s
}

// TxInterruptEnabled reports CR1.TXEIE.
func (hw *HW) TxInterruptEnabled() bool { return hw.Bus.CR1.HasBits(cr1TXEIE) }

// SetTxInterrupt sets or clears CR1.TXEIE.
func (hw *HW) SetTxInterrupt(enabled bool) {
	if enabled {
		hw.Bus.CR1.SetBits(cr1TXEIE)
	} else {
		hw.Bus.CR1.ClearBits(cr1TXEIE)
	}
}

// RxInterruptEnabled reports CR1.RXNEIE.
func (hw *HW) RxInterruptEnabled() bool { return hw.Bus.CR1.HasBits(cr1RXNEIE) }

// WriteData loads DR, which starts or queues a transmission.
func (hw *HW) WriteData(b byte) { hw.Bus.DR.Set(uint32(b)) }

// ReadData reads DR; after a Status call this clears RXNE and the error flags.
func (hw *HW) ReadData() byte { return byte(hw.Bus.DR.Get()) }

// ConfigureMode gates the clock on, muxes the pins for the enabled
// directions and sets TE/RE and RTS/CTS. Both directions off leaves the
// block clocked but inert. Flow control on an instance without RTS and CTS
// pins fails with ErrNoFlowControl before anything is touched.
func (hw *HW) ConfigureMode(m Mode) error {
	if m.FlowControl && (hw.RTS == machine.NoPin || hw.CTS == machine.NoPin) {
		return ErrNoFlowControl
	}
	hw.ClockEnable.SetBits(hw.ClockBit)

	if m.TxEnabled {
		hw.muxPin(hw.TX, machine.PinModeUARTTX)
	}
	if m.RxEnabled {
		hw.muxPin(hw.RX, machine.PinModeUARTRX)
	}

	cr1 := hw.Bus.CR1.Get() &^ (cr1TE | cr1RE)
	if m.TxEnabled {
		cr1 |= cr1TE
	}
	if m.RxEnabled {
		cr1 |= cr1RE
	}
	hw.Bus.CR1.Set(cr1)

	if m.FlowControl {
		hw.muxPin(hw.RTS, machine.PinModeUARTTX)
		hw.muxPin(hw.CTS, machine.PinModeUARTRX)
		hw.Bus.CR3.SetBits(cr3RTSE | cr3CTSE)
	} else {
		hw.Bus.CR3.ClearBits(cr3RTSE | cr3CTSE)
	}
	return nil
}

func (hw *HW) muxPin(p machine.Pin, mode machine.PinMode) {
	if p == machine.NoPin {
		return
	}
	p.ConfigureAltFunc(machine.PinConfig{Mode: mode}, hw.AltFunc)
}

// ConfigureLine programs BRR and the frame format, enables the receive
// interrupt source when the receiver is on, and sets UE.
func (hw *HW) ConfigureLine(cfg LineConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 1) Disable while reprogramming.
	hw.Bus.CR1.ClearBits(cr1UE)

	// 2) Baud: oversampling by 16, so BRR is PCLK/baud in 1/16 units.
	hw.Bus.BRR.Set(brr(hw.PClk, cfg.BaudRate))

	// 3) Format. M selects a 9 bit word, which includes the parity bit.
	cr1 := hw.Bus.CR1.Get() &^ (cr1M | cr1PCE | cr1PS | cr1TXEIE)
	word := cfg.DataBits
	if cfg.Parity != ParityNone {
		word++
		cr1 |= cr1PCE
		if cfg.Parity == ParityOdd {
			cr1 |= cr1PS
		}
	}
	if word == 9 {
		cr1 |= cr1M
	}

	cr2 := hw.Bus.CR2.Get() &^ cr2StopMask
	if cfg.StopBits == 2 {
		cr2 |= cr2Stop2
	}
	hw.Bus.CR2.Set(cr2)

	// 4) RX interrupt only when receiving; TXEIE stays off until the first
	// byte is queued.
	if cr1&cr1RE != 0 {
		cr1 |= cr1RXNEIE
	} else {
		cr1 &^= cr1RXNEIE
	}
	hw.Bus.CR1.Set(cr1 | cr1UE)

	// 5) Discard anything latched while the block was reconfigured.
	_ = hw.Bus.SR.Get()
	_ = hw.Bus.DR.Get()
	return nil
}

// BindInterrupt routes the vector to handler and enables it in the NVIC.
func (hw *HW) BindInterrupt(priority uint8, handler func()) error {
	if !hw.Bus.CR1.HasBits(cr1UE) {
		return ErrNotConfigured
	}
	hw.handler = handler
	hw.intr.SetPriority(priority)
	hw.intr.Enable()
	return nil
}

func (hw *HW) dispatch() {
	if hw.handler != nil {
		hw.handler()
	}
}

func brr(pclk, baud uint32) uint32 {
	return mathx.Clamp(mathx.RoundDiv(pclk, baud), brrMin, brrMax)
}

// Open initialises the USART named by d.Name ("usart1", ...) with d.
func Open(d Descriptor) (*Periph, error) {
	hw, ok := HardwareByName(d.Name)
	if !ok {
		return nil, &InitError{Port: d.Name, Op: "lookup", Err: ErrUnknownPort}
	}
	return Init(d, hw)
}

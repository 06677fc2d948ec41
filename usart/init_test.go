package usart_test

import (
	"errors"
	"testing"

	"github.com/jangala-dev/tinygo-usart/usart"
	"github.com/jangala-dev/tinygo-usart/usart/sim"
)

var errBoom = errors.New("boom")

// lineFails is a simulator whose ConfigureLine always fails.
type lineFails struct{ *sim.Regs }

func (lineFails) ConfigureLine(usart.LineConfig) error { return errBoom }

func TestInit_ValidationTouchesNoHardware(t *testing.T) {
	d := usart.DefaultDescriptor("usart1")
	d.Line.DataBits = 6
	r := sim.New()

	p, err := usart.Init(d, r)
	if p != nil || !errors.Is(err, usart.ErrInvalidDataBits) {
		t.Fatalf("Init = %v,%v want nil,ErrInvalidDataBits", p, err)
	}
	var ie *usart.InitError
	if !errors.As(err, &ie) || ie.Op != "validate" || ie.Port != "usart1" {
		t.Fatalf("err = %#v, want validate InitError", err)
	}
	if len(r.Calls()) != 0 {
		t.Fatalf("hardware calls on invalid descriptor: %v", r.Calls())
	}
}

func TestInit_BufferSizeLimits(t *testing.T) {
	for _, size := range []int{1, 1<<14 + 1} {
		d := usart.DefaultDescriptor("usart1")
		d.RxBufferSize = size
		if _, err := usart.Init(d, sim.New()); !errors.Is(err, usart.ErrInvalidBufferSize) {
			t.Fatalf("size %d: err = %v, want ErrInvalidBufferSize", size, err)
		}
	}
}

func TestInit_HardwareErrorIsWrapped(t *testing.T) {
	hw := lineFails{sim.New()}

	_, err := usart.Init(usart.DefaultDescriptor("usart3"), hw)
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
	if got := err.Error(); got != "usart3: line: boom" {
		t.Fatalf("message = %q", got)
	}
	if hw.Bound() {
		t.Fatalf("interrupt bound after ConfigureLine failed")
	}
}

func TestInit_FlowControlWithoutPins(t *testing.T) {
	r := sim.New()
	r.NoFlowControl = true
	d := usart.DefaultDescriptor("uart4")
	d.Mode.FlowControl = true

	_, err := usart.Init(d, r)
	if !errors.Is(err, usart.ErrNoFlowControl) {
		t.Fatalf("err = %v, want ErrNoFlowControl", err)
	}
	var ie *usart.InitError
	if !errors.As(err, &ie) || ie.Op != "mode" || ie.Port != "uart4" {
		t.Fatalf("err = %#v, want mode InitError for uart4", err)
	}
	if r.Bound() || len(r.Calls()) != 0 {
		t.Fatalf("hardware touched after refusal: bound=%v calls=%v", r.Bound(), r.Calls())
	}

	d.Mode.FlowControl = false
	if _, err := usart.Init(d, sim.New()); err != nil {
		t.Fatalf("Init without flow control: %v", err)
	}
}

func TestInit_CustomPriorityAndSizes(t *testing.T) {
	d := usart.DefaultDescriptor("usart2")
	d.IRQPriority = 0x40
	d.TxBufferSize = 32
	r := sim.New()

	p, err := usart.Init(d, r)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if r.Priority() != 0x40 {
		t.Fatalf("priority = %#x, want 0x40", r.Priority())
	}
	if p.TxFree() != 31 {
		t.Fatalf("TxFree = %d, want 31", p.TxFree())
	}
	if p.Name() != "usart2" || p.Line() != usart.DefaultLineConfig {
		t.Fatalf("name=%q line=%+v", p.Name(), p.Line())
	}
}

func TestInit_ZeroModeIsInert(t *testing.T) {
	r := sim.New()
	p, err := usart.Init(usart.Descriptor{Name: "usart6"}, r)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if r.Receive('x') {
		t.Fatalf("receiver accepted a byte with RX disabled")
	}
	p.EnqueueByte('y')
	r.Tick()
	r.Tick()
	if len(r.Wire()) != 0 {
		t.Fatalf("wire %q with TX disabled", r.Wire())
	}
}

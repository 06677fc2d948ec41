package sim

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jangala-dev/tinygo-usart/usart"
)

func TestScript_BurstOverflow(t *testing.T) {
	d := usart.DefaultDescriptor("usart1")
	d.TxBufferSize = 3 // two usable slots behind the data register
	p, r := newPort(t, d)

	script := `
# first byte goes straight to the data register, 0x44 is dropped
send 0x41 0x42 0x43 0x44
expect-pending 2 0
expect-running true
drain
expect-wire A B C
expect-running false
`
	if err := RunScript(strings.NewReader(script), p, r, &bytes.Buffer{}); err != nil {
		t.Fatalf("script: %v", err)
	}
	if r.TxInterruptEnabled() {
		t.Fatalf("TX interrupt left enabled")
	}
}

func TestScript_LineErrors(t *testing.T) {
	p, r := newPort(t, usart.DefaultDescriptor("usart2"))

	script := `
rx 0x10
rx 0x11 ne
rx 0x12 fe
rx 0x13 ore
rx 0x14 ne fe
expect-errors 1 2 2
expect-pending 0 1
expect-rx 0x10
stats
`
	var out bytes.Buffer
	if err := RunScript(strings.NewReader(script), p, r, &out); err != nil {
		t.Fatalf("script: %v", err)
	}
	if !strings.Contains(out.String(), "ore=1 ne=2 fe=2") {
		t.Fatalf("stats output %q", out.String())
	}
}

func TestScript_TextAndRecv(t *testing.T) {
	p, r := newPort(t, usart.DefaultDescriptor("usart3"))

	script := `
send "hi there"
drain
expect-wire "hi there"
rx ok
recv
`
	var out bytes.Buffer
	if err := RunScript(strings.NewReader(script), p, r, &out); err != nil {
		t.Fatalf("script: %v", err)
	}
	if got := out.String(); got != "recv 6f 6b\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestScript_FailureNamesLine(t *testing.T) {
	p, r := newPort(t, usart.DefaultDescriptor("usart1"))

	err := RunScript(strings.NewReader("send 1\nexpect-wire 2\n"), p, r, &bytes.Buffer{})
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ScriptError", err)
	}
	if se.Line != 2 || se.Cmd != "expect-wire" {
		t.Fatalf("got line %d cmd %q, want line 2 expect-wire", se.Line, se.Cmd)
	}
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("err = %v, want ErrMismatch", err)
	}
}

func TestScript_BadInput(t *testing.T) {
	p, r := newPort(t, usart.DefaultDescriptor("usart1"))

	cases := map[string]error{
		"bogus\n":              ErrUnknownCommand,
		"send 0x100\n":         ErrBadArgs,
		"tick x\n":             ErrBadArgs,
		"expect-errors 1 2\n":  ErrBadArgs,
		"expect-running maybe": ErrBadArgs,
	}
	for in, want := range cases {
		if err := RunScript(strings.NewReader(in), p, r, &bytes.Buffer{}); !errors.Is(err, want) {
			t.Fatalf("%q: err = %v, want %v", in, err, want)
		}
	}
}

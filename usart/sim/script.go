package sim

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/shlex"

	"github.com/jangala-dev/tinygo-usart/usart"
)

// drainLimit caps the ticks a single drain command may spend.
const drainLimit = 1 << 16

// RunScript executes a line-oriented scenario against p, which must have
// been initialised on regs. Lines are split with shell rules, so quoted
// text and # comments work as expected.
//
//	send <item>...              enqueue bytes
//	tick [n]                    advance the line n character times (default 1)
//	drain                       tick until the transmitter is idle
//	rx <item>... [ore|ne|fe]    receive bytes, optionally with line errors
//	recv                        read and print everything received
//	stats                       print queue and error state
//	expect-wire <item>...       the wire so far equals the bytes given
//	expect-rx <item>...         the next received bytes equal those given
//	expect-errors <ore> <ne> <fe>
//	expect-pending <tx> <rx>
//	expect-running true|false
//
// An item is a number (0x41, 65, 0b1000001) that fits a byte, or any other
// word taken as text. The first failing line stops the run and is named in
// the error.
func RunScript(r io.Reader, p *usart.Periph, regs *Regs, out io.Writer) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		args, err := shlex.Split(sc.Text())
		if err != nil {
			return &ScriptError{Line: line, Err: err}
		}
		if len(args) == 0 {
			continue
		}
		if err := runCommand(args, p, regs, out); err != nil {
			return &ScriptError{Line: line, Cmd: args[0], Err: err}
		}
	}
	return sc.Err()
}

// ScriptError reports the line and command that stopped a script.
type ScriptError struct {
	Line int
	Cmd  string
	Err  error
}

func (e *ScriptError) Error() string {
	if e.Cmd == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Cmd, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgs        = errors.New("bad arguments")
	ErrMismatch       = errors.New("mismatch")
)

func runCommand(args []string, p *usart.Periph, regs *Regs, out io.Writer) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "send":
		b, err := parseItems(rest)
		if err != nil {
			return err
		}
		for _, c := range b {
			p.EnqueueByte(c)
		}

	case "tick":
		n := 1
		if len(rest) > 1 {
			return ErrBadArgs
		}
		if len(rest) == 1 {
			v, err := strconv.Atoi(rest[0])
			if err != nil || v < 0 {
				return ErrBadArgs
			}
			n = v
		}
		for i := 0; i < n; i++ {
			regs.Tick()
		}

	case "drain":
		regs.Drain(drainLimit)
		if !regs.Idle() {
			return errors.New("transmitter did not go idle")
		}

	case "rx":
		items, flags := splitFlags(rest)
		b, err := parseItems(items)
		if err != nil {
			return err
		}
		for _, c := range b {
			if !regs.ReceiveWithErrors(c, flags) {
				return errors.New("receiver disabled")
			}
			regs.Service()
		}

	case "recv":
		var got []byte
		for {
			c, ok := p.DequeueReceivedByte()
			if !ok {
				break
			}
			got = append(got, c)
		}
		fmt.Fprintf(out, "recv % x\n", got)

	case "stats":
		e := p.Errors()
		fmt.Fprintf(out, "tx pending=%d running=%t rx pending=%d ore=%d ne=%d fe=%d wire=%d\n",
			p.PendingTransmit(), p.TxRunning(), p.PendingReceive(),
			e.Overrun, e.Noise, e.Framing, len(regs.Wire()))

	case "expect-wire":
		want, err := parseItems(rest)
		if err != nil {
			return err
		}
		if got := regs.Wire(); !bytes.Equal(got, want) {
			return fmt.Errorf("%w: wire % x, want % x", ErrMismatch, got, want)
		}

	case "expect-rx":
		want, err := parseItems(rest)
		if err != nil {
			return err
		}
		got := make([]byte, 0, len(want))
		for range want {
			c, ok := p.DequeueReceivedByte()
			if !ok {
				break
			}
			got = append(got, c)
		}
		if !bytes.Equal(got, want) {
			return fmt.Errorf("%w: rx % x, want % x", ErrMismatch, got, want)
		}

	case "expect-errors":
		v, err := parseCounts(rest, 3)
		if err != nil {
			return err
		}
		want := usart.LineErrors{Overrun: uint32(v[0]), Noise: uint32(v[1]), Framing: uint32(v[2])}
		if got := p.Errors(); got != want {
			return fmt.Errorf("%w: errors %+v, want %+v", ErrMismatch, got, want)
		}

	case "expect-pending":
		v, err := parseCounts(rest, 2)
		if err != nil {
			return err
		}
		if tx, rx := p.PendingTransmit(), p.PendingReceive(); tx != v[0] || rx != v[1] {
			return fmt.Errorf("%w: pending tx=%d rx=%d, want tx=%d rx=%d", ErrMismatch, tx, rx, v[0], v[1])
		}

	case "expect-running":
		if len(rest) != 1 {
			return ErrBadArgs
		}
		want, err := strconv.ParseBool(rest[0])
		if err != nil {
			return ErrBadArgs
		}
		if got := p.TxRunning(); got != want {
			return fmt.Errorf("%w: running %t, want %t", ErrMismatch, got, want)
		}

	default:
		return ErrUnknownCommand
	}
	return nil
}

// parseItems turns script items into bytes. Numbers must fit a byte;
// anything that does not parse as a number is text.
func parseItems(items []string) ([]byte, error) {
	var out []byte
	for _, it := range items {
		if v, err := strconv.ParseUint(it, 0, 64); err == nil {
			if v > 0xFF {
				return nil, fmt.Errorf("%w: %q does not fit a byte", ErrBadArgs, it)
			}
			out = append(out, byte(v))
			continue
		}
		out = append(out, it...)
	}
	return out, nil
}

func splitFlags(args []string) ([]string, usart.Status) {
	var (
		items []string
		flags usart.Status
	)
	for _, a := range args {
		switch a {
		case "ore":
			flags |= usart.StatusOverrun
		case "ne":
			flags |= usart.StatusNoise
		case "fe":
			flags |= usart.StatusFraming
		default:
			items = append(items, a)
		}
	}
	return items, flags
}

func parseCounts(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, ErrBadArgs
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil || v < 0 {
			return nil, ErrBadArgs
		}
		out[i] = v
	}
	return out, nil
}

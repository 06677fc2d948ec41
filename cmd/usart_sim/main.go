//go:build !baremetal

// usart_sim runs the USART byte-queue engine against the simulated register
// block. With -script (or a script on stdin) it replays a scenario and
// reports the first failing line; with -port it bridges the simulated
// USART to a real serial device.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jangala-dev/tinygo-usart/usart"
	"github.com/jangala-dev/tinygo-usart/usart/sim"
)

func main() {
	var (
		txSize = flag.Int("tx", usart.DefaultBufferSize, "TX ring size (N, N-1 usable)")
		rxSize = flag.Int("rx", usart.DefaultBufferSize, "RX ring size (N, N-1 usable)")
		script = flag.String("script", "", "scenario file (default stdin)")
		port   = flag.String("port", "", "serial device to bridge the simulated USART to")
		baud   = flag.Int("baud", 115200, "line rate for -port")
		echo   = flag.Bool("echo", false, "with -port, send received bytes back")
		list   = flag.Bool("list", false, "list serial devices and exit")
	)
	flag.Parse()

	if *list {
		names, err := listPorts()
		if err != nil {
			fatal("list ports:", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	if err := validateBaud(*baud); err != nil {
		fatal("flags:", err)
	}

	p, regs, err := newSim(*txSize, *rxSize, *baud)
	if err != nil {
		fatal("init:", err)
	}

	if *port != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := runBridge(ctx, p, regs, bridgeConfig{
			Port: *port,
			Baud: *baud,
			Echo: *echo,
		}); err != nil {
			fatal("bridge:", err)
		}
		return
	}

	var in io.Reader = os.Stdin
	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			fatal("open script:", err)
		}
		defer f.Close()
		in = f
	}
	if err := runScript(in, os.Stdout, p, regs); err != nil {
		fatal("script:", err)
	}
}

// maxBaud keeps the character time at a whole microsecond and the rate
// inside LineConfig.BaudRate.
const maxBaud = 10000000

func validateBaud(baud int) error {
	if baud <= 0 || baud > maxBaud {
		return usart.ErrInvalidBaud
	}
	return nil
}

// newSim brings up the engine on a fresh simulated register block.
func newSim(txSize, rxSize, baud int) (*usart.Periph, *sim.Regs, error) {
	d := usart.DefaultDescriptor("sim")
	d.TxBufferSize = txSize
	d.RxBufferSize = rxSize
	d.Line.BaudRate = uint32(baud)

	regs := sim.New()
	p, err := usart.Init(d, regs)
	if err != nil {
		return nil, nil, err
	}
	return p, regs, nil
}

// runScript replays a scenario and, if every line passes, writes the
// summary line.
func runScript(in io.Reader, out io.Writer, p *usart.Periph, regs *sim.Regs) error {
	if err := sim.RunScript(in, p, regs, out); err != nil {
		return err
	}
	report(out, p, regs)
	return nil
}

func report(w io.Writer, p *usart.Periph, regs *sim.Regs) {
	e := p.Errors()
	fmt.Fprintf(w, "ok: wire=%d bytes overwrites=%d pending tx=%d rx=%d errors ore=%d ne=%d fe=%d\n",
		len(regs.Wire()), regs.Overwrites(), p.PendingTransmit(), p.PendingReceive(),
		e.Overrun, e.Noise, e.Framing)
}

func fatal(msg string, err error) {
	println("fatal:", msg, err.Error())
	os.Exit(1)
}

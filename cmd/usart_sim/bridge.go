//go:build !baremetal

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.bug.st/serial"

	"github.com/jangala-dev/tinygo-usart/usart"
	"github.com/jangala-dev/tinygo-usart/usart/sim"
	"github.com/jangala-dev/tinygo-usart/x/mathx"
)

type bridgeConfig struct {
	Port string
	Baud int
	Echo bool
}

func listPorts() ([]string, error) {
	return serial.GetPortsList()
}

func openPort(cfg bridgeConfig) (serial.Port, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial port path is required")
	}
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	if err := port.SetReadTimeout(50 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return port, nil
}

// runBridge wires the simulated USART to a real port: bytes leaving the
// simulated shift register are written to the port, bytes read from the
// port are latched into the simulated receiver, and stdin is queued for
// transmission. All engine calls happen on this goroutine, which plays the
// part of the single core.
func runBridge(ctx context.Context, p *usart.Periph, regs *sim.Regs, cfg bridgeConfig) error {
	charTime, perTick, err := lineTiming(cfg.Baud)
	if err != nil {
		return err
	}
	port, err := openPort(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	regs.OnTransmit = func(b byte) {
		if _, err := port.Write([]byte{b}); err != nil {
			println("bridge: write:", err.Error())
		}
	}

	fromPort := make(chan []byte, 16)
	go readLoop(ctx, port, fromPort)
	fromStdin := make(chan []byte, 16)
	go stdinLoop(ctx, fromStdin)

	ticker := time.NewTicker(charTime * time.Duration(perTick))
	defer ticker.Stop()
	status := time.NewTicker(5 * time.Second)
	defer status.Stop()

	var rx [64]byte
	for {
		select {
		case <-ctx.Done():
			report(os.Stderr, p, regs)
			return nil

		case chunk := <-fromPort:
			for _, b := range chunk {
				regs.Receive(b)
				regs.Service()
			}

		case chunk := <-fromStdin:
			if n := p.TryWrite(chunk); n < len(chunk) {
				println("bridge: TX ring full, dropped", len(chunk)-n, "bytes")
			}

		case <-ticker.C:
			for i := 0; i < perTick; i++ {
				regs.Tick()
			}

		case <-status.C:
			report(os.Stderr, p, regs)
		}

		for {
			n := p.TryRead(rx[:])
			if n == 0 {
				break
			}
			os.Stdout.Write(rx[:n])
			if cfg.Echo {
				p.Write(rx[:n])
			}
		}
	}
}

// lineTiming returns the character time at 10 bits per character and how
// many characters to advance per ticker period, batched so the ticker stays
// at or above 1ms.
func lineTiming(baud int) (time.Duration, int, error) {
	if err := validateBaud(baud); err != nil {
		return 0, 0, err
	}
	charTime := time.Second * 10 / time.Duration(baud)
	perTick := mathx.Clamp(int(time.Millisecond/charTime), 1, 1024)
	return charTime, perTick, nil
}

func readLoop(ctx context.Context, port serial.Port, out chan<- []byte) {
	buf := make([]byte, 256)
	for ctx.Err() == nil {
		n, err := port.Read(buf)
		if err != nil {
			println("bridge: read:", err.Error())
			return
		}
		if n == 0 {
			continue // read timeout
		}
		chunk := append([]byte(nil), buf[:n]...)
		select {
		case out <- chunk:
		case <-ctx.Done():
			return
		}
	}
}

func stdinLoop(ctx context.Context, out chan<- []byte) {
	buf := make([]byte, 256)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			select {
			case out <- append([]byte(nil), buf[:n]...):
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}

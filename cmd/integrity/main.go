// cmd/integrity/main.go
// Cross-USART integrity test for an STM32F4 board.
// Wiring:
//   USART1 TX=PA9  -> USART3 RX=PB11
//   USART3 TX=PB10 -> USART1 RX=PA10
// Flow control unused (RTS/CTS not connected).

//go:build stm32f4

package main

import (
	"context"
	"time"

	"machine"

	"github.com/jangala-dev/tinygo-usart/usart"
)

/*** Tunables ***/
const (
	baud           = 460800    // line rate on both ports
	totalBytes     = 64 * 1024 // bytes per direction
	fullDuplex     = true      // true: duplex test; false: run each direction separately
	timeoutPerTest = 10 * time.Second
	warmupDelay    = 2 * time.Second

	sendChunk     = 96  // bytes per TryWrite burst
	recvChunk     = 256 // bytes per RecvSomeContext read
	contextRadius = 16  // bytes shown either side of a mismatch
)

/*** Patterns (deterministic) ***/
func patternA(i int) byte { return byte((i*31 + 0x55) & 0xFF) }
func patternB(i int) byte { return byte((i*17 + 0xA6) & 0xFF) }

func open(name string) *usart.Periph {
	d := usart.DefaultDescriptor(name)
	d.Line.BaudRate = baud
	d.TxBufferSize = 256
	d.RxBufferSize = 1024
	u, err := usart.Open(d)
	if err != nil {
		println("init", name, "failed:", err.Error())
		for {
			blink(machine.LED, 1, 500*time.Millisecond)
		}
	}
	return u
}

/*** Main ***/
func main() {
	time.Sleep(warmupDelay)
	println("usart integrity test (STM32F4)")
	println("baud =", baud, "  bytes/dir =", totalBytes, "  duplex =", fullDuplex)
	println("USART1 TX/RX = PA9/PA10  USART3 TX/RX = PB10/PB11")

	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	u1 := open("usart1")
	u3 := open("usart3")
	drain(u1)
	drain(u3)

	pass, fail := 0, 0
	report := func(name, err string) {
		if err == "" {
			println("[PASS]", name)
			pass++
		} else {
			println("[FAIL]", name, ":", err)
			fail++
		}
	}

	if fullDuplex {
		report("Full-duplex integrity", runFullDuplex(totalBytes, u1, u3))
	} else {
		report("USART1 -> USART3 integrity", runOneWay(u1, u3, patternA, totalBytes))
		report("USART3 -> USART1 integrity", runOneWay(u3, u1, patternB, totalBytes))
	}
	reportErrors("usart1", u1)
	reportErrors("usart3", u3)

	println("")
	println("Summary")
	println("  passed =", pass)
	println("  failed =", fail)
	if fail == 0 {
		blink(machine.LED, 3, 120*time.Millisecond)
	} else {
		for {
			blink(machine.LED, 1, 600*time.Millisecond)
			time.Sleep(800 * time.Millisecond)
		}
	}
}

/*** Test runners ***/

func runOneWay(tx, rx *usart.Periph, gen func(int) byte, n int) string {
	drain(tx)
	drain(rx)

	ctx, cancel := context.WithTimeout(context.Background(), timeoutPerTest)
	defer cancel()

	errCh := make(chan string, 1)
	go func() { errCh <- recvAndCheckStream(ctx, rx, gen, n) }()
	_ = sendPatternContext(ctx, tx, gen, n)

	return <-errCh
}

func runFullDuplex(n int, a, b *usart.Periph) string {
	drain(a)
	drain(b)

	ctx, cancel := context.WithTimeout(context.Background(), timeoutPerTest)
	defer cancel()

	// Receivers first.
	errCh := make(chan string, 2)
	go func() { errCh <- recvAndCheckStream(ctx, b, patternA, n) }()
	go func() { errCh <- recvAndCheckStream(ctx, a, patternB, n) }()

	go func() { _ = sendPatternContext(ctx, a, patternA, n) }()
	go func() { _ = sendPatternContext(ctx, b, patternB, n) }()

	e1, e2 := <-errCh, <-errCh
	if e1 != "" {
		return e1
	}
	return e2
}

/*** Library-aligned helpers ***/

func drain(u *usart.Periph) {
	for u.Buffered() > 0 {
		_, _ = u.ReadByte()
	}
}

func sendAllContext(ctx context.Context, u *usart.Periph, p []byte) (int, error) {
	sent := 0
	for sent < len(p) {
		if n := u.TryWrite(p[sent:]); n > 0 {
			sent += n
			continue
		}
		select {
		case <-u.Writable():
		case <-ctx.Done():
			return sent, ctx.Err()
		}
	}
	return sent, nil
}

func sendPatternContext(ctx context.Context, u *usart.Periph, gen func(int) byte, n int) error {
	var buf [sendChunk]byte
	i := 0
	for i < n {
		k := sendChunk
		if n-i < k {
			k = n - i
		}
		for j := 0; j < k; j++ {
			buf[j] = gen(i + j)
		}
		if _, err := sendAllContext(ctx, u, buf[:k]); err != nil {
			return err
		}
		i += k
	}
	return nil
}

/*** Integrity check with diagnostics ***/

// recvAndCheckStream reads exactly n bytes and compares each against gen(i).
// On the first mismatch it prints the expected and received bytes around it.
func recvAndCheckStream(ctx context.Context, u *usart.Periph, gen func(int) byte, n int) string {
	var buf [recvChunk]byte
	received := 0

	for received < n {
		k := n - received
		if k > len(buf) {
			k = len(buf)
		}
		m, err := u.RecvSomeContext(ctx, buf[:k])
		if err != nil {
			println("timeout after", received, "bytes")
			return "timeout"
		}
		for i := 0; i < m; i++ {
			if buf[i] != gen(received+i) {
				println("First mismatch at offset", received+i)
				printContext(gen, received, buf[:m], i)
				return "integrity mismatch"
			}
		}
		received += m
	}
	return ""
}

func printContext(gen func(int) byte, base int, got []byte, rel int) {
	start := rel - contextRadius
	if start < 0 {
		start = 0
	}
	end := rel + contextRadius + 1
	if end > len(got) {
		end = len(got)
	}
	print(" exp:")
	for i := start; i < end; i++ {
		printByte(gen(base+i), i == rel)
	}
	println("")
	print(" act:")
	for i := start; i < end; i++ {
		printByte(got[i], i == rel)
	}
	println("")
}

func printByte(v byte, pivot bool) {
	if pivot {
		print(" [", byteToHex(v), "]")
		return
	}
	print(" ", byteToHex(v))
}

func reportErrors(name string, u *usart.Periph) {
	e := u.Errors()
	println(name, "line errors: ORE =", e.Overrun, " NE =", e.Noise, " FE =", e.Framing)
}

/*** Utilities ***/

func byteToHex(v byte) string {
	const hexdigits = "0123456789ABCDEF"
	var s [2]byte
	s[0] = hexdigits[(v>>4)&0xF]
	s[1] = hexdigits[v&0xF]
	return string(s[:])
}

func blink(pin machine.Pin, times int, on time.Duration) {
	for i := 0; i < times; i++ {
		pin.High()
		time.Sleep(on)
		pin.Low()
		time.Sleep(on)
	}
}

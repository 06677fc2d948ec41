//go:build stm32f4

// usart_selftest exercises one USART in loopback. Jumper TX to RX (USART1:
// PA9 to PA10) before flashing; results go to the console with println and
// the LED blinks three times on success.
package main

import (
	"context"
	"crypto/sha1"
	"time"

	"machine"

	"github.com/jangala-dev/tinygo-usart/usart"
)

var (
	portName   = "usart1"
	baud       = uint32(921600)
	lineEnding = "\r\n"
)

func drain(u *usart.Periph) {
	var tmp [64]byte
	for {
		n := u.TryRead(tmp[:])
		if n == 0 {
			return
		}
	}
}

// sendAllContext writes p using TryWrite+Writable with a context timeout.
// It returns when all bytes are accepted by the driver or ctx ends.
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

// recvExact reads exactly n bytes (or ctx error) using TryRead+Readable.
func recvExact(ctx context.Context, u *usart.Periph, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	var buf [128]byte
	for len(out) < n {
		if k := u.TryRead(buf[:]); k > 0 {
			out = append(out, buf[:k]...)
			continue
		}
		select {
		case <-u.Readable():
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
	return out, nil
}

func ledBlink(times int, on time.Duration) {
	for i := 0; i < times; i++ {
		machine.LED.High()
		time.Sleep(on)
		machine.LED.Low()
		time.Sleep(on)
	}
}

func main() {
	// Give the monitor time to attach.
	time.Sleep(3 * time.Second)

	println("usart self-test starting on", portName)

	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	d := usart.DefaultDescriptor(portName)
	d.Line.BaudRate = baud
	d.TxBufferSize = 256
	d.RxBufferSize = 512
	u, err := usart.Open(d)
	if err != nil {
		println("Init failed:", err.Error())
		for {
			ledBlink(1, 500*time.Millisecond)
		}
	}
	drain(u)

	pass, fail := 0, 0
	defer func() {
		println("")
		println("Summary")
		println("  passed =", pass)
		println("  failed =", fail)
		if fail == 0 {
			ledBlink(3, 120*time.Millisecond)
		} else {
			for {
				ledBlink(1, 600*time.Millisecond)
				time.Sleep(800 * time.Millisecond)
			}
		}
	}()

	run := func(name string, f func() string) {
		println("")
		println("[Test]", name)
		if msg := f(); msg == "" {
			println("  PASS")
			pass++
		} else {
			println("  FAIL:", msg)
			fail++
		}
	}

	run("idle: first byte is written directly", func() string {
		drain(u)
		if u.TxRunning() {
			return "transmitter busy before the test"
		}
		u.EnqueueByte('X')
		if u.PendingTransmit() != 0 {
			return "first byte was queued"
		}
		ctx, cancel := context.WithTimeout(context.Background(), 750*time.Millisecond)
		defer cancel()
		got, err := recvExact(ctx, u, 1)
		if err != nil || got[0] != 'X' {
			return "echo failed"
		}
		return ""
	})

	run("sanity: short loopback (Write + RecvFullContext)", func() string {
		drain(u)
		msg := []byte("hello, usart" + lineEnding)
		u.Write(msg)
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		got := make([]byte, len(msg))
		if _, err := u.RecvFullContext(ctx, got); err != nil {
			return "timeout"
		}
		if string(got) != string(msg) {
			return "mismatch"
		}
		return ""
	})

	run("blocking: RecvByteContext waits for a single byte", func() string {
		drain(u)
		want := byte('Z')
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		go func() {
			time.Sleep(10 * time.Millisecond)
			u.EnqueueByte(want)
		}()
		b, err := u.RecvByteContext(ctx)
		if err != nil {
			return "read error"
		}
		if b != want {
			return "wrong byte"
		}
		return ""
	})

	run("timeout: no data within 200ms using Readable", func() string {
		drain(u)
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		select {
		case <-u.Readable():
			if u.Buffered() > 0 {
				return "unexpected data"
			}
			return ""
		case <-ctx.Done():
			return ""
		}
	})

	run("flush: Flush returns once the line is idle", func() string {
		drain(u)
		msg := []byte("flush-me" + lineEnding)
		u.Write(msg)
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		if err := u.Flush(ctx); err != nil {
			return "flush timeout"
		}
		if u.TxRunning() || u.PendingTransmit() != 0 {
			return "transmitter still busy"
		}
		got, err := recvExact(ctx, u, len(msg))
		if err != nil || string(got) != string(msg) {
			return "mismatch"
		}
		return ""
	})

	run("overflow: Write past the ring drops the excess", func() string {
		drain(u)
		n := 4 * u.TxFree()
		src := make([]byte, n)
		for i := range src {
			src[i] = byte(i)
		}
		if k, _ := u.Write(src); k != n {
			return "Write did not report len(p)"
		}
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		_ = u.Flush(ctx)
		time.Sleep(5 * time.Millisecond)
		got := make([]byte, n)
		k := u.TryRead(got)
		if k >= n {
			return "nothing was dropped"
		}
		if !inOrder(got[:k], src) {
			return "queued bytes corrupted by overflow"
		}
		println("  delivered =", k, "of", n)
		return ""
	})

	run("binary: 4 KiB integrity (SHA-1)", func() string {
		drain(u)
		n := 4 * 1024
		src := make([]byte, n)
		var x uint32 = 0x12345678
		for i := range src {
			x = 1664525*x + 1013904223
			src[i] = byte(x >> 24)
		}
		want := sha1.Sum(src)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		go func() { _, _ = sendAllContext(ctx, u, src) }()
		got, err := recvExact(ctx, u, n)
		if err != nil || len(got) != n {
			return "timeout/short read"
		}
		if sha1.Sum(got) != want {
			return "hash mismatch"
		}
		return ""
	})

	run("throughput: 32 KiB (event-driven TX)", func() string {
		drain(u)
		n := 32 * 1024
		src := make([]byte, n)
		for i := 0; i < n; i++ {
			src[i] = byte(i * 31)
		}

		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		go func() { _, _ = sendAllContext(ctx, u, src) }()
		if _, err := recvExact(ctx, u, n); err != nil {
			return "timeout"
		}

		elapsed := time.Since(start)
		ms := int(elapsed / time.Millisecond)
		if ms <= 0 {
			ms = 1
		}
		kbpsX100 := (n*8*100 + ms/2) / ms
		println("  speed =", formatFixed2(kbpsX100), "kbps")
		return ""
	})

	run("errors: no line errors on a clean loopback", func() string {
		e := u.Errors()
		if e.Total() != 0 {
			println("  ore =", e.Overrun, " ne =", e.Noise, " fe =", e.Framing)
			return "line errors counted"
		}
		return ""
	})

	println("")
	println("All tests completed")
}

// inOrder reports whether got is src with some bytes left out.
func inOrder(got, src []byte) bool {
	j := 0
	for _, b := range got {
		for j < len(src) && src[j] != b {
			j++
		}
		if j == len(src) {
			return false
		}
		j++
	}
	return true
}

// --- tiny helpers (no fmt) ---

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := false
	if n < 0 {
		neg = true
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + (n % 10))
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + itoa(n)
	}
	return itoa(n)
}

func formatFixed2(x int) string {
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	whole := x / 100
	frac := x % 100
	return sign + itoa(whole) + "." + twoDigits(frac)
}

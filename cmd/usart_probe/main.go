//go:build stm32f4 && usartdebug

package main

import (
	"context"
	"crypto/sha1"
	"time"

	"machine"

	"github.com/jangala-dev/tinygo-usart/usart"
)

const baud = 115200

func must[T any](v T, err error) T {
	if err != nil {
		println("fatal:", err.Error())
		for {
			time.Sleep(time.Hour)
		}
	}
	return v
}

func printStats(u *usart.Periph, label string) {
	s := u.DebugStats()
	e := u.Errors()
	println("==", label)
	println("ISR:    count=", s.ISRCount, " direct=", s.DirectWrites, " running=", u.TxRunning())
	println("TX:     drops=", s.TxDrops, " pending=", u.PendingTransmit(), " free=", u.TxFree())
	println("RX:     puts=", s.RxPuts, " drops=", s.RxDrops, " maxUsed=", s.RxMaxUsed, " pending=", u.PendingReceive())
	println("Errors: ORE=", e.Overrun, " NE=", e.Noise, " FE=", e.Framing)
	println("Waits:  waits=", s.ReadWaits)
}

func drain(u *usart.Periph) {
	for u.Buffered() > 0 {
		_, _ = u.ReadByte()
	}
}

func recvExact(ctx context.Context, u *usart.Periph, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	tmp := make([]byte, 128)
	for len(out) < n {
		k, err := u.RecvSomeContext(ctx, tmp)
		out = append(out, tmp[:k]...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func main() {
	delay := 10
	for i := 0; i < delay; i++ {
		println("test starting in ", delay-i, " seconds")
		time.Sleep(time.Second)
	}
	println("usart probe (diagnostic)")

	d := usart.DefaultDescriptor("usart1")
	d.Line.BaudRate = baud
	u := must(usart.Open(d))

	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	u.DebugReset()
	drain(u)

	// Phase 1: 1 KiB integrity, paced so nothing is dropped
	println("\n[phase] integrity-1k")
	src := make([]byte, 1024)
	var x uint32 = 0x12345678
	for i := range src {
		x = 1664525*x + 1013904223
		src[i] = byte(x >> 24)
	}
	want := sha1.Sum(src)
	ctx1, cancel1 := context.WithTimeout(context.Background(), 2*time.Second)
	go func() {
		for sent := 0; sent < len(src); {
			sent += u.TryWrite(src[sent:])
			select {
			case <-u.Writable():
			case <-ctx1.Done():
				return
			}
		}
	}()
	got, err := recvExact(ctx1, u, len(src))
	cancel1()
	if err != nil {
		println(" result: TIMEOUT (received", len(got), "bytes)")
	} else if sha1.Sum(got) != want {
		println(" result: HASH MISMATCH (received", len(got), "bytes)")
	} else {
		println(" result: OK (1 KiB)")
	}
	printStats(u, "after integrity-1k")

	// Phase 2: fire-and-forget burst, reads held off to force RX drops
	println("\n[phase] burst-8k (fire-and-forget writer)")
	u.DebugReset()
	drain(u)
	n := 8 * 1024
	burst := make([]byte, n)
	for i := 0; i < n; i++ {
		burst[i] = byte(i)
	}
	u.Write(burst)
	time.Sleep(50 * time.Millisecond)
	ctx2, cancel2 := context.WithTimeout(context.Background(), 500*time.Millisecond)
	got2, _ := recvExact(ctx2, u, n)
	cancel2()
	println(" result: received", len(got2), "of", n, "bytes")
	printStats(u, "after burst-8k")

	// Phase 3: notify sanity (two bytes)
	println("\n[phase] notify-2bytes")
	u.DebugReset()
	drain(u)
	ready := u.Readable()
	go func() {
		_ = u.WriteByte('A')
		time.Sleep(5 * time.Millisecond)
		_ = u.WriteByte('B')
	}()
	select {
	case <-ready:
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		got3, _ := recvExact(ctx, u, 2)
		println(" result: got '", string(got3), "'")
	case <-time.After(300 * time.Millisecond):
		println(" result: no notification within 300ms")
	}
	printStats(u, "after notify-2bytes")

	println("\ndone")
}

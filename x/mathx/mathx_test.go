package mathx

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	if got := Clamp(5, 1, 10); got != 5 {
		t.Fatalf("inside: got %d", got)
	}
	if got := Clamp(-3, 1, 10); got != 1 {
		t.Fatalf("below: got %d", got)
	}
	if got := Clamp(42, 10, 1); got != 10 {
		t.Fatalf("swapped bounds: got %d", got)
	}
	if got := Clamp(time.Second, time.Microsecond, time.Millisecond); got != time.Millisecond {
		t.Fatalf("duration: got %v", got)
	}
}

func TestRoundDiv(t *testing.T) {
	// 84 MHz APB2 at 115200 baud: 729.16 -> 729
	if got := RoundDiv[uint32](84_000_000, 115_200); got != 729 {
		t.Fatalf("got %d want 729", got)
	}
	// 42 MHz APB1 at 921600 baud: 45.57 -> 46
	if got := RoundDiv[uint32](42_000_000, 921_600); got != 46 {
		t.Fatalf("got %d want 46", got)
	}
	if got := RoundDiv[uint32](10, 0); got != 0 {
		t.Fatalf("zero divisor: got %d", got)
	}
}

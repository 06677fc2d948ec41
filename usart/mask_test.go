package usart

import "testing"

// regsStub is the smallest Registers that records TX interrupt changes.
type regsStub struct {
	txie    bool
	written []byte
}

func (r *regsStub) Status() Status           { return StatusTxEmpty }
func (r *regsStub) TxInterruptEnabled() bool { return r.txie }
func (r *regsStub) RxInterruptEnabled() bool { return false }
func (r *regsStub) WriteData(b byte)         { r.written = append(r.written, b) }
func (r *regsStub) ReadData() byte           { return 0 }

func (r *regsStub) SetTxInterrupt(enabled bool) {
	r.txie = enabled
}

func TestTxMask_RestoresPreviousState(t *testing.T) {
	for _, was := range []bool{false, true} {
		r := &regsStub{txie: was}
		p := New(r, 4, 4)

		m := p.maskTx()
		if r.txie {
			t.Fatalf("was=%v: interrupt enabled inside the critical section", was)
		}
		m.release()
		if r.txie != was {
			t.Fatalf("was=%v: after release txie=%v", was, r.txie)
		}
	}
}

func TestTxMask_ArmLeavesEnabled(t *testing.T) {
	r := &regsStub{}
	p := New(r, 4, 4)

	func() {
		m := p.maskTx()
		defer m.release()
		m.arm()
	}()
	if !r.txie {
		t.Fatalf("armed guard did not enable the interrupt")
	}
}

func TestEnqueue_EveryPathReleasesMask(t *testing.T) {
	r := &regsStub{}
	p := New(r, 2, 2) // one usable slot

	p.EnqueueByte('a') // idle: direct write, arms
	if !r.txie || !p.TxRunning() {
		t.Fatalf("after direct write txie=%v running=%v", r.txie, p.TxRunning())
	}
	p.EnqueueByte('b') // queued
	p.EnqueueByte('c') // dropped
	if !r.txie {
		t.Fatalf("TX interrupt masked after a drop")
	}
	if string(r.written) != "a" {
		t.Fatalf("written = %q, want %q", r.written, "a")
	}
	if p.PendingTransmit() != 1 {
		t.Fatalf("pending = %d, want 1", p.PendingTransmit())
	}
}

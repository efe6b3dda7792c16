package encoder

import "testing"

// Pin states are clk<<1 | dt.  A full quadrature cycle is the gray
// sequence 00 -> 10 -> 11 -> 01 -> 00 one way round and the reverse
// the other way; half-step decode counts twice per cycle.

func feed(e *Encoder, states ...uint8) int {
	total := 0
	for _, s := range states {
		total += e.step(s)
	}
	return total
}

func TestDecodeClockwiseCycle(t *testing.T) {
	e := &Encoder{}
	if got := feed(e, 0b00, 0b10, 0b11, 0b01, 0b00); got != 2 {
		t.Errorf("CW cycle decoded to %d, expected +2", got)
	}
}

func TestDecodeCounterClockwiseCycle(t *testing.T) {
	e := &Encoder{}
	if got := feed(e, 0b00, 0b01, 0b11, 0b10, 0b00); got != -2 {
		t.Errorf("CCW cycle decoded to %d, expected -2", got)
	}
}

func TestDecodeIgnoresBounce(t *testing.T) {
	// Chatter on one line must not produce counts.
	e := &Encoder{}
	if got := feed(e, 0b00, 0b10, 0b00, 0b10, 0b00); got != 0 {
		t.Errorf("contact bounce decoded to %d, expected 0", got)
	}
}

func TestCounterWrap(t *testing.T) {
	e := &Encoder{count: MaxCount}
	e.add(1)
	if e.Value() != MinCount {
		t.Errorf("count above max wrapped to %d, expected %d", e.Value(), MinCount)
	}
	e.add(-1)
	if e.Value() != MaxCount {
		t.Errorf("count below min wrapped to %d, expected %d", e.Value(), MaxCount)
	}
}

func TestCounterAccumulates(t *testing.T) {
	e := &Encoder{}
	for i := 0; i < 7; i++ {
		e.add(1)
	}
	e.add(-2)
	if e.Value() != 5 {
		t.Errorf("count = %d, expected 5", e.Value())
	}
}

package ticks

import "time"

// Millisecond tick counter in the style of a microcontroller systick:
// an unsigned 32-bit count that wraps roughly every 49.7 days.  Diff
// is wraparound-safe for intervals under half the wrap period.

type Clock interface {
	// Ticks returns the current millisecond count.
	Ticks() uint32
}

// Diff returns a - b in milliseconds, correct across counter wrap.
func Diff(a, b uint32) int32 {
	return int32(a - b)
}

type monotonic struct {
	epoch time.Time
}

func New() Clock {
	return &monotonic{epoch: time.Now()}
}

func (m *monotonic) Ticks() uint32 {
	return uint32(time.Since(m.epoch) / time.Millisecond)
}

// Fake is a hand-cranked Clock for tests.
type Fake struct {
	Now uint32
}

func (f *Fake) Ticks() uint32 {
	return f.Now
}

// Advance moves the fake clock forward by ms milliseconds.
func (f *Fake) Advance(ms uint32) {
	f.Now += ms
}

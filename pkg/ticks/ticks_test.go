package ticks

import (
	"math"
	"testing"
)

func TestDiff(t *testing.T) {
	expectDiff(t, 100, 40, 60)
	expectDiff(t, 40, 40, 0)
	expectDiff(t, 40, 100, -60)

	// Counter wrap: a small reading minus a reading taken just
	// before the wrap must still come out as a small positive
	// interval.
	expectDiff(t, 5, math.MaxUint32-4, 10)
	expectDiff(t, math.MaxUint32-4, 5, -10)
}

func expectDiff(t *testing.T, a, b uint32, expected int32) {
	t.Helper()
	if d := Diff(a, b); d != expected {
		t.Errorf("Diff(%d, %d) = %d, expected %d", a, b, d, expected)
	}
}

func TestFakeAdvance(t *testing.T) {
	f := &Fake{}
	f.Advance(500)
	f.Advance(60)
	if f.Ticks() != 560 {
		t.Errorf("fake clock at %d, expected 560", f.Ticks())
	}
}

// Package encoder decodes a quadrature rotary encoder into a signed
// counter.  Decode runs off GPIO edge waits, independent of the
// control loop's polling cadence; the loop only ever reads the
// accumulated value.
package encoder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

const (
	// The counter wraps at the range ends rather than saturating.
	MinCount = -5000
	MaxCount = 5000
)

// Half-step transition table.  State advances on every pin change;
// a direction bit is emitted when a half-cycle completes, so one full
// quadrature cycle counts twice.
const (
	rStart uint8 = iota
	rCCWBegin
	rCWBegin
	rStartM
	rCWBeginM
	rCCWBeginM

	dirCW  uint8 = 0x10
	dirCCW uint8 = 0x20
)

var halfStepTable = [6][4]uint8{
	// rStart (00)
	{rStartM, rCWBegin, rCCWBegin, rStart},
	// rCCWBegin
	{rStartM | dirCCW, rStart, rCCWBegin, rStart},
	// rCWBegin
	{rStartM | dirCW, rCWBegin, rStart, rStart},
	// rStartM (11)
	{rStartM, rCCWBeginM, rCWBeginM, rStart},
	// rCWBeginM
	{rStartM, rStartM, rCWBeginM, rStart | dirCW},
	// rCCWBeginM
	{rStartM, rCCWBeginM, rStartM, rStart | dirCCW},
}

type Encoder struct {
	clk gpio.PinIO
	dt  gpio.PinIO

	mu    sync.Mutex // guards state
	state uint8

	count int32
}

func New(clkName, dtName string) (*Encoder, error) {
	clk := gpioreg.ByName(clkName)
	if clk == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", clkName)
	}
	dt := gpioreg.ByName(dtName)
	if dt == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", dtName)
	}
	// The encoder board carries its own pull resistors.
	if err := clk.In(gpio.Float, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("failed to configure %s: %v", clkName, err)
	}
	if err := dt.In(gpio.Float, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("failed to configure %s: %v", dtName, err)
	}
	return &Encoder{clk: clk, dt: dt}, nil
}

// Start spawns the edge watchers.  They exit when the context is
// cancelled.
func (e *Encoder) Start(ctx context.Context) {
	go e.watch(ctx, e.clk)
	go e.watch(ctx, e.dt)
}

func (e *Encoder) watch(ctx context.Context, pin gpio.PinIO) {
	for ctx.Err() == nil {
		// The timeout only bounds how long shutdown can lag; a
		// timed-out wait re-samples harmlessly.
		pin.WaitForEdge(500 * time.Millisecond)
		e.onEdge()
	}
}

func (e *Encoder) onEdge() {
	pinState := uint8(0)
	if e.clk.Read() == gpio.High {
		pinState |= 2
	}
	if e.dt.Read() == gpio.High {
		pinState |= 1
	}
	if delta := e.step(pinState); delta != 0 {
		e.add(delta)
	}
}

// step advances the decode state machine and returns -1, 0 or +1.
func (e *Encoder) step(pinState uint8) int {
	e.mu.Lock()
	e.state = halfStepTable[e.state&0xf][pinState]
	dir := e.state & 0x30
	e.mu.Unlock()
	switch dir {
	case dirCW:
		return 1
	case dirCCW:
		return -1
	}
	return 0
}

func (e *Encoder) add(delta int) {
	for {
		old := atomic.LoadInt32(&e.count)
		n := old + int32(delta)
		if n > MaxCount {
			n = MinCount
		} else if n < MinCount {
			n = MaxCount
		}
		if atomic.CompareAndSwapInt32(&e.count, old, n) {
			return
		}
	}
}

// Value returns the accumulated count.  Safe to call from the control
// loop while the watchers are running.
func (e *Encoder) Value() int {
	return int(atomic.LoadInt32(&e.count))
}

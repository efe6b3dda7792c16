// Package pins wraps periph.io GPIO pins as debouncer-friendly
// buttons.  The active level follows the pull configuration: a
// pulled-up button shorts to ground when pressed.
package pins

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

type Pull int

const (
	PullDown Pull = iota
	PullUp
)

type Button struct {
	pin    gpio.PinIO
	pullUp bool
}

func NewButton(name string, pull Pull) (*Button, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", name)
	}
	gpioPull := gpio.PullDown
	if pull == PullUp {
		gpioPull = gpio.PullUp
	}
	if err := pin.In(gpioPull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure %s as input: %v", name, err)
	}
	return &Button{
		pin:    pin,
		pullUp: pull == PullUp,
	}, nil
}

func (b *Button) IsPressed() bool {
	level := b.pin.Read()
	if b.pullUp {
		return level == gpio.Low
	}
	return level == gpio.High
}

// Unwired is a stand-in for a button that failed to open; it never
// reports pressed, so the rest of the rig keeps working.
type Unwired struct{}

func (Unwired) IsPressed() bool {
	return false
}

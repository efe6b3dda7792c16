// Package input routes debounced physical inputs to bound targets.
// The dispatcher knows nothing about what an action means; targets
// interpret the action enum themselves.
package input

import (
	"fmt"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/ticks"
)

type Action int

const (
	ToggleMinEdit Action = iota
	ToggleMaxEdit
	TogglePositionMinEdit
	TogglePositionMaxEdit
	ToggleSpeedEdit
	ToggleRunStop
	StepUp
	StepDown
	NextMode
)

func (a Action) String() string {
	switch a {
	case ToggleMinEdit:
		return "toggle-min-edit"
	case ToggleMaxEdit:
		return "toggle-max-edit"
	case TogglePositionMinEdit:
		return "toggle-position-min-edit"
	case TogglePositionMaxEdit:
		return "toggle-position-max-edit"
	case ToggleSpeedEdit:
		return "toggle-speed-edit"
	case ToggleRunStop:
		return "toggle-run-stop"
	case StepUp:
		return "step-up"
	case StepDown:
		return "step-down"
	case NextMode:
		return "next-mode"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// Target is anything that can receive a dispatched action.
type Target interface {
	Apply(a Action)
}

// Button reports the debounced-raw pressed level of one physical input.
type Button interface {
	IsPressed() bool
}

// Binding ties a button to a target and an action.  Immutable once
// constructed; the active set changes with the application mode.
type Binding struct {
	Button Button
	Target Target
	Action Action
}

const DefaultDebounceMs = 500

type Options struct {
	DebounceMs uint32
	// PerInput gives each binding its own debounce timer.  The
	// default shared timer reproduces the original rig, where a
	// press on one button masks every other button for the whole
	// debounce window.
	PerInput bool
}

// Dispatcher polls a set of bindings and invokes the bound action on a
// qualifying press.
type Dispatcher struct {
	bindings []Binding
	opts     Options

	lastDispatch uint32
	lastPerInput []uint32
}

func NewDispatcher(bindings []Binding, opts Options) *Dispatcher {
	if opts.DebounceMs == 0 {
		opts.DebounceMs = DefaultDebounceMs
	}
	return &Dispatcher{
		bindings:     bindings,
		opts:         opts,
		lastPerInput: make([]uint32, len(bindings)),
	}
}

// Poll checks every binding in order.  Edges between polls are not
// queued: a press only counts if it is still held when Poll runs.
func (d *Dispatcher) Poll(now uint32) {
	for i, b := range d.bindings {
		if !b.Button.IsPressed() {
			continue
		}
		if ticks.Diff(now, d.last(i)) <= int32(d.opts.DebounceMs) {
			continue
		}
		d.setLast(i, now)
		b.Target.Apply(b.Action)
	}
}

func (d *Dispatcher) last(i int) uint32 {
	if d.opts.PerInput {
		return d.lastPerInput[i]
	}
	return d.lastDispatch
}

func (d *Dispatcher) setLast(i int, now uint32) {
	if d.opts.PerInput {
		d.lastPerInput[i] = now
		return
	}
	d.lastDispatch = now
}

const DefaultRotaryDebounceMs = 60

// Counter is an accumulated signed count, typically maintained by an
// interrupt-driven quadrature decoder.
type Counter interface {
	Value() int
}

// RotaryDispatcher watches a counter and fires StepUp or StepDown on
// every bound target when the count moves.  Only the net sign of the
// change between polls is observed.
type RotaryDispatcher struct {
	counter Counter
	targets []Target

	debounceMs  uint32
	lastChecked uint32
	lastValue   int
}

func NewRotary(counter Counter, targets []Target, debounceMs uint32) *RotaryDispatcher {
	if debounceMs == 0 {
		debounceMs = DefaultRotaryDebounceMs
	}
	return &RotaryDispatcher{
		counter:    counter,
		targets:    targets,
		debounceMs: debounceMs,
		lastValue:  counter.Value(),
	}
}

func (r *RotaryDispatcher) Poll(now uint32) {
	if ticks.Diff(now, r.lastChecked) <= int32(r.debounceMs) {
		return
	}
	r.lastChecked = now
	v := r.counter.Value()
	if v > r.lastValue {
		r.lastValue = v
		for _, t := range r.targets {
			t.Apply(StepUp)
		}
	} else if v < r.lastValue {
		r.lastValue = v
		for _, t := range r.targets {
			t.Apply(StepDown)
		}
	}
}

// Package appmode owns the rig's top-level operating mode: an
// overview where every servo auto-sweeps, plus one detail mode per
// servo for manual control.  A single external event cycles the mode;
// the mode decides which input bindings are polled and which servos
// are updated and drawn each tick.
package appmode

import (
	"fmt"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/animator"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/input"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/screen"
)

const Overview = 0

// Display is the rendering surface the machine draws servo rows onto.
type Display interface {
	DrawServo(s animator.Snapshot, row screen.RowLayout)
}

// Servo pairs an animator with its place on the display.
type Servo struct {
	Anim *animator.Animator
	Row  screen.RowLayout
}

// Machine cycles Overview -> Detail(servo 0) -> ... -> Overview.  Each
// transition reconfigures which servos run and which layout they use;
// nothing else guards a transition.
type Machine struct {
	servos      []Servo
	dispatchers []*input.Dispatcher
	display     Display

	mode int
}

// New builds the machine in the Overview state.  dispatchers must hold
// one binding set per mode: index 0 for the overview, index i for the
// detail mode of servo i-1.
func New(servos []Servo, dispatchers []*input.Dispatcher, display Display) *Machine {
	if len(dispatchers) != len(servos)+1 {
		panic(fmt.Sprintf("appmode: %d binding sets for %d servos", len(dispatchers), len(servos)))
	}
	m := &Machine{
		servos:      servos,
		dispatchers: dispatchers,
		display:     display,
	}
	m.applyMode()
	return m
}

func (m *Machine) Mode() int {
	return m.mode
}

func (m *Machine) Name() string {
	if m.mode == Overview {
		return "overview"
	}
	return fmt.Sprintf("detail servo %d", m.mode-1)
}

// Advance cycles to the next mode with wraparound.
func (m *Machine) Advance() {
	m.mode++
	if m.mode > len(m.servos) {
		m.mode = Overview
	}
	fmt.Printf("----- %s -----\n", m.Name())
	m.applyMode()
}

func (m *Machine) applyMode() {
	if m.mode == Overview {
		for _, s := range m.servos {
			s.Anim.DisplaySmall()
			s.Anim.Run()
		}
		return
	}
	for _, s := range m.servos {
		s.Anim.DisplaySmall()
		s.Anim.Stop()
	}
	m.servos[m.mode-1].Anim.DisplayFull()
}

// Apply lets the machine sit behind an input binding; the mode button
// is bound to NextMode.
func (m *Machine) Apply(a input.Action) {
	if a == input.NextMode {
		m.Advance()
	}
}

// Tick runs one loop iteration for the current mode: poll the active
// binding set, then advance and draw the mode's servos.
func (m *Machine) Tick(now uint32) {
	m.dispatchers[m.mode].Poll(now)
	if m.mode == Overview {
		for _, s := range m.servos {
			s.Anim.Update(now)
			m.display.DrawServo(s.Anim.State(), s.Row)
		}
		return
	}
	s := m.servos[m.mode-1]
	s.Anim.Update(now)
	m.display.DrawServo(s.Anim.State(), s.Row)
}

// Target adapts an animator to the input dispatcher's action enum.
// The action set is resolved here, at compile time, rather than by
// name lookup at dispatch time.
type Target struct {
	Anim *animator.Animator
}

func (t Target) Apply(a input.Action) {
	switch a {
	case input.ToggleMinEdit:
		t.Anim.ToggleEdit(animator.FieldMin)
	case input.ToggleMaxEdit:
		t.Anim.ToggleEdit(animator.FieldMax)
	case input.TogglePositionMinEdit:
		t.Anim.TogglePositionEdit(animator.BoundMin)
	case input.TogglePositionMaxEdit:
		t.Anim.TogglePositionEdit(animator.BoundMax)
	case input.ToggleSpeedEdit:
		t.Anim.ToggleEdit(animator.FieldSpeed)
	case input.ToggleRunStop:
		t.Anim.ToggleRun()
	case input.StepUp:
		t.Anim.Increment()
	case input.StepDown:
		t.Anim.Decrement()
	}
}

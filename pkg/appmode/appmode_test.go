package appmode

import (
	"testing"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/animator"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/input"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/screen"
)

type nullOutput struct{}

func (nullOutput) SetValue(int) {}

type recordingDisplay struct {
	drawn []animator.Snapshot
}

func (d *recordingDisplay) DrawServo(s animator.Snapshot, row screen.RowLayout) {
	d.drawn = append(d.drawn, s)
}

func newTestMachine(t *testing.T) (*Machine, []Servo, *recordingDisplay) {
	t.Helper()
	features := animator.Features{SpeedControl: true, RunStop: true}
	servos := []Servo{
		{Anim: animator.New(animator.Config{Angle: 90, Speed: 20, MinAngle: 0, MaxAngle: 180, Features: features}, nullOutput{}, 0)},
		{Anim: animator.New(animator.Config{Angle: 90, Speed: 60, MinAngle: 0, MaxAngle: 180, Features: features}, nullOutput{}, 0)},
	}
	dispatchers := []*input.Dispatcher{
		input.NewDispatcher(nil, input.Options{}),
		input.NewDispatcher(nil, input.Options{}),
		input.NewDispatcher(nil, input.Options{}),
	}
	display := &recordingDisplay{}
	return New(servos, dispatchers, display), servos, display
}

type modeConfig struct {
	mode    int
	running []bool
	full    []bool
}

func observe(m *Machine, servos []Servo) modeConfig {
	c := modeConfig{mode: m.Mode()}
	for _, s := range servos {
		c.running = append(c.running, s.Anim.Running())
		c.full = append(c.full, s.Anim.State().FullLayout)
	}
	return c
}

func expectConfig(t *testing.T, got, expected modeConfig) {
	t.Helper()
	if got.mode != expected.mode {
		t.Errorf("mode %d, expected %d", got.mode, expected.mode)
	}
	for i := range expected.running {
		if got.running[i] != expected.running[i] {
			t.Errorf("servo %d running=%v, expected %v", i, got.running[i], expected.running[i])
		}
		if got.full[i] != expected.full[i] {
			t.Errorf("servo %d full layout=%v, expected %v", i, got.full[i], expected.full[i])
		}
	}
}

func TestInitialStateIsOverview(t *testing.T) {
	m, servos, _ := newTestMachine(t)
	expectConfig(t, observe(m, servos), modeConfig{
		mode:    Overview,
		running: []bool{true, true},
		full:    []bool{false, false},
	})
}

func TestModeCycle(t *testing.T) {
	m, servos, _ := newTestMachine(t)
	initial := observe(m, servos)

	m.Advance()
	expectConfig(t, observe(m, servos), modeConfig{
		mode:    1,
		running: []bool{false, false},
		full:    []bool{true, false},
	})

	m.Advance()
	expectConfig(t, observe(m, servos), modeConfig{
		mode:    2,
		running: []bool{false, false},
		full:    []bool{false, true},
	})

	// Third advance wraps back to an overview identical to startup.
	m.Advance()
	got := observe(m, servos)
	expectConfig(t, got, initial)
}

func TestTickDrawsPerMode(t *testing.T) {
	m, _, display := newTestMachine(t)

	m.Tick(20)
	if len(display.drawn) != 2 {
		t.Fatalf("overview drew %d servos, expected 2", len(display.drawn))
	}

	m.Advance()
	display.drawn = nil
	m.Tick(40)
	if len(display.drawn) != 1 {
		t.Fatalf("detail mode drew %d servos, expected 1", len(display.drawn))
	}
	if !display.drawn[0].FullLayout {
		t.Error("detail mode should draw the full layout")
	}
}

func TestOverviewServosSweepOnTick(t *testing.T) {
	m, servos, _ := newTestMachine(t)
	m.Tick(1000) // one second: 20 and 60 degrees respectively
	if a := servos[0].Anim.Angle(); a != 110 {
		t.Errorf("servo 0 at %v, expected 110", a)
	}
	if a := servos[1].Anim.Angle(); a != 150 {
		t.Errorf("servo 1 at %v, expected 150", a)
	}

	// In a detail mode the other servo is halted.
	m.Advance()
	m.Tick(2000)
	if a := servos[1].Anim.Angle(); a != 150 {
		t.Errorf("halted servo moved to %v", a)
	}
}

func TestModeButtonTarget(t *testing.T) {
	m, _, _ := newTestMachine(t)
	m.Apply(input.NextMode)
	if m.Mode() != 1 {
		t.Errorf("NextMode action left machine in mode %d", m.Mode())
	}
	m.Apply(input.StepUp) // not ours; ignored
	if m.Mode() != 1 {
		t.Errorf("unrelated action changed mode to %d", m.Mode())
	}
}

func TestServoTargetDispatch(t *testing.T) {
	features := animator.Features{SpeedControl: true, RunStop: true, CoupledPositionPreview: true}
	a := animator.New(animator.Config{Angle: 90, Speed: 20, MinAngle: 40, MaxAngle: 140, Features: features}, nullOutput{}, 0)
	target := Target{Anim: a}

	target.Apply(input.ToggleMinEdit)
	if a.Selected() != animator.FieldMin {
		t.Errorf("expected min edit selected, got %v", a.Selected())
	}
	target.Apply(input.StepUp)
	if a.MinAngle() != 42 {
		t.Errorf("step-up moved min to %d, expected 42", a.MinAngle())
	}
	target.Apply(input.ToggleRunStop)
	if !a.Running() {
		t.Error("run/stop toggle did not start the sweep")
	}
}

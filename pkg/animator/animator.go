package animator

import (
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/ticks"
)

const (
	AngleMin = 0
	AngleMax = 180

	SpeedMin = 1
	SpeedMax = 150

	boundStep    = 2
	positionStep = 2
	speedUpStep  = 2
)

// Field identifies which servo setting is the target of
// increment/decrement input.  At most one field is selected per servo.
type Field int

const (
	FieldNone Field = iota
	FieldMin
	FieldMax
	FieldSpeed
	FieldPosition
)

type Bound int

const (
	BoundMin Bound = iota
	BoundMax
)

// Output receives the commanded actuator value, [-90, 90].
type Output interface {
	SetValue(v int)
}

// Features selects between the behaviours of the two original rig
// variants, so one implementation covers both.
type Features struct {
	// SpeedControl enables sweep-speed editing via ToggleEdit(FieldSpeed).
	SpeedControl bool
	// RunStop enables the manual run/stop toggle.
	RunStop bool
	// CoupledPositionPreview enables TogglePositionEdit, which moves
	// the arm to a bound while that bound is being edited.
	CoupledPositionPreview bool
	// FineSpeedDown makes decrement step speed by 1 rather than 2.
	FineSpeedDown bool
}

type Config struct {
	Angle    float64
	Speed    int
	MinAngle int
	MaxAngle int

	Features Features
}

// Snapshot is a read-only copy of the animator state for rendering
// and telemetry.
type Snapshot struct {
	Angle    float64
	MinAngle int
	MaxAngle int
	Speed    int

	Running    bool
	FullLayout bool

	EditingMin      bool
	EditingMax      bool
	EditingSpeed    bool
	EditingPosition bool
}

// Animator owns one servo's sweep state.  Update converts elapsed
// ticks into angular motion, ping-ponging between the bounds, and
// pushes the commanded value to the output.  All mutation happens from
// the single control loop; there is no locking here.
type Animator struct {
	out      Output
	features Features

	angle    float64
	minAngle int
	maxAngle int
	speed    int

	reversing bool
	running   bool

	selected Field
	// In coupled edit mode the live position tracks the selected bound.
	positionCoupled bool

	fullLayout bool

	lastUpdate uint32
}

func New(cfg Config, out Output, now uint32) *Animator {
	a := &Animator{
		out:        out,
		features:   cfg.Features,
		angle:      cfg.Angle,
		minAngle:   cfg.MinAngle,
		maxAngle:   cfg.MaxAngle,
		speed:      cfg.Speed,
		lastUpdate: now,
	}
	a.angle = clampFloat(a.angle, AngleMin, AngleMax)
	a.minAngle = clampInt(a.minAngle, AngleMin, AngleMax)
	a.maxAngle = clampInt(a.maxAngle, AngleMin, AngleMax)
	if a.minAngle > a.maxAngle {
		a.maxAngle = a.minAngle
	}
	a.speed = clampInt(a.speed, SpeedMin, SpeedMax)
	return a
}

// SetBound clamps the value into [0, 180] and drags the opposite bound
// along if the two would cross.  Bad input is corrected, never
// rejected.
func (a *Animator) SetBound(which Bound, value int) {
	value = clampInt(value, AngleMin, AngleMax)
	switch which {
	case BoundMin:
		a.minAngle = value
		if a.minAngle > a.maxAngle {
			a.maxAngle = a.minAngle
		}
	case BoundMax:
		a.maxAngle = value
		if a.maxAngle < a.minAngle {
			a.minAngle = a.maxAngle
		}
	}
}

// ToggleEdit flips the edit selection for the given field, deselecting
// any other.  Selecting a bound in this mode also stops the sweep.
func (a *Animator) ToggleEdit(f Field) {
	if f == FieldSpeed && !a.features.SpeedControl {
		return
	}
	a.positionCoupled = false
	if a.selected == f {
		a.selected = FieldNone
		return
	}
	a.selected = f
	if f == FieldMin || f == FieldMax {
		a.Stop()
	}
}

// TogglePositionEdit flips the combined position+bound selection for
// the given bound and moves the arm to that bound so the user can see
// it.  The arm moves whether the toggle selects or deselects.
func (a *Animator) TogglePositionEdit(which Bound) {
	if !a.features.CoupledPositionPreview {
		a.ToggleEdit(boundField(which))
		return
	}
	f := boundField(which)
	if a.selected == f && a.positionCoupled {
		a.selected = FieldNone
		a.positionCoupled = false
	} else {
		a.selected = f
		a.positionCoupled = true
	}
	switch which {
	case BoundMin:
		a.angle = float64(a.minAngle)
	case BoundMax:
		a.angle = float64(a.maxAngle)
	}
}

func boundField(w Bound) Field {
	if w == BoundMax {
		return FieldMax
	}
	return FieldMin
}

// ToggleRun flips the run state and clears any edit selection.
func (a *Animator) ToggleRun() {
	if !a.features.RunStop {
		return
	}
	a.running = !a.running
	a.selected = FieldNone
	a.positionCoupled = false
}

func (a *Animator) Run() {
	a.running = true
}

func (a *Animator) Stop() {
	a.running = false
}

func (a *Animator) DisplaySmall() {
	a.fullLayout = false
}

func (a *Animator) DisplayFull() {
	a.fullLayout = true
}

// Increment steps the selected field up, clamped to its domain.  With
// no selection it is a no-op.
func (a *Animator) Increment() {
	switch a.selected {
	case FieldMin:
		a.minAngle = clampInt(a.minAngle+boundStep, AngleMin, AngleMax)
		if a.minAngle > a.maxAngle {
			a.maxAngle = a.minAngle
		}
		if a.positionCoupled {
			a.angle = clampFloat(a.angle+positionStep, AngleMin, AngleMax)
		}
	case FieldMax:
		a.maxAngle = clampInt(a.maxAngle+boundStep, AngleMin, AngleMax)
		if a.positionCoupled {
			a.angle = clampFloat(a.angle+positionStep, AngleMin, AngleMax)
		}
	case FieldSpeed:
		a.speed = clampInt(a.speed+speedUpStep, SpeedMin, SpeedMax)
	case FieldPosition:
		a.angle = clampFloat(a.angle+positionStep, AngleMin, AngleMax)
	}
}

// Decrement steps the selected field down, clamped to its domain.
// Speed steps down by 1 when the fine-speed-down feature is on, so
// slowing is finer-grained than speeding up.
func (a *Animator) Decrement() {
	switch a.selected {
	case FieldMin:
		a.minAngle = clampInt(a.minAngle-boundStep, AngleMin, AngleMax)
		if a.positionCoupled {
			a.angle = clampFloat(a.angle-positionStep, AngleMin, AngleMax)
		}
	case FieldMax:
		a.maxAngle = clampInt(a.maxAngle-boundStep, AngleMin, AngleMax)
		if a.maxAngle < a.minAngle {
			a.minAngle = a.maxAngle
		}
		if a.positionCoupled {
			a.angle = clampFloat(a.angle-positionStep, AngleMin, AngleMax)
		}
	case FieldSpeed:
		step := speedUpStep
		if a.features.FineSpeedDown {
			step = 1
		}
		a.speed = clampInt(a.speed-step, SpeedMin, SpeedMax)
	case FieldPosition:
		a.angle = clampFloat(a.angle-positionStep, AngleMin, AngleMax)
	}
}

// Update advances the sweep by the time elapsed since the previous
// call and pushes the commanded value to the output.  The time
// reference is refreshed even while stopped, so restarting does not
// produce a jump.  At a bound the angle clamps and the direction
// flips; the sweep never overshoots.
func (a *Animator) Update(now uint32) float64 {
	dt := ticks.Diff(now, a.lastUpdate)
	a.lastUpdate = now
	delta := float64(a.speed) * float64(dt) / 1000

	if a.running {
		if a.reversing {
			a.angle -= delta
			if a.angle <= float64(a.minAngle) {
				a.angle = float64(a.minAngle)
				a.reversing = false
			}
		} else {
			a.angle += delta
			if a.angle >= float64(a.maxAngle) {
				a.angle = float64(a.maxAngle)
				a.reversing = true
			}
		}
	}

	a.Move()
	return a.angle
}

// Move pushes the current commanded value to the actuator.
func (a *Animator) Move() {
	a.out.SetValue(a.CommandedValue())
}

// CommandedValue maps the angle [0, 180] to the actuator's native
// [-90, 90] domain, truncating to an integer at the output boundary.
func (a *Animator) CommandedValue() int {
	return int(a.angle) - 90
}

func (a *Animator) Angle() float64 { return a.angle }
func (a *Animator) MinAngle() int  { return a.minAngle }
func (a *Animator) MaxAngle() int  { return a.maxAngle }
func (a *Animator) Speed() int     { return a.speed }
func (a *Animator) Running() bool  { return a.running }

// Selected reports which field, if any, is the edit target.
func (a *Animator) Selected() Field { return a.selected }

func (a *Animator) State() Snapshot {
	return Snapshot{
		Angle:      a.angle,
		MinAngle:   a.minAngle,
		MaxAngle:   a.maxAngle,
		Speed:      a.speed,
		Running:    a.running,
		FullLayout: a.fullLayout,

		EditingMin:   a.selected == FieldMin,
		EditingMax:   a.selected == FieldMax,
		EditingSpeed: a.selected == FieldSpeed,
		EditingPosition: a.selected == FieldPosition ||
			a.positionCoupled && (a.selected == FieldMin || a.selected == FieldMax),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v float64, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

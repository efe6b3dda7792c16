package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"periph.io/x/periph/host"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/animator"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/appmode"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/config"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/encoder"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/input"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/pca9685"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/pins"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/screen"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/telemetry"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/ticks"
)

const tickInterval = 20 * time.Millisecond

// servoChannel binds one animator output to a PCA9685 port.
type servoChannel struct {
	dev  pca9685.Interface
	port int
}

func (s servoChannel) SetValue(v int) {
	if err := s.dev.SetValue(s.port, v); err != nil {
		fmt.Println("Failed to write to PCA9685: ", err)
	}
}

func main() {
	fmt.Print("---- Connect Stethoscope ----\n\n")
	fmt.Println("GOMAXPROCS", runtime.GOMAXPROCS(0))

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		s := <-signals
		fmt.Println("Signal: ", s)
		cancel()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()

	cfg := config.Load(config.Path())

	if _, err := host.Init(); err != nil {
		fmt.Printf("Failed to init GPIO host: %v.\n", err)
		if os.Getenv("IGNORE_MISSING_GPIO") != "true" {
			cancel()
			return
		}
	}

	servoDriver, err := pca9685.New(cfg.I2CDevice)
	if err != nil {
		fmt.Printf("Failed to open PCA9685: %v.\n", err)
		if os.Getenv("IGNORE_MISSING_SERVOS") == "true" {
			fmt.Printf("Using dummy servo driver\n")
			servoDriver = pca9685.Dummy()
		} else {
			cancel()
			return
		}
	}
	if err := servoDriver.Configure(); err != nil {
		fmt.Println("Failed to configure PCA9685: ", err)
		cancel()
		return
	}
	defer func() {
		fmt.Println("Centring servos")
		for _, sc := range cfg.Servos {
			servoDriver.SetValue(sc.Port, 0)
		}
		servoDriver.Close()
	}()

	renderer, err := screen.New(cfg.FramebufferDevice)
	if err != nil {
		fmt.Println("Failed to open screen, ignoring: ", err)
		renderer = screen.NewDiscard()
	}
	defer renderer.Close()

	clock := ticks.New()
	now := clock.Ticks()

	features := animator.Features{
		SpeedControl:           cfg.SpeedControl,
		RunStop:                cfg.RunStop,
		CoupledPositionPreview: cfg.CoupledPositionPreview,
		FineSpeedDown:          cfg.FineSpeedDown,
	}
	var servos []appmode.Servo
	for i, sc := range cfg.Servos {
		anim := animator.New(animator.Config{
			Angle:    sc.Angle,
			Speed:    sc.Speed,
			MinAngle: sc.MinAngle,
			MaxAngle: sc.MaxAngle,
			Features: features,
		}, servoChannel{servoDriver, sc.Port}, now)
		servos = append(servos, appmode.Servo{Anim: anim, Row: rowLayout(i)})
	}

	buttonA := openButton(cfg.ButtonAPin, pins.PullUp)
	buttonB := openButton(cfg.ButtonBPin, pins.PullUp)
	buttonX := openButton(cfg.ButtonXPin, pins.PullUp)
	buttonY := openButton(cfg.ButtonYPin, pins.PullUp)
	modeButton := openButton(cfg.ModeButtonPin, pins.PullUp)

	dispatchers := buildDispatchers(cfg, servos, buttonA, buttonB, buttonX, buttonY)
	machine := appmode.New(servos, dispatchers, renderer)

	modeDispatcher := input.NewDispatcher([]input.Binding{
		{Button: modeButton, Target: machine, Action: input.NextMode},
	}, input.Options{DebounceMs: cfg.ButtonDebounceMs, PerInput: cfg.PerInputDebounce})

	var rotary *input.RotaryDispatcher
	enc, err := encoder.New(cfg.EncoderClkPin, cfg.EncoderDtPin)
	if err != nil {
		fmt.Println("Failed to open rotary encoder, ignoring: ", err)
	} else {
		enc.Start(ctx)
		var targets []input.Target
		for _, s := range servos {
			targets = append(targets, appmode.Target{Anim: s.Anim})
		}
		rotary = input.NewRotary(enc, targets, cfg.EncoderDebounceMs)
	}

	var reporter *telemetry.Reporter
	if cfg.TelemetryDevice != "" {
		reporter, err = telemetry.Open(cfg.TelemetryDevice, cfg.TelemetryBaud, cfg.TelemetryIntervalMs)
		if err != nil {
			fmt.Println("Failed to open telemetry port, ignoring: ", err)
		}
	}
	defer reporter.Close()

	fmt.Printf("----- %s -----\n", machine.Name())

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	snaps := make([]animator.Snapshot, len(servos))
	for {
		select {
		case <-ctx.Done():
			fmt.Println("Context done, shutting down")
			return
		case <-ticker.C:
			now := clock.Ticks()
			renderer.Clear()
			if rotary != nil {
				rotary.Poll(now)
			}
			modeDispatcher.Poll(now)
			machine.Tick(now)
			if err := renderer.Flush(); err != nil {
				fmt.Println("Screen failure: ", err)
			}
			for i, s := range servos {
				snaps[i] = s.Anim.State()
			}
			reporter.MaybeReport(now, snaps)
		}
	}
}

func openButton(pin string, pull pins.Pull) input.Button {
	b, err := pins.NewButton(pin, pull)
	if err != nil {
		fmt.Printf("Failed to open button %s, ignoring: %v\n", pin, err)
		return pins.Unwired{}
	}
	return b
}

// rowLayout places servo rows the way the rig's panel is laid out:
// first row near the top with an up arrow, second near the bottom
// with a down arrow and its detail text pushed into the top half.
func rowLayout(i int) screen.RowLayout {
	if i == 0 {
		return screen.RowLayout{VerticalOffset: 25, Marker: screen.UpArrow}
	}
	return screen.RowLayout{
		VerticalOffset: 90,
		Marker:         screen.DownArrow,
		MarkerOffset:   -25,
		DetailOnTop:    true,
	}
}

// buildDispatchers wires the per-mode button maps.  The overview maps
// the four face buttons to bound editing across both servos; each
// detail mode gives all four buttons to one servo.
func buildDispatchers(cfg config.Config, servos []appmode.Servo, a, b, x, y input.Button) []*input.Dispatcher {
	opts := input.Options{DebounceMs: cfg.ButtonDebounceMs, PerInput: cfg.PerInputDebounce}

	dispatchers := []*input.Dispatcher{nil}
	var overview []input.Binding
	if len(servos) > 0 {
		t := appmode.Target{Anim: servos[0].Anim}
		overview = append(overview,
			input.Binding{Button: a, Target: t, Action: input.ToggleMinEdit},
			input.Binding{Button: x, Target: t, Action: input.ToggleMaxEdit},
		)
		dispatchers = append(dispatchers, input.NewDispatcher([]input.Binding{
			{Button: a, Target: t, Action: input.TogglePositionMinEdit},
			{Button: x, Target: t, Action: input.TogglePositionMaxEdit},
			{Button: b, Target: t, Action: input.ToggleSpeedEdit},
			{Button: y, Target: t, Action: input.ToggleRunStop},
		}, opts))
	}
	if len(servos) > 1 {
		t := appmode.Target{Anim: servos[1].Anim}
		overview = append(overview,
			input.Binding{Button: b, Target: t, Action: input.ToggleMinEdit},
			input.Binding{Button: y, Target: t, Action: input.ToggleMaxEdit},
		)
		dispatchers = append(dispatchers, input.NewDispatcher([]input.Binding{
			{Button: a, Target: t, Action: input.ToggleSpeedEdit},
			{Button: x, Target: t, Action: input.ToggleRunStop},
			{Button: b, Target: t, Action: input.TogglePositionMinEdit},
			{Button: y, Target: t, Action: input.TogglePositionMaxEdit},
		}, opts))
	}
	// The panel only has four face buttons; any further servos sweep
	// in the overview but get no detail bindings.
	for len(dispatchers) < len(servos)+1 {
		dispatchers = append(dispatchers, input.NewDispatcher(nil, opts))
	}
	dispatchers[0] = input.NewDispatcher(overview, opts)
	return dispatchers
}

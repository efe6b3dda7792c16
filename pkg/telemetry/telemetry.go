// Package telemetry streams servo status lines over the rig's spare
// UART, throttled so the serial link never backs up the control loop.
package telemetry

import (
	"fmt"
	"io"

	"go.bug.st/serial"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/animator"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/ticks"
)

type Reporter struct {
	w          io.Writer
	closer     io.Closer
	intervalMs uint32
	lastReport uint32
}

// Open opens the serial device.  A nil *Reporter is valid and reports
// nothing, so callers need no guards when telemetry is not configured.
func Open(device string, baud int, intervalMs uint32) (*Reporter, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return &Reporter{
		w:          port,
		closer:     port,
		intervalMs: intervalMs,
	}, nil
}

// NewWriter builds a reporter over any writer; used by tests and by
// runs that log telemetry to stdout.
func NewWriter(w io.Writer, intervalMs uint32) *Reporter {
	return &Reporter{
		w:          w,
		intervalMs: intervalMs,
	}
}

// MaybeReport writes one line per servo if the report interval has
// elapsed.  Write failures are logged, not fatal; telemetry is an
// observer, never a participant.
func (r *Reporter) MaybeReport(now uint32, snaps []animator.Snapshot) {
	if r == nil {
		return
	}
	if ticks.Diff(now, r.lastReport) < int32(r.intervalMs) {
		return
	}
	r.lastReport = now
	for i, s := range snaps {
		line := fmt.Sprintf("servo%d angle=%03d min=%03d max=%03d speed=%03d running=%v\r\n",
			i, int(s.Angle), s.MinAngle, s.MaxAngle, s.Speed, s.Running)
		if _, err := io.WriteString(r.w, line); err != nil {
			fmt.Println("Telemetry write failed: ", err)
			return
		}
	}
}

func (r *Reporter) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

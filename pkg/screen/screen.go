// Package screen draws the servo status display and blits it to a
// small RGB565 framebuffer panel.
package screen

import (
	"fmt"
	"os"
	"time"

	"github.com/fogleman/gg"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/animator"
)

const (
	Width  = 240
	Height = 135

	scaleLeft  = 50
	scaleWidth = 140
)

// Glyph is a 5x8 marker pattern, one byte per row, low five bits used.
type Glyph [8]byte

var (
	UpArrow   = Glyph{0, 4, 14, 21, 4, 4, 0, 0}
	DownArrow = Glyph{0, 4, 4, 21, 14, 4, 0, 0}
)

// RowLayout places one servo's readout on the panel.
type RowLayout struct {
	VerticalOffset int
	Marker         Glyph
	MarkerOffset   int
	// DetailOnTop puts the full-layout text in the top half of the
	// panel, for rows that sit too low to fit it underneath.
	DetailOnTop bool
}

type Renderer struct {
	dc *gg.Context
	fb *os.File // nil when running without a panel
}

// New opens the framebuffer device.  Use NewDiscard when there is no
// panel attached.
func New(device string) (*Renderer, error) {
	f, err := os.OpenFile(device, os.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		dc: gg.NewContext(Width, Height),
		fb: f,
	}, nil
}

// NewDiscard renders into memory and throws frames away on Flush.
func NewDiscard() *Renderer {
	return &Renderer{
		dc: gg.NewContext(Width, Height),
	}
}

func (r *Renderer) Clear() {
	r.dc.SetRGB(0, 0, 0)
	r.dc.Clear()
}

// DrawServo renders one servo row: bound labels, scale line, bound
// tick marks and the position marker, plus the detail text when the
// snapshot asks for the full layout.
func (r *Renderer) DrawServo(s animator.Snapshot, row RowLayout) {
	dc := r.dc
	voff := float64(row.VerticalOffset)

	// Bound labels, green while being edited.
	r.setEditPen(s.EditingMin)
	dc.DrawString(zfl(s.MinAngle), 10, voff)
	r.setEditPen(s.EditingMax)
	dc.DrawString(zfl(s.MaxAngle), 200, voff)

	// Scale line.
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(scaleLeft, voff+6, scaleWidth, 2)
	dc.Fill()

	// Sweep end tick marks.
	tickMin := Rescale(s.MinAngle, 0, 180, scaleLeft, scaleLeft+scaleWidth)
	tickMax := Rescale(s.MaxAngle, 0, 180, scaleLeft, scaleLeft+scaleWidth)
	dc.DrawRectangle(float64(tickMin), voff+2, 2, 10)
	dc.DrawRectangle(float64(tickMax), voff+2, 2, 10)
	dc.Fill()

	// Position marker.
	markerPos := Rescale(int(s.Angle), 0, 180, scaleLeft, scaleLeft+scaleWidth) - 10
	dc.SetRGB(1, 0, 0)
	r.drawGlyph(markerPos, row.VerticalOffset+13+row.MarkerOffset, row.Marker)

	if s.FullLayout {
		r.drawDetail(s, row)
	}
}

func (r *Renderer) drawDetail(s animator.Snapshot, row RowLayout) {
	dc := r.dc
	// The detail text goes below the row, or in the top half when the
	// row itself sits at the bottom of the panel.
	speedY := float64(row.VerticalOffset) + 75
	angleY := float64(row.VerticalOffset) + 35
	runY := float64(row.VerticalOffset) + 75
	if row.DetailOnTop {
		speedY, angleY, runY = 20, 45, 25
	}

	r.setEditPen(s.EditingSpeed)
	dc.DrawString(zfl(s.Speed)+" SPD", 10, speedY)

	r.setEditPen(s.EditingPosition)
	dc.DrawString(zfl(int(s.Angle)), 95, angleY)

	if s.Running {
		dc.SetRGB(1, 0, 0)
		dc.DrawString("STOP", 190, runY)
	} else {
		dc.SetRGB(0, 1, 0)
		dc.DrawString(" RUN", 190, runY)
	}
}

func (r *Renderer) setEditPen(editing bool) {
	if editing {
		r.dc.SetRGB255(0, 255, 0)
	} else {
		r.dc.SetRGB255(255, 255, 0)
	}
}

// drawGlyph renders a 5x8 pattern with every dot doubled to 2x2
// pixels.
func (r *Renderer) drawGlyph(x, y int, g Glyph) {
	for line := 0; line < 8; line++ {
		for col := 0; col < 5; col++ {
			if g[line]&(1<<uint(4-col)) == 0 {
				continue
			}
			r.dc.DrawRectangle(float64(x+(col+3)*2), float64(y+line*2), 2, 2)
		}
	}
	r.dc.Fill()
}

// Flush converts the frame to RGB565 and writes it to the panel a row
// at a time, pacing the writes so the panel's SPI bridge keeps up.
func (r *Renderer) Flush() error {
	if r.fb == nil {
		return nil
	}
	img := r.dc.Image()
	buf := make([]byte, Width*Height*2)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c := img.At(x, y)
			cr, cg, cb, _ := c.RGBA() // 16-bit pre-multiplied

			rb := byte(cr >> (16 - 5))
			gb := byte(cg >> (16 - 6)) // Green has 6 bits
			bb := byte(cb >> (16 - 5))

			i := (y*Width + x) * 2
			buf[i] = bb | (gb << 5)
			buf[i+1] = (rb << 3) | (gb >> 3)
		}
	}

	if _, err := r.fb.Seek(0, 0); err != nil {
		return err
	}
	const rowBytes = Width * 2
	for y := 0; y < Height; y++ {
		if _, err := r.fb.Write(buf[y*rowBytes : (y+1)*rowBytes]); err != nil {
			return err
		}
		time.Sleep(10 * time.Microsecond)
	}
	return nil
}

func (r *Renderer) Close() error {
	if r.fb == nil {
		return nil
	}
	return r.fb.Close()
}

// Rescale maps x from [inMin, inMax] to [outMin, outMax].  A
// degenerate input range cannot fault; it logs and returns the output
// minimum.
func Rescale(x, inMin, inMax, outMin, outMax int) int {
	if inMax-inMin == 0 {
		fmt.Println("rescale: caught a divide by zero")
		return outMin
	}
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// zfl formats a value zero-padded to three digits, the fixed label
// width of the panel layout.
func zfl(v int) string {
	return fmt.Sprintf("%03d", v)
}

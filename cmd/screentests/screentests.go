package main

import (
	"fmt"
	"time"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/animator"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/screen"
)

// Draws a pair of synthetic servo rows and animates the markers, to
// prove out the panel without any servos attached.
func main() {
	r, err := screen.New("/dev/fb1")
	if err != nil {
		fmt.Println("Failed to open screen: ", err)
		return
	}
	defer r.Close()

	rowA := screen.RowLayout{VerticalOffset: 25, Marker: screen.UpArrow}
	rowB := screen.RowLayout{VerticalOffset: 90, Marker: screen.DownArrow, MarkerOffset: -25, DetailOnTop: true}

	angle := 0.0
	for {
		angle += 3
		if angle > 180 {
			angle = 0
		}
		r.Clear()
		r.DrawServo(animator.Snapshot{
			Angle: angle, MinAngle: 20, MaxAngle: 160, Speed: 20, Running: true,
		}, rowA)
		r.DrawServo(animator.Snapshot{
			Angle: 180 - angle, MinAngle: 0, MaxAngle: 180, Speed: 60,
			FullLayout: true, EditingSpeed: true,
		}, rowB)
		if err := r.Flush(); err != nil {
			fmt.Println("Screen failure: ", err)
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

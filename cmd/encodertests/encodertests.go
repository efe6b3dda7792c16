package main

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/periph/host"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/encoder"
)

func main() {
	if _, err := host.Init(); err != nil {
		fmt.Println("Failed to init GPIO host: ", err)
		return
	}

	enc, err := encoder.New("GPIO21", "GPIO22")
	if err != nil {
		fmt.Println("Failed to open encoder: ", err)
		return
	}
	enc.Start(context.Background())

	fmt.Println("Turn the knob...")
	last := enc.Value()
	for range time.NewTicker(100 * time.Millisecond).C {
		v := enc.Value()
		if v != last {
			fmt.Printf("count=%d (delta %+d)\n", v, v-last)
			last = v
		}
	}
}

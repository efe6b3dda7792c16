package main

import (
	"fmt"
	"time"

	"periph.io/x/periph/host"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/config"
	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/pins"
)

func main() {
	if _, err := host.Init(); err != nil {
		fmt.Println("Failed to init GPIO host: ", err)
		return
	}

	cfg := config.Default()
	names := []string{"A", "B", "X", "Y", "MODE"}
	pinNames := []string{cfg.ButtonAPin, cfg.ButtonBPin, cfg.ButtonXPin, cfg.ButtonYPin, cfg.ModeButtonPin}

	var buttons []*pins.Button
	for i, p := range pinNames {
		b, err := pins.NewButton(p, pins.PullUp)
		if err != nil {
			fmt.Printf("Failed to open button %s (%s): %v\n", names[i], p, err)
			return
		}
		buttons = append(buttons, b)
	}

	fmt.Println("Press some buttons...")
	wasPressed := make([]bool, len(buttons))
	for range time.NewTicker(10 * time.Millisecond).C {
		for i, b := range buttons {
			pressed := b.IsPressed()
			if pressed != wasPressed[i] {
				wasPressed[i] = pressed
				if pressed {
					fmt.Printf("%s down\n", names[i])
				} else {
					fmt.Printf("%s up\n", names[i])
				}
			}
		}
	}
}

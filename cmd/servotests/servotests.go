package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NUSTEM-UK/Connect-Stethoscope/pkg/pca9685"
)

func main() {
	pwmController, err := pca9685.New("/dev/i2c-1")
	if err != nil {
		fmt.Println("Failed to open PCA9685", err)
		return
	}

	err = pwmController.Configure()
	if err != nil {
		fmt.Println("Failed to configure PCA9685", err)
		return
	}

	fmt.Println(
		`Commands:
    s <n> <value>   # Command servo on port
    w <n>           # Sweep servo across its full travel

<n>       Port number 0-15
<value>   Degrees from centre, -90 to 90; 0=centre\n`)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		parts := strings.Split(strings.TrimSpace(line), " ")
		switch parts[0] {
		case "s":
			if len(parts) < 3 {
				fmt.Println("Not enough parameters")
				continue
			}
			n, ok := parsePort(parts[1])
			if !ok {
				continue
			}
			v, err := strconv.Atoi(parts[2])
			if err != nil {
				fmt.Println("Expected int, not ", parts[2])
				continue
			}
			fmt.Printf("Setting servo %d to %d\n", n, v)
			if err = pwmController.SetValue(n, v); err != nil {
				fmt.Println("Failed to write to PCA9685: ", err)
				return
			}
		case "w":
			if len(parts) < 2 {
				fmt.Println("Not enough parameters")
				continue
			}
			n, ok := parsePort(parts[1])
			if !ok {
				continue
			}
			fmt.Printf("Sweeping servo %d\n", n)
			if err = sweep(pwmController, n); err != nil {
				fmt.Println("Failed to write to PCA9685: ", err)
				return
			}
		}
	}
}

func parsePort(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Println("Expected int, not ", s)
		return 0, false
	}
	if n < 0 || n > 15 {
		fmt.Println("Expected 0 <= n < 16")
		return 0, false
	}
	return n, true
}

func sweep(dev pca9685.Interface, port int) error {
	for v := -90; v <= 90; v += 5 {
		if err := dev.SetValue(port, v); err != nil {
			return err
		}
		time.Sleep(50 * time.Millisecond)
	}
	for v := 90; v >= -90; v -= 5 {
		if err := dev.SetValue(port, v); err != nil {
			return err
		}
		time.Sleep(50 * time.Millisecond)
	}
	return dev.SetValue(port, 0)
}

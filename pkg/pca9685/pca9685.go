package pca9685

import (
	"fmt"
	"time"

	"golang.org/x/exp/io/i2c"
)

const (
	DefaultAddr = 0x40

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.

	PWMPeriod = 20 * time.Millisecond

	ServoMinPulseDuration = 1000 * time.Microsecond
	ServoMaxPulseDuration = 2000 * time.Microsecond

	PWMMax = 4095

	ServoMinPWM = float64(PWMMax * ServoMinPulseDuration / PWMPeriod)
	ServoMaxPWM = float64(PWMMax * ServoMaxPulseDuration / PWMPeriod)

	// Servo commands arrive in the controller's native domain,
	// degrees from centre.
	ValueMin = -90
	ValueMax = 90
)

type Interface interface {
	Configure() error
	SetValue(port int, value int) error
	Close() error
}

type PCA9685 struct {
	dev *i2c.Device
}

func New(deviceFile string) (Interface, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, DefaultAddr)
	if err != nil {
		return nil, err
	}
	return &PCA9685{
		dev: dev,
	}, nil
}

func (p *PCA9685) Configure() (err error) {
	// Put device to sleep.
	err = p.dev.WriteReg(RegMode1, []byte{0x11})
	if err != nil {
		return
	}
	// Update pre-scaler for 50Hz.
	err = p.dev.WriteReg(RegPreScale, []byte{0x79})
	if err != nil {
		return
	}
	// Trigger a reset
	err = p.dev.WriteReg(RegMode1, []byte{0x01})
	if err != nil {
		return
	}
	// Required delay after reset.
	time.Sleep(1 * time.Millisecond)
	// Enable.
	err = p.dev.WriteReg(RegMode1, []byte{0x81})
	return
}

// SetValue commands the servo on the given port.  value is degrees
// from centre, [-90, 90], mapped onto the 1-2ms pulse window.
// Out-of-range ports and values are logged and corrected, not
// rejected.
func (p *PCA9685) SetValue(port int, value int) error {
	pwmValue, ok := pulseForValue(port, value)
	if !ok {
		return nil
	}
	addr := RegLEDBase + port*4

	return p.dev.WriteReg(byte(addr), []byte{0, 0, byte(pwmValue & 0xff), byte(pwmValue >> 8)})
}

func pulseForValue(port, value int) (uint16, bool) {
	if port < 0 || port > 15 {
		fmt.Println("Servo port out of range: ", port)
		return 0, false
	}
	if value < ValueMin {
		value = ValueMin
	} else if value > ValueMax {
		value = ValueMax
	}

	fraction := float64(value-ValueMin) / float64(ValueMax-ValueMin)
	return uint16(ServoMinPWM + fraction*(ServoMaxPWM-ServoMinPWM)), true
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}

func Dummy() Interface {
	return &dummyServo{}
}

type dummyServo struct {
}

func (*dummyServo) Configure() error {
	return nil
}

func (*dummyServo) SetValue(port int, value int) error {
	return nil
}

func (*dummyServo) Close() error {
	return nil
}

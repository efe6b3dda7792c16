// Package config holds the rig's compiled-in defaults and overlays
// them from a yaml file, writing back a copy of the config actually in
// use so the file on the flash card can be diffed against reality.
package config

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

const DefaultPath = "/cfg/stethoscope.yaml"

type ServoConfig struct {
	Port     int     `yaml:"port"`
	Angle    float64 `yaml:"angle"`
	Speed    int     `yaml:"speed"`
	MinAngle int     `yaml:"minAngle"`
	MaxAngle int     `yaml:"maxAngle"`
}

type Config struct {
	I2CDevice         string `yaml:"i2cDevice"`
	FramebufferDevice string `yaml:"framebufferDevice"`

	EncoderClkPin string `yaml:"encoderClkPin"`
	EncoderDtPin  string `yaml:"encoderDtPin"`
	ModeButtonPin string `yaml:"modeButtonPin"`
	ButtonAPin    string `yaml:"buttonAPin"`
	ButtonBPin    string `yaml:"buttonBPin"`
	ButtonXPin    string `yaml:"buttonXPin"`
	ButtonYPin    string `yaml:"buttonYPin"`

	ButtonDebounceMs  uint32 `yaml:"buttonDebounceMs"`
	EncoderDebounceMs uint32 `yaml:"encoderDebounceMs"`
	PerInputDebounce  bool   `yaml:"perInputDebounce"`

	SpeedControl           bool `yaml:"speedControl"`
	RunStop                bool `yaml:"runStop"`
	CoupledPositionPreview bool `yaml:"coupledPositionPreview"`
	FineSpeedDown          bool `yaml:"fineSpeedDown"`

	TelemetryDevice     string `yaml:"telemetryDevice"`
	TelemetryBaud       int    `yaml:"telemetryBaud"`
	TelemetryIntervalMs uint32 `yaml:"telemetryIntervalMs"`

	Servos []ServoConfig `yaml:"servos"`
}

func Default() Config {
	return Config{
		I2CDevice:         "/dev/i2c-1",
		FramebufferDevice: "/dev/fb1",

		EncoderClkPin: "GPIO21",
		EncoderDtPin:  "GPIO22",
		ModeButtonPin: "GPIO26",
		ButtonAPin:    "GPIO12",
		ButtonBPin:    "GPIO13",
		ButtonXPin:    "GPIO16",
		ButtonYPin:    "GPIO24",

		ButtonDebounceMs:  500,
		EncoderDebounceMs: 60,

		SpeedControl:           true,
		RunStop:                true,
		CoupledPositionPreview: true,
		FineSpeedDown:          true,

		TelemetryBaud:       115200,
		TelemetryIntervalMs: 200,

		Servos: []ServoConfig{
			{Port: 0, Angle: 90, Speed: 20, MinAngle: 90, MaxAngle: 90},
			{Port: 1, Angle: 90, Speed: 60, MinAngle: 90, MaxAngle: 90},
		},
	}
}

// Path returns the config file location, overridable via
// STETHOSCOPE_CONFIG.
func Path() string {
	if p := os.Getenv("STETHOSCOPE_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the config file over the defaults.  A missing or broken
// file is logged and the defaults used; the rig must come up anyway.
func Load(path string) Config {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
	} else {
		err = yaml.Unmarshal(raw, &cfg)
		if err != nil {
			fmt.Println(err)
			cfg = Default()
		}
	}
	fmt.Printf("Using config: %+v\n", cfg)

	// Write out the config that we are using.
	cfgBytes, err := yaml.Marshal(&cfg)
	if err != nil {
		fmt.Println(err)
	} else {
		err = os.WriteFile(inUsePath(path), cfgBytes, 0666)
		if err != nil {
			fmt.Println(err)
		}
	}
	return cfg
}

func inUsePath(path string) string {
	if ext := ".yaml"; strings.HasSuffix(path, ext) {
		return strings.TrimSuffix(path, ext) + "-in-use" + ext
	}
	return path + "-in-use"
}

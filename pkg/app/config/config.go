package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"

	"segcount/pkg/port"
)

// Config holds the application configuration.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Flag      FlagConfig      `yaml:"-"`
	Debug     DebugConfig     `yaml:"debug"`
	Display   DisplayConfig   `yaml:"display"`
	Gpio      GpioConfig      `yaml:"gpio"`
	Watchdog  WatchdogConfig  `yaml:"watchdog"`
	Webserver WebserverConfig `yaml:"webserver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	LogLevel   string
	ConfigFile string
}

// DisplayConfig defines the update cadence of the display.
type DisplayConfig struct {
	// IntervalInt is the time between two counter updates in ms.
	IntervalInt int           `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
}

// GpioConfig defines the backend and the lines of the two display buses.
// Bus1 and Bus2 list the lines wired to the decoder inputs A, B, C, D.
// For gpiod the values are line offsets of Chip, for gpiomem BCM GPIO numbers.
type GpioConfig struct {
	Backend string `yaml:"backend"`
	Chip    string `yaml:"chip"`
	Bus1    []int  `yaml:"bus1"`
	Bus2    []int  `yaml:"bus2"`
}

// WatchdogConfig defines the watchdog device, an empty device uses the modelled watchdog.
type WatchdogConfig struct {
	Device string `yaml:"device"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	Topic      string `yaml:"topic"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Flag: FlagConfig{},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Display: DisplayConfig{
			IntervalInt: 1000,
			Interval:    time.Second,
		},
		Gpio: GpioConfig{
			Backend: "gpiod",
			Chip:    "gpiochip0",
			Bus1:    []int{5, 6, 13, 19},
			Bus2:    []int{12, 16, 20, 21},
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
			},
		},
		MQTT: MQTTConfig{
			Topic: "segcount/display",
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Debug.FlagString = c.Flag.LogLevel
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	if err := c.Validate(); err != nil {
		return err
	}

	c.Display.Interval = time.Duration(c.Display.IntervalInt) * time.Millisecond
	return nil
}

// Validate checks the gpio wiring and the display interval.
func (c *Config) Validate() error {
	switch c.Gpio.Backend {
	case "gpiod", "gpiomem", "emulated":
	default:
		return fmt.Errorf("gpio backend %q: must be gpiod, gpiomem or emulated", c.Gpio.Backend)
	}

	if c.Gpio.Backend == "gpiod" && c.Gpio.Chip == "" {
		return fmt.Errorf("gpio chip must be set for backend gpiod")
	}

	buses := []struct {
		name  string
		lines []int
	}{
		{"bus1", c.Gpio.Bus1},
		{"bus2", c.Gpio.Bus2},
	}

	used := map[int]string{}
	for _, b := range buses {
		name, bus := b.name, b.lines

		if len(bus) != 4 {
			return fmt.Errorf("gpio %v: expected 4 lines (A,B,C,D), got %v", name, len(bus))
		}

		for _, l := range bus {
			if l < 0 {
				return fmt.Errorf("gpio %v: invalid line %v", name, l)
			}
			if owner, ok := used[l]; ok {
				return fmt.Errorf("gpio %v: line %v is already used by %v", name, l, owner)
			}
			used[l] = name
		}
	}

	if c.Display.IntervalInt < 0 {
		return fmt.Errorf("display interval must not be negative: %v", c.Display.IntervalInt)
	}

	return nil
}

// Lines returns the port line mapping: bus 1 on port bits 0..3, bus 2 on port bits 4..7.
// Call it only on a validated configuration.
func (c *Config) Lines() (lines [port.Lines]int) {
	copy(lines[0:4], c.Gpio.Bus1)
	copy(lines[4:8], c.Gpio.Bus2)
	return
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	default:
		return fmt.Errorf("unknown log level %q", c.Debug.FlagString)
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}

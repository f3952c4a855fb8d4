package app

import (
	"time"

	"segcount/pkg/app/config"
	"segcount/pkg/mcu"
	"segcount/pkg/port"
	"segcount/pkg/raspberry"

	"github.com/womat/debug"
)

// openHardware requests the gpio lines of both buses and opens the watchdog.
func openHardware(c *config.Config) (port.Writer, Watchdog, error) {
	lines, err := raspberry.Open(c.Gpio.Backend, c.Gpio.Chip, c.Lines())
	if err != nil {
		debug.ErrorLog.Printf("can't open gpio backend %v: %v", c.Gpio.Backend, err)
		return nil, nil, err
	}

	if c.Watchdog.Device == "" {
		return lines, mcu.NewWatchdog(), nil
	}

	wd, err := mcu.OpenDeviceWatchdog(c.Watchdog.Device)
	if err != nil {
		debug.ErrorLog.Printf("can't open watchdog %v: %v", c.Watchdog.Device, err)
		_ = lines.Close()
		return nil, nil, err
	}

	return lines, wd, nil
}

// newBoard wires the modelled peripherals around the gpio lines.
func newBoard(w Watchdog, lines port.Writer, interval time.Duration) *Controller {
	return NewController(w, mcu.NewOscillator(), mcu.NewPort(lines), mcu.NewTimer2(), interval)
}

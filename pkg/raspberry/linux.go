//go:build linux

package raspberry

import (
	"github.com/warthog618/gpio"
	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"segcount/pkg/port"
)

// Chip represents a single GPIO chip that controls the port lines.
type Chip struct {
	gpiodChip *gpiod.Chip
	lines     [port.Lines]*gpiod.Line
}

// openChip opens a GPIO character device and requests control of the port lines.
// The lines are configured as push-pull outputs and initialized low.
// Control is maintained until the Chip is closed.
func openChip(name string, offsets [port.Lines]int) (*Chip, error) {
	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}

	chip := &Chip{gpiodChip: c}
	for i, o := range offsets {
		if chip.lines[i], err = c.RequestLine(o, gpiod.AsOutput(0), gpiod.AsPushPull); err != nil {
			debug.ErrorLog.Printf("can't request line %v of %v: %v", o, name, err)
			_ = chip.Close()
			return nil, err
		}
	}

	debug.DebugLog.Printf("requested lines %v of %v", offsets, name)
	return chip, nil
}

// Set drives the line of port bit position line.
func (c *Chip) Set(line int, l port.Level) error {
	if line < 0 || line >= port.Lines || c.lines[line] == nil {
		return ErrInvalidParam
	}
	return c.lines[line].SetValue(int(l))
}

// Close releases all requested lines and the chip.
func (c *Chip) Close() error {
	for _, l := range c.lines {
		if l != nil {
			_ = l.Close()
		}
	}
	return c.gpiodChip.Close()
}

// MemLines drives the port lines through the GPIO registers mapped from /dev/gpiomem.
type MemLines struct {
	pins [port.Lines]*gpio.Pin
}

// openMem maps the GPIO memory range and sets the BCM pins as outputs driven low.
// The BCM2835 output stage is always push-pull.
func openMem(bcm [port.Lines]int) (*MemLines, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}

	m := &MemLines{}
	for i, n := range bcm {
		p := gpio.NewPin(n)
		p.Low()
		p.Output()
		m.pins[i] = p
	}

	debug.DebugLog.Printf("mapped gpio pins %v", bcm)
	return m, nil
}

// Set drives the pin of port bit position line.
func (m *MemLines) Set(line int, l port.Level) error {
	if line < 0 || line >= port.Lines {
		return ErrInvalidParam
	}

	m.pins[line].Write(gpio.Level(l == port.High))
	return nil
}

// Close unmaps GPIO memory.
// The pins keep their last level.
func (m *MemLines) Close() error {
	return gpio.Close()
}

// Package raspberry drives the output lines of the display buses.
//
// Three backends implement port.Writer:
//   gpiod    the Linux GPIO character device (any board with a gpiochip)
//   gpiomem  the Raspberry Pi GPIO registers mapped from /dev/gpiomem
//   emulated in-memory lines, used for tests and runs without hardware
package raspberry

import (
	"fmt"

	"segcount/pkg/port"
)

var (
	ErrInvalidParam = fmt.Errorf("invalid parameters")
	ErrUnsupported  = fmt.Errorf("backend not supported on this platform")
)

// Backend names accepted by Open.
const (
	BackendGpiod    = "gpiod"
	BackendGpiomem  = "gpiomem"
	BackendEmulated = "emulated"
)

// consumer is the label shown for requested lines (gpioinfo).
const consumer = "segcount"

// Open opens the backend and requests the eight port lines as outputs driven low.
// lines maps the port bit positions 0..7 to chip line offsets (gpiod) or BCM numbers (gpiomem).
func Open(backend, chip string, lines [port.Lines]int) (port.Writer, error) {
	for i, l := range lines {
		if l < 0 {
			return nil, fmt.Errorf("%w: line %v of port has negative offset %v", ErrInvalidParam, i, l)
		}
	}

	switch backend {
	case BackendGpiod:
		c, err := openChip(chip, lines)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendGpiomem:
		m, err := openMem(lines)
		if err != nil {
			return nil, err
		}
		return m, nil
	case BackendEmulated:
		return NewEmuLines(), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidParam, backend)
	}
}

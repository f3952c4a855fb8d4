//go:build !linux

package raspberry

import (
	"segcount/pkg/port"
)

func openChip(string, [port.Lines]int) (port.Writer, error) {
	return nil, ErrUnsupported
}

func openMem([port.Lines]int) (port.Writer, error) {
	return nil, ErrUnsupported
}

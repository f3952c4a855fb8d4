package raspberry

import (
	"fmt"
	"sync"

	"segcount/pkg/port"
)

// EmuLines emulates the eight output lines in memory.
// Every Set is counted per line, so callers can check which lines were written.
type EmuLines struct {
	sync.Mutex
	levels [port.Lines]port.Level
	writes [port.Lines]int
	closed bool
}

// NewEmuLines returns emulated lines, all low.
func NewEmuLines() *EmuLines {
	return &EmuLines{}
}

// Set drives the emulated line.
func (e *EmuLines) Set(line int, l port.Level) error {
	if line < 0 || line >= port.Lines {
		return fmt.Errorf("%w: line %v", ErrInvalidParam, line)
	}

	e.Lock()
	defer e.Unlock()

	if e.closed {
		return fmt.Errorf("line %v already released", line)
	}

	e.levels[line] = l
	e.writes[line]++
	return nil
}

// Level returns the current level of the line.
func (e *EmuLines) Level(line int) port.Level {
	e.Lock()
	defer e.Unlock()
	return e.levels[line]
}

// Writes returns how often the line was set since it was opened.
func (e *EmuLines) Writes(line int) int {
	e.Lock()
	defer e.Unlock()
	return e.writes[line]
}

// Close releases the emulated lines.
func (e *EmuLines) Close() error {
	e.Lock()
	defer e.Unlock()
	e.closed = true
	return nil
}

// Package port holds the definition of a physical output port
package port

// Level is the logical level of an output line.
type Level int

const (
	// Low indicates a logical 0.
	Low Level = 0
	// High indicates a logical 1.
	High Level = 1
)

// Lines is the number of lines of one 8 bit port.
const Lines = 8

// Writer drives the physical lines of a port.
// Line numbers are port bit positions (0..7), the backend maps them to the hardware.
type Writer interface {
	// Set drives a single line.
	Set(line int, l Level) error
	// Close releases the lines.
	Close() error
}

// String returns "1" for High and "0" for Low.
func (l Level) String() string {
	if l == High {
		return "1"
	}
	return "0"
}

// LevelOf converts a bool to a Level.
func LevelOf(b bool) Level {
	if b {
		return High
	}
	return Low
}

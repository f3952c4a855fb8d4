// Package mcu models the peripherals of the C8051F005 the display was built for:
// watchdog, internal oscillator, port 0 with its crossbar and timer 2.
//
// The special function registers are kept inside the peripheral types.
// Callers only see typed operations (Configure, Set, Start, ...).
package mcu

import "errors"

var (
	ErrNotConfigured = errors.New("port is not configured")
	ErrInvalidLine   = errors.New("invalid port line")
)

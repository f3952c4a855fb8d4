package mcu

import (
	"fmt"
	"sync"

	"segcount/pkg/port"
)

const (
	// xbr2Xbare enables the crossbar, weak pull-ups stay enabled (WEAKPUD=0).
	xbr2Xbare = 0x40
	// prt0cfPushPull configures all port 0 lines as push-pull outputs.
	prt0cfPushPull = 0xff
)

// Port models port 0: the crossbar enable (XBR2), the output mode (PRT0CF)
// and the output latch (P0). Writes to the latch are driven to the physical lines.
type Port struct {
	sync.Mutex
	xbr2   byte
	prt0cf byte
	p0     byte
	out    port.Writer
}

// NewPort returns port 0 in its power-on state (crossbar disabled, open-drain)
// driving the lines of out.
func NewPort(out port.Writer) *Port {
	return &Port{out: out}
}

// Configure enables the crossbar, sets all eight lines push-pull
// and drives them low.
func (p *Port) Configure() error {
	p.Lock()
	defer p.Unlock()

	p.xbr2 = xbr2Xbare
	p.prt0cf = prt0cfPushPull
	p.p0 = 0x00

	for line := 0; line < port.Lines; line++ {
		if err := p.out.Set(line, port.Low); err != nil {
			return fmt.Errorf("can't drive line %v low: %w", line, err)
		}
	}

	return nil
}

// Set drives one line of port 0.
func (p *Port) Set(line int, l port.Level) error {
	if line < 0 || line >= port.Lines {
		return fmt.Errorf("%w: %v", ErrInvalidLine, line)
	}

	p.Lock()
	defer p.Unlock()

	if p.xbr2&xbr2Xbare == 0 || p.prt0cf&(1<<line) == 0 {
		return ErrNotConfigured
	}

	if l == port.High {
		p.p0 |= 1 << line
	} else {
		p.p0 &^= 1 << line
	}

	return p.out.Set(line, l)
}

// Level returns the latched level of the line.
func (p *Port) Level(line int) port.Level {
	p.Lock()
	defer p.Unlock()
	return port.LevelOf(p.p0&(1<<line) != 0)
}

// Latch returns the output latch P0.
func (p *Port) Latch() byte {
	p.Lock()
	defer p.Unlock()
	return p.p0
}

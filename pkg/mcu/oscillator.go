package mcu

import "sync"

// OSCICN bits
const (
	oscicnMsclke = 1 << 7 // missing clock detector
	oscicnIfrdy  = 1 << 4 // internal oscillator frequency ready
	oscicnClksl  = 1 << 3 // 0: internal, 1: external oscillator
	oscicnIoscen = 1 << 2 // internal oscillator enable
	oscicnIfcn   = 0x03   // internal oscillator frequency control
)

// power-on register values
const (
	oscicnReset = oscicnIfrdy | oscicnIoscen
	oscxcnReset = 0x00
)

// internalFreq is the internal oscillator frequency selected by IFCN.
var internalFreq = [4]uint32{2000000, 4000000, 8000000, 16000000}

// Oscillator models the internal (OSCICN) and external (OSCXCN) oscillator control.
type Oscillator struct {
	sync.Mutex
	oscicn byte
	oscxcn byte
}

// NewOscillator returns the oscillator in its power-on state:
// internal oscillator enabled at 2 MHz.
func NewOscillator() *Oscillator {
	return &Oscillator{oscicn: oscicnReset, oscxcn: oscxcnReset}
}

// Configure turns off the external oscillator and runs the system clock
// from the internal oscillator at 16 MHz.
// There is no ready polling, the oscillator settles while the next peripherals are set up.
func (o *Oscillator) Configure() {
	o.Lock()
	defer o.Unlock()

	o.oscxcn = 0x00
	o.oscicn |= oscicnMsclke | oscicnIfcn
	o.oscicn &^= oscicnClksl
}

// SysClk returns the system clock frequency in Hz.
func (o *Oscillator) SysClk() uint32 {
	o.Lock()
	defer o.Unlock()
	return internalFreq[o.oscicn&oscicnIfcn]
}

// ExternalEnabled reports whether the external oscillator is running.
func (o *Oscillator) ExternalEnabled() bool {
	o.Lock()
	defer o.Unlock()
	return o.oscxcn&0x70 != 0
}

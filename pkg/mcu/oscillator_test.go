package mcu

import "testing"

func TestOscillator_PowerOn(t *testing.T) {
	o := NewOscillator()
	if f := o.SysClk(); f != 2000000 {
		t.Fatalf("power-on sysclk %v, want 2 MHz", f)
	}
}

func TestOscillator_Configure(t *testing.T) {
	o := NewOscillator()
	o.Configure()

	if f := o.SysClk(); f != 16000000 {
		t.Fatalf("sysclk %v, want 16 MHz", f)
	}
	if o.ExternalEnabled() {
		t.Fatal("external oscillator must be off")
	}
	if o.oscicn&oscicnClksl != 0 {
		t.Fatal("system clock must use the internal oscillator")
	}
}

func TestOscillator_ConfigureIdempotent(t *testing.T) {
	o := NewOscillator()
	o.Configure()
	icn, xcn := o.oscicn, o.oscxcn

	for i := 0; i < 3; i++ {
		o.Configure()
	}

	if o.oscicn != icn || o.oscxcn != xcn {
		t.Fatalf("registers changed: OSCICN 0x%02X->0x%02X, OSCXCN 0x%02X->0x%02X", icn, o.oscicn, xcn, o.oscxcn)
	}
}

func TestOscillator_ExternalTurnedOff(t *testing.T) {
	o := NewOscillator()
	o.oscxcn = 0x67 // crystal oscillator mode

	if !o.ExternalEnabled() {
		t.Fatal("external oscillator must report enabled")
	}

	o.Configure()
	if o.ExternalEnabled() {
		t.Fatal("external oscillator still enabled")
	}
}

package mcu

import (
	"errors"
	"testing"

	"segcount/pkg/port"
	"segcount/pkg/raspberry"
)

func TestPort_SetBeforeConfigure(t *testing.T) {
	e := raspberry.NewEmuLines()
	p := NewPort(e)

	if err := p.Set(0, port.High); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("got %v, want ErrNotConfigured", err)
	}
	if e.Writes(0) != 0 {
		t.Fatal("unconfigured port wrote a line")
	}
}

func TestPort_ConfigureDrivesLow(t *testing.T) {
	e := raspberry.NewEmuLines()
	p := NewPort(e)

	if err := p.Configure(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for line := 0; line < port.Lines; line++ {
		if e.Writes(line) != 1 || e.Level(line) != port.Low {
			t.Errorf("line %v: %v writes, level %v", line, e.Writes(line), e.Level(line))
		}
	}
	if p.Latch() != 0 {
		t.Fatalf("latch 0x%02X, want 0", p.Latch())
	}
}

func TestPort_ConfigureIdempotent(t *testing.T) {
	e := raspberry.NewEmuLines()
	p := NewPort(e)

	for i := 0; i < 3; i++ {
		if err := p.Configure(); err != nil {
			t.Fatalf("configure %v: %v", i, err)
		}
	}

	if p.Latch() != 0 || p.xbr2 != xbr2Xbare || p.prt0cf != prt0cfPushPull {
		t.Fatalf("state after repeated configure: P0=0x%02X XBR2=0x%02X PRT0CF=0x%02X", p.Latch(), p.xbr2, p.prt0cf)
	}
	for line := 0; line < port.Lines; line++ {
		if e.Level(line) != port.Low {
			t.Errorf("line %v is high", line)
		}
	}
}

func TestPort_ConfigureResetsOutputs(t *testing.T) {
	e := raspberry.NewEmuLines()
	p := NewPort(e)
	_ = p.Configure()
	_ = p.Set(3, port.High)

	if err := p.Configure(); err != nil {
		t.Fatal(err)
	}
	if e.Level(3) != port.Low || p.Level(3) != port.Low {
		t.Fatal("configure must drive all lines low")
	}
}

func TestPort_Set(t *testing.T) {
	e := raspberry.NewEmuLines()
	p := NewPort(e)
	_ = p.Configure()

	if err := p.Set(5, port.High); err != nil {
		t.Fatal(err)
	}
	if p.Latch() != 1<<5 || e.Level(5) != port.High {
		t.Fatalf("latch 0x%02X, line level %v", p.Latch(), e.Level(5))
	}

	if err := p.Set(5, port.Low); err != nil {
		t.Fatal(err)
	}
	if p.Latch() != 0 || e.Level(5) != port.Low {
		t.Fatalf("latch 0x%02X, line level %v", p.Latch(), e.Level(5))
	}
}

func TestPort_InvalidLine(t *testing.T) {
	p := NewPort(raspberry.NewEmuLines())
	_ = p.Configure()

	for _, line := range []int{-1, 8, 100} {
		if err := p.Set(line, port.High); !errors.Is(err, ErrInvalidLine) {
			t.Errorf("line %v: got %v, want ErrInvalidLine", line, err)
		}
	}
}

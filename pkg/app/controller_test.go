package app

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"segcount/pkg/bcd"
	"segcount/pkg/mcu"
	"segcount/pkg/raspberry"

	"github.com/womat/debug"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

// instantTimer overflows on every poll.
type instantTimer struct {
	sysclk        uint32
	running       bool
	starts, stops int
}

func (f *instantTimer) Init(sysclk uint32) { f.sysclk = sysclk }
func (f *instantTimer) Start()             { f.running = true; f.starts++ }
func (f *instantTimer) Stop()              { f.running = false; f.stops++ }
func (f *instantTimer) Overflowed() bool   { return true }
func (f *instantTimer) ClearOverflow()     {}

type fakeWatchdog struct {
	enabled  bool
	disables int
}

func (w *fakeWatchdog) Enabled() bool { return w.enabled }
func (w *fakeWatchdog) Disable() error {
	w.enabled = false
	w.disables++
	return nil
}

type testBoard struct {
	c     *Controller
	lines *raspberry.EmuLines
	wd    *fakeWatchdog
	timer *instantTimer
}

func newTestBoard() *testBoard {
	b := &testBoard{
		lines: raspberry.NewEmuLines(),
		wd:    &fakeWatchdog{enabled: true},
		timer: &instantTimer{},
	}
	b.c = NewController(b.wd, mcu.NewOscillator(), mcu.NewPort(b.lines), b.timer, time.Second)
	return b
}

// bus reads the pattern of bus (1 or 2) back from the emulated lines.
func (b *testBoard) bus(n int) string {
	var p bcd.Pattern
	for i := 0; i < 4; i++ {
		p[i] = b.lines.Level((n-1)*4 + i)
	}
	return p.String()
}

func TestController_StepBeforeInit(t *testing.T) {
	b := newTestBoard()
	if err := b.c.Step(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("got %v, want ErrNotInitialized", err)
	}
}

func TestController_Init(t *testing.T) {
	b := newTestBoard()
	if err := b.c.Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.wd.enabled || b.wd.disables != 1 {
		t.Fatalf("watchdog enabled=%v disables=%v", b.wd.enabled, b.wd.disables)
	}
	if b.timer.sysclk != 16000000 {
		t.Fatalf("timer initialized with %v Hz, want 16 MHz", b.timer.sysclk)
	}
	if b.bus(1) != "0000" || b.bus(2) != "0000" {
		t.Fatalf("buses %v %v after init, want all low", b.bus(1), b.bus(2))
	}
}

func TestController_InitWatchdogAlreadyOff(t *testing.T) {
	b := newTestBoard()
	b.wd.enabled = false

	if err := b.c.Init(); err != nil {
		t.Fatal(err)
	}
	if b.wd.disables != 0 {
		t.Fatal("disabled watchdog must not be disabled again")
	}
}

func TestController_EndToEnd(t *testing.T) {
	b := newTestBoard()
	if err := b.c.Init(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		steps      int
		bus1, bus2 string
	}{
		{1, "1000", "0000"},
		{10, "0000", "1000"},
		{99, "1001", "1001"},
		{100, "0000", "0000"},
	}

	done := 0
	for _, tt := range tests {
		for ; done < tt.steps; done++ {
			if err := b.c.Step(); err != nil {
				t.Fatalf("step %v: %v", done, err)
			}
		}

		if b.bus(1) != tt.bus1 || b.bus(2) != tt.bus2 {
			t.Errorf("after %v steps: bus1=%v bus2=%v, want %v %v", tt.steps, b.bus(1), b.bus(2), tt.bus1, tt.bus2)
		}
	}

	if b.c.Counter() != 0 {
		t.Fatalf("counter %v after 100 steps, want 0", b.c.Counter())
	}
}

func TestController_CounterProperty(t *testing.T) {
	b := newTestBoard()
	var last Snapshot
	b.c.publish = func(s Snapshot) { last = s }

	if err := b.c.Init(); err != nil {
		t.Fatal(err)
	}

	for k := 1; k <= 250; k++ {
		if err := b.c.Step(); err != nil {
			t.Fatal(err)
		}

		v := k % 100
		if last.Counter != v || last.Digits[0] != v%10 || last.Digits[1] != v/10 {
			t.Fatalf("after %v steps: %+v, want %v", k, last, v)
		}
		if b.bus(1) != bcd.Encode(v%10).String() || b.bus(2) != bcd.Encode(v/10).String() {
			t.Fatalf("after %v steps: buses %v %v", k, b.bus(1), b.bus(2))
		}
		if last.Buses[0] != b.bus(1) || last.Buses[1] != b.bus(2) {
			t.Fatalf("snapshot %v differs from lines %v %v", last.Buses, b.bus(1), b.bus(2))
		}
	}
}

func TestController_StepDelays(t *testing.T) {
	b := newTestBoard()
	_ = b.c.Init()

	for i := 0; i < 3; i++ {
		_ = b.c.Step()
	}

	if b.timer.starts != 3 || b.timer.stops != 3 || b.timer.running {
		t.Fatalf("timer starts=%v stops=%v running=%v", b.timer.starts, b.timer.stops, b.timer.running)
	}
}

func TestController_Run(t *testing.T) {
	b := newTestBoard()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var shown []int
	b.c.publish = func(s Snapshot) {
		shown = append(shown, s.Counter)
		if s.Counter == 3 {
			cancel()
		}
	}

	if err := b.c.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{0, 1, 2, 3}
	if len(shown) != len(want) {
		t.Fatalf("shown %v, want %v", shown, want)
	}
	for i := range want {
		if shown[i] != want[i] {
			t.Fatalf("shown %v, want %v", shown, want)
		}
	}
	if b.bus(1) != "1100" || b.bus(2) != "0000" {
		t.Fatalf("buses %v %v, want 03", b.bus(1), b.bus(2))
	}
}

func TestController_RunInitError(t *testing.T) {
	b := newTestBoard()
	_ = b.lines.Close()

	if err := b.c.Run(context.Background()); err == nil {
		t.Fatal("expected error from released lines")
	}
}

package mcu

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/womat/debug"
)

const (
	// ckconT2m selects the timer 2 time base: 0 is SYSCLK/12, 1 is SYSCLK.
	ckconT2m = 1 << 5
	// prescaler is the SYSCLK divider with T2M=0.
	prescaler = 12
	// tickRate is the overflow rate of the millisecond timer in Hz.
	tickRate = 1000
	// powerOnSysClk is the system clock before the oscillator is configured.
	powerOnSysClk = 2000000
)

// Timer2 models timer 2 in 16 bit auto-reload mode.
// While the timer runs, a goroutine plays the role of the counter and sets
// the overflow flag (TF2) every time the counter would overflow.
// TF2 is never cleared by the timer, the consumer has to clear it.
type Timer2 struct {
	sync.Mutex
	ckcon  byte
	et2    bool
	rcap2  uint16
	sysclk uint32
	tr2    bool
	tf2    atomic.Bool

	// quit stops the counter goroutine
	quit chan struct{}
	// done signals that the counter goroutine is stopped
	done chan struct{}
}

// NewTimer2 returns timer 2 in its power-on state: stopped, reload value 0.
func NewTimer2() *Timer2 {
	return &Timer2{sysclk: powerOnSysClk}
}

// Init configures the timer to overflow at 1 kHz with the given system clock.
// The timer 2 interrupt stays disabled, overflows are polled with Overflowed.
func (t *Timer2) Init(sysclk uint32) {
	t.Lock()
	defer t.Unlock()

	t.et2 = false
	t.ckcon &^= ckconT2m
	t.sysclk = sysclk

	ticks := sysclk / prescaler / tickRate
	if ticks == 0 {
		ticks = 1
	}
	t.rcap2 = uint16(-int32(ticks))

	debug.DebugLog.Printf("timer 2 reload 0x%04X, period %v", t.rcap2, t.period())
}

// Reload returns the reload value (RCAP2).
func (t *Timer2) Reload() uint16 {
	t.Lock()
	defer t.Unlock()
	return t.rcap2
}

// Period returns the time between two overflows.
func (t *Timer2) Period() time.Duration {
	t.Lock()
	defer t.Unlock()
	return t.period()
}

func (t *Timer2) period() time.Duration {
	counts := uint64(0x10000 - uint32(t.rcap2))
	div := uint64(prescaler)
	if t.ckcon&ckconT2m != 0 {
		div = 1
	}
	return time.Duration(counts * div * uint64(time.Second) / uint64(t.sysclk))
}

// Start runs the timer (TR2=1).
func (t *Timer2) Start() {
	t.Lock()
	defer t.Unlock()

	if t.tr2 {
		return
	}

	t.tr2 = true
	t.quit = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.period(), t.quit, t.done)
}

// Stop halts the timer (TR2=0) and waits until the counter goroutine is stopped.
// The overflow flag keeps its value.
func (t *Timer2) Stop() {
	t.Lock()
	if !t.tr2 {
		t.Unlock()
		return
	}

	t.tr2 = false
	close(t.quit)
	done := t.done
	t.Unlock()

	<-done
}

// InterruptEnabled reports the timer 2 interrupt enable (ET2).
func (t *Timer2) InterruptEnabled() bool {
	t.Lock()
	defer t.Unlock()
	return t.et2
}

// Running reports whether the timer runs (TR2).
func (t *Timer2) Running() bool {
	t.Lock()
	defer t.Unlock()
	return t.tr2
}

// Overflowed reports the overflow flag (TF2).
func (t *Timer2) Overflowed() bool {
	return t.tf2.Load()
}

// ClearOverflow clears the overflow flag (TF2).
func (t *Timer2) ClearOverflow() {
	t.tf2.Store(false)
}

// run sets the overflow flag every period until quit is closed.
func (t *Timer2) run(period time.Duration, quit, done chan struct{}) {
	defer close(done)

	tick := time.NewTicker(period)
	defer tick.Stop()

	for {
		select {
		case <-quit:
			return
		case <-tick.C:
			t.tf2.Store(true)
		}
	}
}

package app

import (
	"context"
	"errors"
	"time"

	"segcount/pkg/bcd"
	"segcount/pkg/delay"
	"segcount/pkg/port"

	"github.com/womat/debug"
)

// Digits is the number of display digits, one bus per digit.
// The counter runs from 0 to 10^Digits-1.
const Digits = 2

var ErrNotInitialized = errors.New("controller is not initialized")

const (
	// stateInit is the state until the peripherals are configured.
	stateInit stateType = iota
	// stateRunning is the state of the endless counting loop.
	stateRunning
)

// stateType represents the state of the control loop.
type stateType int

// Watchdog is the watchdog timer, which is enabled at power on.
type Watchdog interface {
	Enabled() bool
	Disable() error
}

// Clock selects the system clock source.
type Clock interface {
	Configure()
	SysClk() uint32
}

// Outputs is the port driving the display buses.
type Outputs interface {
	Configure() error
	Set(line int, l port.Level) error
}

// MsTimer is the millisecond overflow timer.
type MsTimer interface {
	Init(sysclk uint32)
	delay.Timer
}

// Snapshot is the state shown on the display.
type Snapshot struct {
	Time    time.Time `json:"time"`
	Counter int       `json:"counter"`
	// Digits holds the decimal digits, ones first.
	Digits []int `json:"digits"`
	// Buses holds the pattern (A,B,C,D) written to bus 1, bus 2, ...
	Buses []string `json:"buses"`
}

// Controller counts and shows the counter on the display buses.
// The counter is owned by the controller, pins are only written through the decoder.
type Controller struct {
	watchdog Watchdog
	clock    Clock
	outputs  Outputs
	timer    MsTimer
	decoder  *bcd.Decoder
	delay    *delay.Service

	// interval is the delay between two updates in ms.
	interval uint
	state    stateType
	counter  int
	modulus  int

	// publish is called with the shown state after every display update.
	publish func(Snapshot)
}

// NewController wires the peripherals to a new controller in state init.
func NewController(w Watchdog, c Clock, o Outputs, t MsTimer, interval time.Duration) *Controller {
	modulus := 1
	for i := 0; i < Digits; i++ {
		modulus *= 10
	}

	return &Controller{
		watchdog: w,
		clock:    c,
		outputs:  o,
		timer:    t,
		decoder:  bcd.New(o),
		delay:    delay.New(t),
		interval: uint(interval / time.Millisecond),
		state:    stateInit,
		modulus:  modulus,
		publish:  func(Snapshot) {},
	}
}

// Init disables the watchdog and configures oscillator, port and timer.
// The watchdog is not re-armed afterwards, a hang after Init is only ended by a reset.
func (c *Controller) Init() error {
	if c.watchdog.Enabled() {
		if err := c.watchdog.Disable(); err != nil {
			return err
		}
		debug.InfoLog.Print("watchdog disabled")
	} else {
		debug.InfoLog.Print("watchdog was already disabled")
	}

	c.clock.Configure()
	if err := c.outputs.Configure(); err != nil {
		return err
	}
	c.timer.Init(c.clock.SysClk())

	debug.InfoLog.Printf("system clock %v Hz, update interval %v ms", c.clock.SysClk(), c.interval)

	c.counter = 0
	c.state = stateRunning
	return nil
}

// Step runs one iteration of the counting loop:
// it waits one interval, increments the counter and shows it.
// Init shows 0 on all buses (all lines low), so the display changes once per interval.
func (c *Controller) Step() error {
	if c.state != stateRunning {
		return ErrNotInitialized
	}

	c.delay.Ms(c.interval)

	if c.counter++; c.counter >= c.modulus {
		c.counter = 0
	}

	return c.show()
}

// Run initializes the peripherals and runs the counting loop until ctx is done.
// ctx is only checked between two iterations.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Init(); err != nil {
		return err
	}

	if err := c.show(); err != nil {
		debug.ErrorLog.Printf("can't show counter %v: %v", c.counter, err)
	}

	for {
		select {
		case <-ctx.Done():
			debug.InfoLog.Printf("counter stopped at %v", c.counter)
			return nil
		default:
		}

		if err := c.Step(); err != nil {
			debug.ErrorLog.Printf("can't show counter %v: %v", c.counter, err)
		}
	}
}

// Counter returns the current counter value.
func (c *Controller) Counter() int {
	return c.counter
}

// show writes the digits of the counter to the buses, ones to bus 1, tens to bus 2, ...
func (c *Controller) show() error {
	s := Snapshot{
		Time:    time.Now(),
		Counter: c.counter,
		Digits:  make([]int, Digits),
		Buses:   make([]string, Digits),
	}

	v := c.counter
	for i := 0; i < Digits; i++ {
		d := v % 10
		v /= 10

		if err := c.decoder.Display(d, bcd.Bus(i+1)); err != nil {
			return err
		}

		s.Digits[i] = d
		s.Buses[i] = bcd.Encode(d).String()
	}

	debug.TraceLog.Printf("display %0*d %v", Digits, c.counter, s.Buses)
	c.publish(s)
	return nil
}

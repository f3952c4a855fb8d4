// Package delay implements a blocking millisecond delay on a polled overflow timer.
package delay

import "runtime"

// Timer is an auto-reload timer that overflows once per millisecond.
// The overflow flag is set by the timer and cleared by the consumer.
type Timer interface {
	Start()
	Stop()
	Overflowed() bool
	ClearOverflow()
}

// Service waits for timer overflows.
// It must be the only consumer of the timer's overflow flag.
type Service struct {
	timer Timer
}

// New returns a delay service on timer t.
func New(t Timer) *Service {
	return &Service{timer: t}
}

// Ms blocks for ms milliseconds.
// It starts the timer, waits for ms overflows and stops the timer again.
// The first overflow may come early by up to one period, because the timer
// is not reset when the flag is cleared.
func (s *Service) Ms(ms uint) {
	s.timer.Start()
	for ms > 0 {
		s.timer.ClearOverflow()
		for !s.timer.Overflowed() {
			runtime.Gosched()
		}
		ms--
	}
	s.timer.Stop()
}

// Package clock abstracts time so that hold expiry and sweeping can be
// tested deterministically.  All timestamps in the system are UTC.
package clock

import "time"

// Clock supplies the current instant to the engine.
type Clock interface {
    Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fixed is a clock that returns a settable instant.  Tests advance it
// manually to cross hold deadlines without sleeping.
type Fixed struct {
    now time.Time
}

// NewFixed returns a Fixed clock starting at t.
func NewFixed(t time.Time) *Fixed { return &Fixed{now: t.UTC()} }

func (f *Fixed) Now() time.Time { return f.now }

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.now = f.now.Add(d) }

// Set pins the clock to t.
func (f *Fixed) Set(t time.Time) { f.now = t.UTC() }

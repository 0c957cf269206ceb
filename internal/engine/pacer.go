package engine

import (
	"context"
	"sync"
	"time"
)

// Pacer decides how long the driver waits between two steps. Wait must
// return promptly with the context's error once ctx is done.
type Pacer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// TimerPacer sleeps for the requested delay.
type TimerPacer struct{}

func (TimerPacer) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// InstantPacer never waits. Used for headless runs and tests.
type InstantPacer struct{}

func (InstantPacer) Wait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Chain waits on each pacer in order.
func Chain(pacers ...Pacer) Pacer {
	return chain(pacers)
}

type chain []Pacer

func (c chain) Wait(ctx context.Context, d time.Duration) error {
	for _, p := range c {
		if err := p.Wait(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Gate holds the driver at a step boundary while closed. Release lets a
// fixed number of waits through without opening the gate, which is how a
// paused run is advanced one step at a time.
type Gate struct {
	mu      sync.Mutex
	closed  bool
	credits int
	signal  chan struct{}
}

func NewGate(closed bool) *Gate {
	return &Gate{closed: closed, signal: make(chan struct{})}
}

// NewManualPacer returns a closed gate: every step after the first needs an
// explicit Release.
func NewManualPacer() *Gate {
	return NewGate(true)
}

func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = false
	g.credits = 0
	g.broadcast()
}

// Release lets n more waits pass while the gate stays closed.
func (g *Gate) Release(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.credits += n
	g.broadcast()
}

// Advance releases exactly one step.
func (g *Gate) Advance() { g.Release(1) }

func (g *Gate) IsClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

func (g *Gate) broadcast() {
	close(g.signal)
	g.signal = make(chan struct{})
}

func (g *Gate) Wait(ctx context.Context, _ time.Duration) error {
	for {
		g.mu.Lock()
		if !g.closed {
			g.mu.Unlock()
			return ctx.Err()
		}
		if g.credits > 0 {
			g.credits--
			g.mu.Unlock()
			return ctx.Err()
		}
		signal := g.signal
		g.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signal:
		}
	}
}

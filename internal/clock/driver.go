package clock

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Driver calls a set of registered tick functions at a fixed cadence, using
// an injectable wall clock (github.com/benbjohnson/clock) so tests can
// advance time deterministically instead of sleeping real wall time.
//
// The exact cadence is left to the driver, recommending 1 Hz by default;
// Driver is that driver, shared by every component that needs its tick()
// called regularly (channel producers and consumers).
type Driver struct {
	clock    clock.Clock
	interval time.Duration
	ticker   *clock.Ticker

	mu   sync.Mutex
	subs []func()

	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewDriver builds a Driver that fires every interval, using wallClock as
// the time source. Pass clock.New() in production and clock.NewMock() in
// tests. The ticker is created here, so time advanced on a mock clock
// before Start's goroutine is scheduled still produces ticks.
func NewDriver(wallClock clock.Clock, interval time.Duration) *Driver {
	return &Driver{
		clock:    wallClock,
		interval: interval,
		ticker:   wallClock.Ticker(interval),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Subscribe registers fn to be called on every tick. fn must not block.
func (d *Driver) Subscribe(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, fn)
}

// Start runs the tick loop until Stop is called. It must be run in its own
// goroutine.
func (d *Driver) Start() {
	ticker := d.ticker
	defer ticker.Stop()
	defer close(d.done)

	for {
		select {
		case <-ticker.C:
			d.fireAll()
		case <-d.stop:
			return
		}
	}
}

// Stop halts the tick loop and waits for Start's goroutine to return.
func (d *Driver) Stop() {
	d.once.Do(func() { close(d.stop) })
	<-d.done
}

func (d *Driver) fireAll() {
	d.mu.Lock()
	subs := make([]func(), len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

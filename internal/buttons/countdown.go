package buttons

import (
	"context"
	"sync"
	"time"
)

// Countdowns holds one countdown per modifier, shared between the poller
// and the tick service. Every access takes the lock, one value at a time.
type Countdowns struct {
	mu     sync.Mutex
	values [numModifiers]int
}

// NewCountdowns returns a table with every countdown at zero.
func NewCountdowns() *Countdowns {
	return &Countdowns{}
}

// Load returns the current countdown for m.
func (c *Countdowns) Load(m Modifier) int {
	c.mu.Lock()
	v := c.values[m]
	c.mu.Unlock()
	return v
}

// Store sets the countdown for m.
func (c *Countdowns) Store(m Modifier, v int) {
	c.mu.Lock()
	c.values[m] = v
	c.mu.Unlock()
}

// Tick decrements every non-zero countdown by one. Zero is sticky.
func (c *Countdowns) Tick() {
	for m := range c.values {
		c.mu.Lock()
		if c.values[m] > 0 {
			c.values[m]--
		}
		c.mu.Unlock()
	}
}

// Advance calls Tick n times.
func (c *Countdowns) Advance(n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

// Reset zeroes every countdown.
func (c *Countdowns) Reset() {
	c.mu.Lock()
	c.values = [numModifiers]int{}
	c.mu.Unlock()
}

// Run decrements the table on every value received from tick until ctx
// is cancelled or tick is closed.
func (c *Countdowns) Run(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-tick:
			if !ok {
				return
			}
			c.Tick()
		}
	}
}

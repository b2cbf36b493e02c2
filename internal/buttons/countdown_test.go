package buttons

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdownTickStopsAtZero(t *testing.T) {
	c := NewCountdowns()
	c.Store(ModSK1, 2)
	c.Store(ModSK2, 5)

	c.Advance(3)
	assert.Equal(t, 0, c.Load(ModSK1))
	assert.Equal(t, 2, c.Load(ModSK2))
	assert.Equal(t, 0, c.Load(ModOrange))
}

func TestCountdownReset(t *testing.T) {
	c := NewCountdowns()
	c.Store(ModOrange, 7)
	c.Reset()
	assert.Equal(t, 0, c.Load(ModOrange))
}

func TestCountdownRun(t *testing.T) {
	c := NewCountdowns()
	c.Store(ModSK1, 10)

	tick := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, tick)
		close(done)
	}()

	for i := 0; i < 4; i++ {
		tick <- time.Time{}
	}
	cancel()
	<-done

	assert.Equal(t, 6, c.Load(ModSK1))
}

func TestCountdownRunStopsOnClosedTick(t *testing.T) {
	c := NewCountdowns()
	tick := make(chan time.Time)
	close(tick)

	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), tick)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after tick channel closed")
	}
}

func TestCountdownConcurrentAccess(t *testing.T) {
	c := NewCountdowns()
	c.Store(ModSK2, 1000)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c.Tick()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = c.Load(ModSK2)
		}
	}()
	wg.Wait()

	assert.Equal(t, 500, c.Load(ModSK2))
}

func TestClassifierWithConcurrentTicker(t *testing.T) {
	timers := NewCountdowns()
	raw := SK1
	var mu sync.Mutex
	sampler := SamplerFunc(func() (Mask, error) {
		mu.Lock()
		defer mu.Unlock()
		return raw, nil
	})
	c := NewClassifier(sampler, timers, Config{LongThreshold: 20})

	tick := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go timers.Run(ctx, tick)

	_, _, err := c.Classify(false)
	assert.NoError(t, err)
	for i := 0; i < 20; i++ {
		tick <- time.Time{}
	}
	// The ticker goroutine may still be applying the last decrement.
	assert.Eventually(t, func() bool { return timers.Load(ModSK1) == 0 }, time.Second, time.Millisecond)

	m, e, err := c.Classify(false)
	assert.NoError(t, err)
	assert.Equal(t, SK1|SK1LongDown, m)
	assert.Equal(t, EventChange, e)
}

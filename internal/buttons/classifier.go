package buttons

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Sampler returns the set of raw keys currently asserted. Implementations
// perform any settling delay themselves and keep no history.
type Sampler interface {
	Sample() (Mask, error)
}

// SamplerFunc adapts a plain function to the Sampler interface.
type SamplerFunc func() (Mask, error)

// Sample calls f.
func (f SamplerFunc) Sample() (Mask, error) { return f() }

// Config describes the classifier's fixed parameters.
type Config struct {
	// LongThreshold is the hold time, in countdown ticks, before a press
	// becomes a long press. Extra-long fires 1.5x this value later.
	LongThreshold int
	// Modifiers lists the modifier keys present on the hardware. Nil means
	// all of them. Classification always runs in Orange, SK1, SK2 order.
	Modifiers []Modifier
}

// Report is a classified mask ready to be published.
type Report struct {
	Timestamp time.Time
	Mask      Mask
	Event     Event
	PTTLocked bool
}

// Classifier turns raw samples into classified masks and change events.
// Classify must be called from a single goroutine; the countdown table may
// be ticked concurrently.
type Classifier struct {
	sampler       Sampler
	timers        *Countdowns
	longThreshold int
	modifiers     []Modifier
	keys          Mask

	phases       [numModifiers]Phase
	prev         Mask
	waitNewState bool
	counts       EventCounts

	pttLocked atomic.Bool
}

// NewClassifier creates a classifier in its initial state.
func NewClassifier(sampler Sampler, timers *Countdowns, cfg Config) *Classifier {
	present := make([]Modifier, 0, numModifiers)
	for _, m := range AllModifiers {
		if cfg.Modifiers == nil || containsModifier(cfg.Modifiers, m) {
			present = append(present, m)
		}
	}

	keys := PTT
	for _, m := range present {
		keys |= m.Key()
	}

	// A non-positive threshold means long on the first held poll.
	threshold := cfg.LongThreshold
	if threshold < 0 {
		threshold = 0
	}

	c := &Classifier{
		sampler:       sampler,
		timers:        timers,
		longThreshold: threshold,
		modifiers:     present,
		keys:          keys,
	}
	c.Init()
	return c
}

func containsModifier(list []Modifier, m Modifier) bool {
	for _, x := range list {
		if x == m {
			return true
		}
	}
	return false
}

// Init resets every modifier to Released with a zero countdown, clears the
// combination wait and forgets the previous mask.
func (c *Classifier) Init() {
	c.phases = [numModifiers]Phase{}
	c.prev = None
	c.waitNewState = false
	c.counts = EventCounts{}
	for _, m := range c.modifiers {
		c.timers.Store(m, 0)
	}
}

// Classify samples the buttons and returns the classified mask together
// with EventChange when it differs from the previously reported one.
// keyIsDown reports that some other key (e.g. the keypad) is held, which
// turns the modifiers into plain modifiers until the raw mask changes.
func (c *Classifier) Classify(keyIsDown bool) (Mask, Event, error) {
	raw, err := c.sampler.Sample()
	if err != nil {
		return None, EventNone, fmt.Errorf("sample buttons: %w", err)
	}
	raw &= c.keys

	for _, m := range c.modifiers {
		if raw&m.Key() != 0 && c.phases[m] == Released {
			c.setStateAndClearLong(raw, m)
		}
	}

	if raw != None || c.waitNewState {
		if keyIsDown {
			c.waitNewState = true
			c.resync(raw)
			c.prev = raw
			return raw, EventNone, nil
		}
		if c.waitNewState {
			if raw != c.prev {
				c.waitNewState = false
				c.resync(raw)
				c.prev = raw
				c.counts.Changes++
				return raw, EventChange, nil
			}
			return raw, EventNone, nil
		}
	}

	out := raw
	for _, m := range c.modifiers {
		out = c.track(out, m)
	}

	if out == c.prev {
		return out, EventNone, nil
	}
	c.prev = out
	c.counts.Changes++
	return out, EventChange, nil
}

// setStateAndClearLong records whether m is held, arms or clears its
// countdown, and drops any long/extra-long progress.
func (c *Classifier) setStateAndClearLong(raw Mask, m Modifier) {
	if raw&m.Key() != 0 {
		c.phases[m] = PressedShort
		c.timers.Store(m, c.longThreshold)
		return
	}
	c.phases[m] = Released
	c.timers.Store(m, 0)
}

func (c *Classifier) resync(raw Mask) {
	for _, m := range c.modifiers {
		c.setStateAndClearLong(raw, m)
	}
}

// track advances the phase of one modifier and annotates out.
func (c *Classifier) track(out Mask, m Modifier) Mask {
	held := out&m.Key() != 0
	remaining := c.timers.Load(m)

	switch phase := c.phases[m]; {
	case held && phase == PressedLong:
		out |= m.LongDown()
		if remaining == 0 {
			c.phases[m] = PressedExtraLong
			c.counts.Modifiers[m].ExtraLong++
			out = out&^m.LongDown() | m.ExtraLongDown()
		}

	case held && phase == PressedExtraLong:
		// Long stays visible until overwritten by extra-long.
		out |= m.LongDown()
		out = out&^m.LongDown() | m.ExtraLongDown()

	case held && phase == PressedShort:
		if remaining == 0 {
			c.phases[m] = PressedLong
			c.counts.Modifiers[m].Long++
			out |= m.LongDown()
			c.timers.Store(m, c.extraLongThreshold())
		}

	case !held && phase == PressedShort && remaining != 0:
		c.release(m)
		c.counts.Modifiers[m].Short++
		out |= m.ShortUp()
		out &^= m.LongDown() | m.ExtraLongDown()

	case !held && phase == PressedShort:
		// Released on the poll the threshold expired: too long for a
		// short press, never reported as long.
		c.release(m)

	case !held && (phase == PressedLong || phase == PressedExtraLong):
		c.release(m)
		out &^= m.LongDown() | m.ExtraLongDown()
	}

	return out
}

func (c *Classifier) release(m Modifier) {
	c.phases[m] = Released
	c.timers.Store(m, 0)
}

func (c *Classifier) extraLongThreshold() int {
	return (c.longThreshold * 3) / 2
}

// Phase returns the current phase of m.
func (c *Classifier) Phase(m Modifier) Phase {
	return c.phases[m]
}

// Modifiers returns the modifiers this classifier tracks.
func (c *Classifier) Modifiers() []Modifier {
	out := make([]Modifier, len(c.modifiers))
	copy(out, c.modifiers)
	return out
}

// Countdown returns the current countdown of m.
func (c *Classifier) Countdown(m Modifier) int {
	return c.timers.Load(m)
}

// WaitingNewState reports whether a key combination is being held and
// change events are suppressed.
func (c *Classifier) WaitingNewState() bool {
	return c.waitNewState
}

// Previous returns the last reported mask.
func (c *Classifier) Previous() Mask {
	return c.prev
}

// Counts returns a copy of the event counters.
func (c *Classifier) Counts() EventCounts {
	return c.counts
}

// SetPTTLocked sets the PTT lock flag. Safe for concurrent use.
func (c *Classifier) SetPTTLocked(locked bool) {
	c.pttLocked.Store(locked)
}

// PTTLocked reports the PTT lock flag. Safe for concurrent use.
func (c *Classifier) PTTLocked() bool {
	return c.pttLocked.Load()
}

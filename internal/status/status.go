// Package status provides a thread-safe status tracker for the button daemon.
// It is read by HTTP handlers, the websocket stream and lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/radio-buttons/internal/buttons"
)

// Config contains daemon configuration for display.
type Config struct {
	Platform      string
	Backend       string
	PollMs        int64
	TickMs        int64
	LongThreshold int // ticks
	HeartbeatMs   int64
	Broker        string
	HTTPAddr      string
}

// ModifierStatus is the state of one modifier key.
type ModifierStatus struct {
	Modifier  buttons.Modifier
	Phase     buttons.Phase
	Countdown int
}

// State is the classifier-derived part of a snapshot.
type State struct {
	Mask            buttons.Mask
	Modifiers       []ModifierStatus
	WaitingNewState bool
	PTTLocked       bool
	Counts          buttons.EventCounts
}

// StateOf captures the classifier's current state alongside the last
// classified mask. Must be called from the polling goroutine.
func StateOf(c *buttons.Classifier, mask buttons.Mask) State {
	st := State{
		Mask:            mask,
		WaitingNewState: c.WaitingNewState(),
		PTTLocked:       c.PTTLocked(),
		Counts:          c.Counts(),
	}
	for _, m := range c.Modifiers() {
		st.Modifiers = append(st.Modifiers, ModifierStatus{
			Modifier:  m,
			Phase:     c.Phase(m),
			Countdown: c.Countdown(m),
		})
	}
	return st
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	State
	Ready         bool
	Version       uint64
	LastChange    time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu            sync.RWMutex
	snap          Snapshot
	lastHeartbeat time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		lastHeartbeat: startTime,
	}
}

// Update stores the latest classifier state. The version is bumped and
// LastChange set only when the classified mask changed.
func (t *Tracker) Update(st State, changed bool, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.State = st
	if changed || !t.snap.Ready {
		t.snap.Version++
	}
	if changed {
		t.snap.LastChange = now
	}
	t.snap.Ready = true
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Version returns the current state version without copying the snapshot.
func (t *Tracker) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Version
}

// HeartbeatDue reports whether interval has elapsed since the last
// heartbeat (or startup) and, if so, records now as the last heartbeat.
// Returns false if interval <= 0 (disabled) or nothing has been classified yet.
func (t *Tracker) HeartbeatDue(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.snap.Ready || now.Sub(t.lastHeartbeat) < interval {
		return false
	}
	t.lastHeartbeat = now
	return true
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Modifiers = append([]ModifierStatus(nil), t.snap.Modifiers...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

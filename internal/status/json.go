package status

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string         `json:"event,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	Mask            string         `json:"mask"`
	Buttons         []string       `json:"buttons"`
	Modifiers       []ModifierJSON `json:"modifiers"`
	WaitingNewState bool           `json:"waiting_new_state"`
	PTTLocked       bool           `json:"ptt_locked"`
	Ready           bool           `json:"ready"`
	Version         uint64         `json:"version"`
	LastChange      string         `json:"last_change,omitempty"`
	UptimeSeconds   int64          `json:"uptime_seconds"`
	StartTime       string         `json:"start_time"`
	Timestamp       string         `json:"timestamp"`
	MQTT            MQTTStatus     `json:"mqtt"`
	Counts          CountsJSON     `json:"event_counts"`
	Config          ConfigJSON     `json:"config"`
}

// ModifierJSON is the JSON representation of one modifier's state.
type ModifierJSON struct {
	Name      string `json:"name"`
	Phase     string `json:"phase"`
	Countdown int    `json:"countdown"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Changes   int                     `json:"changes"`
	Modifiers map[string]GestureCount `json:"modifiers"`
}

// GestureCount is the JSON representation of one modifier's gesture counts.
type GestureCount struct {
	Short     int `json:"short"`
	Long      int `json:"long"`
	ExtraLong int `json:"extra_long"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Platform      string `json:"platform"`
	Backend       string `json:"backend"`
	PollMs        int64  `json:"poll_ms"`
	TickMs        int64  `json:"tick_ms"`
	LongThreshold int    `json:"long_threshold_ticks"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	names := snap.Mask.Names()
	if names == nil {
		names = []string{}
	}

	inner := StatusInner{
		Mask:            fmt.Sprintf("0x%04x", uint32(snap.Mask)),
		Buttons:         names,
		Modifiers:       []ModifierJSON{},
		WaitingNewState: snap.WaitingNewState,
		PTTLocked:       snap.PTTLocked,
		Ready:           snap.Ready,
		Version:         snap.Version,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Changes:   snap.Counts.Changes,
			Modifiers: map[string]GestureCount{},
		},
		Config: ConfigJSON{
			Platform:      snap.Config.Platform,
			Backend:       snap.Config.Backend,
			PollMs:        snap.Config.PollMs,
			TickMs:        snap.Config.TickMs,
			LongThreshold: snap.Config.LongThreshold,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
		},
	}
	if !snap.LastChange.IsZero() {
		inner.LastChange = snap.LastChange.UTC().Format(time.RFC3339Nano)
	}

	for _, m := range snap.Modifiers {
		inner.Modifiers = append(inner.Modifiers, ModifierJSON{
			Name:      m.Modifier.String(),
			Phase:     m.Phase.String(),
			Countdown: m.Countdown,
		})
		c := snap.Counts.For(m.Modifier)
		inner.Counts.Modifiers[m.Modifier.String()] = GestureCount{
			Short:     c.Short,
			Long:      c.Long,
			ExtraLong: c.ExtraLong,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatCompact returns single-line JSON status, used by the live stream.
func FormatCompact(snap Snapshot) []byte {
	data, _ := json.Marshal(StatusJSON{Status: buildInner(snap)})
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

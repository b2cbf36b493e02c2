// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/radio-buttons/internal/buttons"
)

// Topic is the MQTT topic for button change events.
const Topic = "radio/buttons/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "radio/buttons/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a classified button report to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(report buttons.Report) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Buttons ButtonsPayload `json:"buttons"`
}

// ButtonsPayload contains one classified mask split by meaning.
type ButtonsPayload struct {
	Timestamp     string   `json:"timestamp"`
	Event         string   `json:"event"`
	Mask          string   `json:"mask"`
	Pressed       []string `json:"pressed"`
	ShortUp       []string `json:"short_up"`
	LongDown      []string `json:"long_down"`
	ExtraLongDown []string `json:"extra_long_down"`
	PTT           bool     `json:"ptt"`
	PTTLocked     bool     `json:"ptt_locked"`
}

func modifierNames(m buttons.Mask, bit func(buttons.Modifier) buttons.Mask) []string {
	out := []string{}
	for _, mod := range buttons.AllModifiers {
		if m&bit(mod) != 0 {
			out = append(out, mod.String())
		}
	}
	return out
}

// FormatPayload creates the JSON payload for a button report.
func FormatPayload(report buttons.Report) ([]byte, error) {
	m := report.Mask
	payload := Payload{
		Buttons: ButtonsPayload{
			Timestamp:     report.Timestamp.UTC().Format(time.RFC3339Nano),
			Event:         report.Event.String(),
			Mask:          fmt.Sprintf("0x%04x", uint32(m)),
			Pressed:       modifierNames(m, buttons.Modifier.Key),
			ShortUp:       modifierNames(m, buttons.Modifier.ShortUp),
			LongDown:      modifierNames(m, buttons.Modifier.LongDown),
			ExtraLongDown: modifierNames(m, buttons.Modifier.ExtraLongDown),
			PTT:           m.Has(buttons.PTT),
			PTTLocked:     report.PTTLocked,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/radio-buttons/internal/buttons"
)

func TestFormatPayload(t *testing.T) {
	report := buttons.Report{
		Timestamp: time.Date(2026, 3, 4, 10, 15, 30, 0, time.UTC),
		Mask:      buttons.SK1 | buttons.SK1LongDown | buttons.SK2ShortUp | buttons.PTT,
		Event:     buttons.EventChange,
	}

	payload, err := FormatPayload(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"buttons":{"timestamp":"2026-03-04T10:15:30Z","event":"CHANGE","mask":"0x00a9",` +
		`"pressed":["SK1"],"short_up":["SK2"],"long_down":["SK1"],"extra_long_down":[],"ptt":true,"ptt_locked":false}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadEmptyMask(t *testing.T) {
	payload, err := FormatPayload(buttons.Report{Event: buttons.EventChange, PTTLocked: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Buttons.Pressed == nil || len(parsed.Buttons.Pressed) != 0 {
		t.Errorf("pressed should be an empty list, got %v", parsed.Buttons.Pressed)
	}
	if parsed.Buttons.Mask != "0x0000" {
		t.Errorf("unexpected mask %s", parsed.Buttons.Mask)
	}
	if parsed.Buttons.PTT {
		t.Error("PTT should be false")
	}
	if !parsed.Buttons.PTTLocked {
		t.Error("PTT lock should be reported")
	}
}

func TestFormatPayloadExtraLongOrange(t *testing.T) {
	payload, _ := FormatPayload(buttons.Report{
		Mask:  buttons.Orange | buttons.OrangeExtraLongDown,
		Event: buttons.EventChange,
	})

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(parsed.Buttons.ExtraLongDown) != 1 || parsed.Buttons.ExtraLongDown[0] != "ORANGE" {
		t.Errorf("expected ORANGE extra-long, got %v", parsed.Buttons.ExtraLongDown)
	}
	if len(parsed.Buttons.LongDown) != 0 {
		t.Errorf("expected no long bits, got %v", parsed.Buttons.LongDown)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	payload, _ := FormatPayload(buttons.Report{
		Timestamp: time.Date(2026, 3, 4, 20, 0, 0, 500, loc),
	})

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Buttons.Timestamp != "2026-03-04T10:00:00.0000005Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Buttons.Timestamp)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "radio/buttons/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "radio/buttons/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	})

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestWillPayload(t *testing.T) {
	var parsed SystemPayload
	if err := json.Unmarshal(WillPayload(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN event, got %s", parsed.System.Event)
	}
	if parsed.System.Reason != "MQTT_DISCONNECT" {
		t.Errorf("expected MQTT_DISCONNECT reason, got %s", parsed.System.Reason)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	reports := []buttons.Report{
		{Mask: buttons.SK1, Event: buttons.EventChange},
		{Mask: buttons.SK1ShortUp, Event: buttons.EventChange},
	}
	for _, r := range reports {
		if err := f.Publish(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(f.Reports) != 2 || len(f.Payloads) != 2 {
		t.Fatalf("expected 2 reports and payloads, got %d/%d", len(f.Reports), len(f.Payloads))
	}
	for i, r := range reports {
		if f.Reports[i] != r {
			t.Errorf("report %d: expected %+v, got %+v", i, r, f.Reports[i])
		}
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")
	f.PublishSystemError = errors.New("broker down")

	if err := f.Publish(buttons.Report{}); err == nil {
		t.Error("expected publish error")
	}
	if err := f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}); err == nil {
		t.Error("expected publish system error")
	}
	if len(f.Reports) != 0 || len(f.SystemEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(buttons.Report{Mask: buttons.SK2})
	f.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true})
	f.Connected = true
	f.Close()

	f.Reset()

	if len(f.Reports) != 0 || len(f.Payloads) != 0 || len(f.SystemEvents) != 0 || len(f.SystemPayloads) != 0 {
		t.Error("expected recordings cleared")
	}
	if f.Closed || f.Connected {
		t.Error("expected flags cleared")
	}

	if err := f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
	if len(f.SystemEvents) != 1 {
		t.Errorf("expected 1 system event after reset, got %d", len(f.SystemEvents))
	}
}

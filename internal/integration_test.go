package internal

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/radio-buttons/internal/buttons"
	"github.com/sweeney/radio-buttons/internal/gpio"
	"github.com/sweeney/radio-buttons/internal/mqtt"
	"github.com/sweeney/radio-buttons/internal/platform"
	"github.com/sweeney/radio-buttons/internal/status"
)

// rig wires a scripted reader through a platform layout into a classifier
// and a fake publisher, the way the daemon does.
type rig struct {
	reader     *gpio.FakeReader
	timers     *buttons.Countdowns
	classifier *buttons.Classifier
	publisher  *mqtt.FakePublisher
	tracker    *status.Tracker
	now        time.Time
}

func newRig(t *testing.T, platformName string, threshold int, samples []buttons.Mask) *rig {
	t.Helper()
	layout, err := platform.Lookup(platformName)
	if err != nil {
		t.Fatalf("lookup %s: %v", platformName, err)
	}
	r := &rig{
		reader:    gpio.NewFakeReader(samples),
		timers:    buttons.NewCountdowns(),
		publisher: mqtt.NewFakePublisher(),
		now:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	r.classifier = buttons.NewClassifier(r.reader, r.timers, buttons.Config{
		LongThreshold: threshold,
		Modifiers:     layout.Modifiers(),
	})
	r.tracker = status.NewTracker(r.now, status.Config{Platform: layout.Name, LongThreshold: threshold})
	return r
}

// poll classifies once, publishing on CHANGE, then advances the countdowns
// by ticks.
func (r *rig) poll(t *testing.T, ticks int) {
	t.Helper()
	r.now = r.now.Add(10 * time.Millisecond)
	mask, ev, err := r.classifier.Classify(false)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if ev == buttons.EventChange {
		if err := r.publisher.Publish(buttons.Report{Timestamp: r.now, Mask: mask, Event: ev}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	r.tracker.Update(status.StateOf(r.classifier, mask), ev == buttons.EventChange, r.now)
	r.timers.Advance(ticks)
}

func (r *rig) payloads(t *testing.T) []mqtt.ButtonsPayload {
	t.Helper()
	out := make([]mqtt.ButtonsPayload, len(r.publisher.Payloads))
	for i, raw := range r.publisher.Payloads {
		var p mqtt.Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Fatalf("payload %d: invalid JSON: %v", i, err)
		}
		out[i] = p.Buttons
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestIntegrationShortLongExtraLong walks SK1 through every gesture on an
// MD-UV380 and checks what reaches MQTT.
func TestIntegrationShortLongExtraLong(t *testing.T) {
	samples := []buttons.Mask{
		buttons.None,
		buttons.SK1, buttons.None, // short
		buttons.None,
		buttons.SK1, buttons.SK1, buttons.SK1, buttons.SK1, // long, then extra-long
		buttons.None,
	}
	r := newRig(t, "MD-UV380", 10, samples)

	// Ticks per poll, chosen so the second hold crosses both thresholds.
	ticks := []int{0, 0, 0, 0, 5, 5, 15, 0, 0}
	for i := range samples {
		r.poll(t, ticks[i])
	}

	got := r.payloads(t)
	want := []struct {
		pressed, shortUp, long, extraLong []string
	}{
		{pressed: []string{"SK1"}},
		{shortUp: []string{"SK1"}},
		{},
		{pressed: []string{"SK1"}},
		{pressed: []string{"SK1"}, long: []string{"SK1"}},
		{pressed: []string{"SK1"}, extraLong: []string{"SK1"}},
		{},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d payloads, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		p := got[i]
		if p.Event != "CHANGE" {
			t.Errorf("payload %d: expected CHANGE, got %s", i, p.Event)
		}
		if !equalNames(p.Pressed, w.pressed) || !equalNames(p.ShortUp, w.shortUp) ||
			!equalNames(p.LongDown, w.long) || !equalNames(p.ExtraLongDown, w.extraLong) {
			t.Errorf("payload %d: unexpected %+v", i, p)
		}
	}

	counts := r.classifier.Counts().For(buttons.ModSK1)
	if counts.Short != 1 || counts.Long != 1 || counts.ExtraLong != 1 {
		t.Errorf("unexpected SK1 counts %+v", counts)
	}
}

// TestIntegrationOrangeIgnoredWithoutOrange verifies a layout without the
// orange key never reports it.
func TestIntegrationOrangeIgnoredWithoutOrange(t *testing.T) {
	samples := []buttons.Mask{buttons.Orange, buttons.Orange, buttons.None}
	r := newRig(t, "MD-380", 10, samples)
	for range samples {
		r.poll(t, 1)
	}
	if len(r.publisher.Payloads) != 0 {
		t.Errorf("expected no payloads, got %d", len(r.publisher.Payloads))
	}
}

// TestIntegrationOrangeOnDM1701 verifies the orange key gestures on a
// platform that has it.
func TestIntegrationOrangeOnDM1701(t *testing.T) {
	samples := []buttons.Mask{buttons.Orange, buttons.Orange, buttons.None}
	r := newRig(t, "DM-1701", 2, samples)
	r.poll(t, 2)
	r.poll(t, 0)
	r.poll(t, 0)

	got := r.payloads(t)
	if len(got) != 3 {
		t.Fatalf("expected 3 payloads, got %d: %+v", len(got), got)
	}
	if !equalNames(got[1].LongDown, []string{"ORANGE"}) {
		t.Errorf("expected ORANGE long, got %+v", got[1])
	}
	// Long releases report no short-up.
	if len(got[2].ShortUp) != 0 || len(got[2].Pressed) != 0 {
		t.Errorf("expected empty release payload, got %+v", got[2])
	}
}

// TestIntegrationTwoModifiers holds SK1 and SK2 together and releases both.
func TestIntegrationTwoModifiers(t *testing.T) {
	samples := []buttons.Mask{
		buttons.SK1,
		buttons.SK1 | buttons.SK2,
		buttons.None,
	}
	r := newRig(t, "DM-1701", 50, samples)
	for range samples {
		r.poll(t, 1)
	}

	got := r.payloads(t)
	if len(got) != 3 {
		t.Fatalf("expected 3 payloads, got %d", len(got))
	}
	if !equalNames(got[1].Pressed, []string{"SK1", "SK2"}) {
		t.Errorf("expected both pressed, got %+v", got[1])
	}
	if !equalNames(got[2].ShortUp, []string{"SK1", "SK2"}) {
		t.Errorf("expected both short-up, got %+v", got[2])
	}
}

// TestIntegrationPTTPassesThrough verifies PTT is reported on every platform.
func TestIntegrationPTTPassesThrough(t *testing.T) {
	for _, name := range platform.Names() {
		r := newRig(t, name, 10, []buttons.Mask{buttons.PTT, buttons.None})
		r.poll(t, 1)
		r.poll(t, 1)

		got := r.payloads(t)
		if len(got) != 2 || !got[0].PTT || got[1].PTT {
			t.Errorf("%s: unexpected PTT payloads %+v", name, got)
		}
	}
}

// TestIntegrationTickServiceDrivesLongPress runs the countdown service in
// its own goroutine, as the daemon does.
func TestIntegrationTickServiceDrivesLongPress(t *testing.T) {
	r := newRig(t, "MD-UV380", 3, []buttons.Mask{buttons.SK2})
	r.poll(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	tick := make(chan time.Time)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.timers.Run(ctx, tick)
	}()
	for i := 0; i < 3; i++ {
		tick <- time.Time{}
	}
	cancel()
	wg.Wait()

	r.poll(t, 0)
	if got := r.classifier.Phase(buttons.ModSK2); got != buttons.PressedLong {
		t.Fatalf("expected SK2 long, got %s", got)
	}
	if got := r.timers.Load(buttons.ModSK2); got != 4 {
		t.Errorf("expected extra-long rearm of 4 ticks, got %d", got)
	}
}

// TestIntegrationStatusMatchesPublished checks that the status JSON agrees
// with the last published payload.
func TestIntegrationStatusMatchesPublished(t *testing.T) {
	r := newRig(t, "DM-1701", 1, []buttons.Mask{buttons.SK2, buttons.SK2})
	r.poll(t, 1)
	r.poll(t, 0)

	last := r.payloads(t)
	if len(last) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(last))
	}

	var sj status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(r.tracker.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	if sj.Status.Mask != last[1].Mask {
		t.Errorf("status mask %s, published %s", sj.Status.Mask, last[1].Mask)
	}
	if sj.Status.Version != 2 {
		t.Errorf("expected version 2, got %d", sj.Status.Version)
	}
	var sk2 *status.ModifierJSON
	for i := range sj.Status.Modifiers {
		if sj.Status.Modifiers[i].Name == "SK2" {
			sk2 = &sj.Status.Modifiers[i]
		}
	}
	if sk2 == nil || sk2.Phase != "LONG" {
		t.Errorf("expected SK2 LONG in status, got %+v", sj.Status.Modifiers)
	}
	if sj.Status.Config.Platform != "DM-1701" {
		t.Errorf("unexpected platform %s", sj.Status.Config.Platform)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/radio-buttons/internal/buttons"
	"github.com/sweeney/radio-buttons/internal/mqtt"
	"github.com/sweeney/radio-buttons/internal/status"
	"github.com/sweeney/radio-buttons/internal/web"
)

// RunCmd runs the daemon until SIGINT or SIGTERM.
type RunCmd struct {
	Hardware HardwareOptions `embed:""`
	Timing   TimingOptions   `embed:""`

	Broker    string        `help:"MQTT broker address." default:"tcp://192.168.1.200:1883" env:"RADIO_BUTTONS_BROKER"`
	ClientID  string        `help:"MQTT client ID." default:"radio-buttons"`
	Heartbeat time.Duration `help:"Heartbeat interval (0 to disable)." default:"15m"`
	HTTP      string        `help:"HTTP status address (empty to disable)." default:":80"`
}

// KeypadSource reports whether a non-modifier keypad key is down.
type KeypadSource func() bool

// Run is called by kong when the run command is executed.
func (r *RunCmd) Run(logger *slog.Logger) error {
	threshold, err := r.Timing.longThreshold()
	if err != nil {
		return err
	}

	layout, reader, err := r.Hardware.open(logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	timers := buttons.NewCountdowns()
	classifier := newClassifier(reader, timers, layout, threshold)

	publisher, err := mqtt.NewRealPublisher(r.Broker, r.ClientID, logger.With("component", "mqtt"))
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Tracker exists before STARTUP so the snapshot is available.
	tracker := status.NewTracker(time.Now(), status.Config{
		Platform:      layout.Name,
		Backend:       r.Hardware.Backend,
		PollMs:        r.Timing.Poll.Milliseconds(),
		TickMs:        r.Timing.Tick.Milliseconds(),
		LongThreshold: threshold,
		HeartbeatMs:   r.Heartbeat.Milliseconds(),
		Broker:        r.Broker,
		HTTPAddr:      r.HTTP,
	})
	tracker.SetMQTTConnected(publisher.IsConnected())

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		logger.Error("failed to publish startup event", "error", err)
	} else {
		logger.Info("published startup event")
	}

	if r.HTTP != "" {
		srv := web.New(r.HTTP, tracker, logger.With("component", "web"))
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", "error", err)
			}
		}()
		defer stopHTTP(srv, httpShutdownTimeout, logger)
		logger.Info("http status server listening", "addr", r.HTTP)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	countdownTicker := time.NewTicker(r.Timing.Tick)
	defer countdownTicker.Stop()
	go timers.Run(ctx, countdownTicker.C)

	logger.Info("started",
		"platform", layout.Name,
		"modifiers", len(classifier.Modifiers()),
		"poll", r.Timing.Poll,
		"tick", r.Timing.Tick,
		"long_threshold", threshold,
		"broker", r.Broker,
		"heartbeat", r.Heartbeat)

	pollTicker := time.NewTicker(r.Timing.Poll)
	defer pollTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(classifier, publisher, publisher, tracker, nil, r.Heartbeat, time.Now, pollTicker.C, sigCh, logger)
}

// httpShutdownTimeout bounds how long exit waits for HTTP clients.
const httpShutdownTimeout = 3 * time.Second

// stopHTTP shuts srv down, giving connected clients at most timeout.
func stopHTTP(srv *web.Server, timeout time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", "error", err)
		return err
	}
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// runLoop classifies once per tick and publishes every CHANGE until a
// signal arrives. A nil keypad means no keypad key is ever down.
func runLoop(classifier *buttons.Classifier, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, keypad KeypadSource, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, logger *slog.Logger) error {
	refresh := func() {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
	}

	for {
		select {
		case s := <-sig:
			logger.Info("shutting down", "signal", s)
			reason := signalName(s)
			refresh()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     reason,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason),
			}
			if err := publisher.PublishSystem(event); err != nil {
				logger.Error("failed to publish shutdown event", "error", err)
			} else {
				logger.Info("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			keyDown := keypad != nil && keypad()

			mask, ev, err := classifier.Classify(keyDown)
			if err != nil {
				logger.Warn("classify error", "error", err)
				continue
			}

			changed := ev == buttons.EventChange
			if changed {
				logger.Info("buttons changed", "mask", mask)
				report := buttons.Report{
					Timestamp: t,
					Mask:      mask,
					Event:     ev,
					PTTLocked: classifier.PTTLocked(),
				}
				if err := publisher.Publish(report); err != nil {
					logger.Error("publish error", "error", err)
				}
			}

			refresh()
			tracker.Update(status.StateOf(classifier, mask), changed, t)

			if tracker.HeartbeatDue(t, heartbeat) {
				snap := tracker.Snapshot()
				logger.Info("heartbeat", "uptime", snap.Uptime().Round(time.Second), "changes", snap.Counts.Changes)
				hb := mqtt.SystemEvent{
					Timestamp:  t,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := publisher.PublishSystem(hb); err != nil {
					logger.Error("heartbeat publish error", "error", err)
				}
			}
		}
	}
}

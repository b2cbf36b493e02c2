package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sweeney/radio-buttons/internal/buttons"
	"github.com/sweeney/radio-buttons/internal/gpio"
	"github.com/sweeney/radio-buttons/internal/platform"
)

// HardwareOptions select the radio layout and how its lines are read.
type HardwareOptions struct {
	Platform   string        `help:"Radio platform layout (see 'layouts')." default:"MD-UV380" env:"RADIO_BUTTONS_PLATFORM"`
	LayoutFile string        `help:"Custom layout file (.yaml, .yml or .toml); overrides --platform." type:"path"`
	Backend    string        `help:"GPIO backend." enum:"gpiocdev,rpio" default:"gpiocdev"`
	Chip       string        `help:"GPIO chip for the gpiocdev backend." default:"gpiochip0"`
	Settle     time.Duration `help:"Settle delay after driving the row select line." default:"20us"`
	Pin        []string      `help:"Line to GPIO offset override." placeholder:"NAME=OFFSET"`
}

func (h HardwareOptions) layout() (platform.Layout, error) {
	l, err := platform.Resolve(h.Platform, h.LayoutFile)
	if err != nil {
		return platform.Layout{}, err
	}
	if err := l.Validate(); err != nil {
		return platform.Layout{}, fmt.Errorf("layout %s: %w", l.Name, err)
	}
	return l, nil
}

// open resolves the layout and opens the configured hardware reader.
func (h HardwareOptions) open(logger *slog.Logger) (platform.Layout, gpio.Reader, error) {
	l, err := h.layout()
	if err != nil {
		return platform.Layout{}, nil, err
	}
	pins, err := platform.ParsePins(h.Pin)
	if err != nil {
		return platform.Layout{}, nil, err
	}
	wiring, err := gpio.NewWiring(l, pins, h.Settle)
	if err != nil {
		return platform.Layout{}, nil, fmt.Errorf("wiring %s: %w", l.Name, err)
	}
	reader, err := gpio.Open(h.Backend, h.Chip, wiring)
	if err != nil {
		return platform.Layout{}, nil, fmt.Errorf("init gpio: %w", err)
	}
	logger.Debug("gpio opened", "backend", h.Backend, "layout", l.Name, "keys", len(wiring.Keys), "ptt_lines", len(wiring.PTT))
	return l, reader, nil
}

// TimingOptions set the poll rate and the countdown tick.
type TimingOptions struct {
	Poll      time.Duration `help:"Button polling interval." default:"10ms"`
	Tick      time.Duration `help:"Countdown tick interval." default:"10ms"`
	LongPress time.Duration `help:"Hold time before a press becomes long; extra-long follows 1.5x later." default:"500ms"`
}

// longThreshold converts the long-press duration into countdown ticks.
func (o TimingOptions) longThreshold() (int, error) {
	if o.Poll <= 0 {
		return 0, fmt.Errorf("poll interval must be positive, got %v", o.Poll)
	}
	if o.Tick <= 0 {
		return 0, fmt.Errorf("tick interval must be positive, got %v", o.Tick)
	}
	n := int(o.LongPress / o.Tick)
	if n < 1 {
		return 0, fmt.Errorf("long press %v is shorter than one tick (%v)", o.LongPress, o.Tick)
	}
	return n, nil
}

func newClassifier(sampler buttons.Sampler, timers *buttons.Countdowns, l platform.Layout, threshold int) *buttons.Classifier {
	return buttons.NewClassifier(sampler, timers, buttons.Config{
		LongThreshold: threshold,
		Modifiers:     l.Modifiers(),
	})
}

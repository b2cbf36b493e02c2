package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sweeney/radio-buttons/internal/buttons"
	"github.com/sweeney/radio-buttons/internal/platform"
)

// SampleCmd classifies a fixed number of polls and prints each result.
type SampleCmd struct {
	Hardware HardwareOptions `embed:""`
	Timing   TimingOptions   `embed:""`

	Count   int  `help:"Number of polls to print (0 runs until interrupted)." default:"1"`
	Changes bool `help:"Only print polls that produce a CHANGE event."`
}

// Run is called by kong when the sample command is executed.
func (s *SampleCmd) Run(logger *slog.Logger) error {
	threshold, err := s.Timing.longThreshold()
	if err != nil {
		return err
	}
	layout, reader, err := s.Hardware.open(logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timers := buttons.NewCountdowns()
	countdownTicker := time.NewTicker(s.Timing.Tick)
	defer countdownTicker.Stop()
	go timers.Run(ctx, countdownTicker.C)

	pollTicker := time.NewTicker(s.Timing.Poll)
	defer pollTicker.Stop()

	return sampleLoop(os.Stdout, reader, timers, layout, threshold, s.Count, s.Changes, pollTicker.C)
}

// sampleLoop prints the raw and classified mask for count polls. The raw
// column is the sampler's output before classification.
func sampleLoop(w io.Writer, sampler buttons.Sampler, timers *buttons.Countdowns, l platform.Layout, threshold, count int, changesOnly bool, tick <-chan time.Time) error {
	var raw buttons.Mask
	recording := buttons.SamplerFunc(func() (buttons.Mask, error) {
		m, err := sampler.Sample()
		raw = m
		return m, err
	})
	classifier := newClassifier(recording, timers, l, threshold)

	for printed := 0; count == 0 || printed < count; {
		if _, ok := <-tick; !ok {
			return nil
		}
		mask, ev, err := classifier.Classify(false)
		if err != nil {
			return err
		}
		if changesOnly && ev != buttons.EventChange {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-6s raw=%s mask=%s\n", ev, raw, mask); err != nil {
			return err
		}
		printed++
	}
	return nil
}

// LayoutsCmd lists the built-in platform layouts.
type LayoutsCmd struct{}

// Run is called by kong when the layouts command is executed.
func (l *LayoutsCmd) Run() error {
	return listLayouts(os.Stdout)
}

func listLayouts(w io.Writer) error {
	for _, name := range platform.Names() {
		layout, err := platform.Lookup(name)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(layout.Keys))
		for _, k := range layout.Keys {
			keys = append(keys, k.Line+"="+k.Key)
		}
		line := fmt.Sprintf("%-9s keys=%s ptt=%s", name, strings.Join(keys, ","), strings.Join(layout.PTTLines, ","))
		if layout.Select != "" {
			line += " select=" + layout.Select
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

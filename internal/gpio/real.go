//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/radio-buttons/internal/buttons"
)

// RealReader samples buttons through the Linux GPIO character device.
type RealReader struct {
	wiring Wiring
	chip   *gpiocdev.Chip
	keys   *gpiocdev.Lines
	ptt    *gpiocdev.Lines
	sel    *gpiocdev.Line

	keyLevels []int
	pttLevels []int
}

// NewRealReader requests the wired lines on the named chip (e.g. "gpiochip0").
func NewRealReader(chipName string, w Wiring) (*RealReader, error) {
	if chipName == "" {
		chipName = "gpiochip0"
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{
		wiring:    w,
		chip:      chip,
		keyLevels: make([]int, len(w.Keys)),
		pttLevels: make([]int, len(w.PTT)),
	}

	// Key lines idle low; the select line pulls pressed keys high.
	r.keys, err = chip.RequestLines(w.keyOffsets(), gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request key lines %v: %w", w.keyOffsets(), err)
	}

	if len(w.PTT) > 0 {
		r.ptt, err = chip.RequestLines(w.PTT, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request PTT lines %v: %w", w.PTT, err)
		}
	}

	if w.Select >= 0 {
		r.sel, err = chip.RequestLine(w.Select, gpiocdev.AsInput, gpiocdev.WithBiasDisabled)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request select pin %d: %w", w.Select, err)
		}
	}

	return r, nil
}

// Sample drives the select line, waits for the lines to settle, reads the
// keys and floats the select line again before reading PTT.
func (r *RealReader) Sample() (buttons.Mask, error) {
	if r.sel != nil {
		if err := r.sel.Reconfigure(gpiocdev.AsOutput(1)); err != nil {
			return buttons.None, fmt.Errorf("drive select pin: %w", err)
		}
		time.Sleep(r.wiring.Settle)
	}

	keyErr := r.keys.Values(r.keyLevels)

	if r.sel != nil {
		// Floating avoids ghosting when several keys are held.
		if err := r.sel.Reconfigure(gpiocdev.AsInput, gpiocdev.WithBiasDisabled); err != nil {
			return buttons.None, fmt.Errorf("float select pin: %w", err)
		}
	}
	if keyErr != nil {
		return buttons.None, fmt.Errorf("read key lines: %w", keyErr)
	}

	if r.ptt != nil {
		if err := r.ptt.Values(r.pttLevels); err != nil {
			return buttons.None, fmt.Errorf("read PTT lines: %w", err)
		}
	}

	return r.wiring.decode(r.keyLevels, r.pttLevels), nil
}

// Close releases GPIO resources.
// Key and select lines are returned to inputs with pull-down before
// closing so the pins are left in the Pi's boot default state.
func (r *RealReader) Close() error {
	var errs []error

	if r.sel != nil {
		if err := r.sel.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure select pin: %w", err))
		}
		if err := r.sel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close select pin: %w", err))
		}
	}
	if r.keys != nil {
		if err := r.keys.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close key lines: %w", err))
		}
	}
	if r.ptt != nil {
		if err := r.ptt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close PTT lines: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// Package gpio provides raw button sampling with hardware abstraction.
// The real implementations use the Linux GPIO character device or the
// memory-mapped BCM registers. The fake implementation allows testing
// without hardware.
package gpio

import (
	"fmt"
	"time"

	"github.com/sweeney/radio-buttons/internal/buttons"
	"github.com/sweeney/radio-buttons/internal/platform"
)

// Reader samples the raw button lines.
type Reader interface {
	// Sample returns the currently asserted keys and PTT as a raw mask.
	buttons.Sampler

	// Close releases GPIO resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendGPIOCDev = "gpiocdev"
	BackendRPIO     = "rpio"
)

// DefaultSettle is the delay between driving the select line and reading
// the key lines.
const DefaultSettle = 20 * time.Microsecond

// KeyPin binds a GPIO offset to a raw key bit.
type KeyPin struct {
	Offset int
	Key    buttons.Mask
}

// Wiring is a layout resolved to GPIO offsets.
type Wiring struct {
	Keys []KeyPin
	// PTT offsets are active low.
	PTT []int
	// Select is driven high while keys are read; -1 disables it.
	Select int
	Settle time.Duration
}

// NewWiring resolves a layout's line names through pins.
func NewWiring(l platform.Layout, pins platform.Pins, settle time.Duration) (Wiring, error) {
	bindings, err := l.Bindings()
	if err != nil {
		return Wiring{}, fmt.Errorf("layout %s: %w", l.Name, err)
	}
	if err := pins.Check(l); err != nil {
		return Wiring{}, fmt.Errorf("layout %s: %w", l.Name, err)
	}

	w := Wiring{Select: -1, Settle: settle}
	for _, b := range bindings {
		off, _ := pins.Offset(b.Line)
		w.Keys = append(w.Keys, KeyPin{Offset: off, Key: b.Key})
	}
	for _, line := range l.PTTLines {
		off, _ := pins.Offset(line)
		w.PTT = append(w.PTT, off)
	}
	if l.Select != "" {
		w.Select, _ = pins.Offset(l.Select)
	}
	return w, nil
}

func (w Wiring) keyOffsets() []int {
	out := make([]int, len(w.Keys))
	for i, k := range w.Keys {
		out[i] = k.Offset
	}
	return out
}

// decode converts line levels into a raw mask. Keys read high when pressed;
// PTT lines read low when pressed.
func (w Wiring) decode(keyLevels, pttLevels []int) buttons.Mask {
	var m buttons.Mask
	for i, k := range w.Keys {
		if keyLevels[i] != 0 {
			m |= k.Key
		}
	}
	for _, v := range pttLevels {
		if v == 0 {
			m |= buttons.PTT
			break
		}
	}
	return m
}

// Open creates a hardware reader for the named backend.
func Open(backend, chip string, w Wiring) (Reader, error) {
	switch backend {
	case "", BackendGPIOCDev:
		r, err := NewRealReader(chip, w)
		if err != nil {
			return nil, err
		}
		return r, nil
	case BackendRPIO:
		r, err := NewRPIOReader(w)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown gpio backend %q", backend)
}
